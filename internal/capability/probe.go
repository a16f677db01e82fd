package capability

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"pixelpress/internal/codec"
	"pixelpress/internal/config"
)

// Support reports per-format capability for one backend.
type Support struct {
	WebP bool
	AVIF bool
}

// Has returns the boolean for one format.
func (s Support) Has(format config.Format) bool {
	switch format {
	case config.FormatWebP:
		return s.WebP
	case config.FormatAVIF:
		return s.AVIF
	default:
		return false
	}
}

// Any reports whether the backend can emit at least one format.
func (s Support) Any() bool { return s.WebP || s.AVIF }

// Capabilities is the one-time detection report.
type Capabilities struct {
	FFmpeg       Support
	FFmpegDetail string
	Native       Support

	// Host ceilings sampled by the batch guards.
	MemoryLimitMB int
	MaxRunSeconds int
}

// FormatAvailable reports composite availability: OR across backends.
func (c Capabilities) FormatAvailable(format config.Format) bool {
	return c.FFmpeg.Has(format) || c.Native.Has(format)
}

// AnyFormatAvailable reports whether any of the given formats can be
// produced on this host.
func (c Capabilities) AnyFormatAvailable(formats []config.Format) bool {
	for _, format := range formats {
		if c.FormatAvailable(format) {
			return true
		}
	}
	return false
}

// Probe performs backend detection. Construct once per process and
// share; Detect caches its report and later calls are pure.
type Probe struct {
	cfg    *config.Config
	ffmpeg *codec.FFmpeg
	native *codec.Native

	once sync.Once
	caps Capabilities
}

// NewProbe wires a probe over the two codec backends.
func NewProbe(cfg *config.Config, ffmpeg *codec.FFmpeg, native *codec.Native) *Probe {
	return &Probe{cfg: cfg, ffmpeg: ffmpeg, native: native}
}

// Detect interrogates the host, caching the report on first call.
func (p *Probe) Detect(ctx context.Context) Capabilities {
	p.once.Do(func() {
		p.caps = p.detect(ctx)
	})
	return p.caps
}

// EngineFor returns the preferred backend for a format: ffmpeg when it
// supports the format on this host, else native, else nil.
func (p *Probe) EngineFor(ctx context.Context, format config.Format) codec.Codec {
	caps := p.Detect(ctx)
	if caps.FFmpeg.Has(format) {
		return p.ffmpeg
	}
	if caps.Native.Has(format) {
		return p.native
	}
	return nil
}

func (p *Probe) detect(ctx context.Context) Capabilities {
	caps := Capabilities{
		// The native backend is compiled in; its support set is static.
		Native:        Support{WebP: p.native != nil && p.native.Supports(config.FormatWebP)},
		MemoryLimitMB: p.cfg.Batch.MemoryLimitMB,
		MaxRunSeconds: p.cfg.Batch.MaxRunSeconds,
	}

	if p.ffmpeg == nil {
		caps.FFmpegDetail = "not configured"
		return caps
	}
	if _, err := exec.LookPath(p.ffmpeg.Binary()); err != nil {
		caps.FFmpegDetail = fmt.Sprintf("binary %q not found", p.ffmpeg.Binary())
		return caps
	}

	encoders, err := p.ffmpeg.ListEncoders(ctx)
	if err != nil {
		// Binary exists but won't enumerate encoders; assume the common
		// build with libwebp and libaom and let encode attempts surface
		// the truth per file.
		caps.FFmpeg = Support{WebP: true, AVIF: true}
		caps.FFmpegDetail = "encoder list unavailable, assuming defaults"
		return caps
	}

	caps.FFmpeg = Support{
		WebP: strings.Contains(encoders, "libwebp"),
		AVIF: strings.Contains(encoders, "libaom-av1") || strings.Contains(encoders, "libsvtav1"),
	}
	caps.FFmpegDetail = "detected"
	return caps
}
