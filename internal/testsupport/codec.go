package testsupport

import (
	"context"
	"fmt"
	"os"

	"pixelpress/internal/capability"
	"pixelpress/internal/codec"
	"pixelpress/internal/config"
)

// StubCodec is a codec backend that writes a fixed number of bytes per
// encode, or fails on demand. Output size relative to the source is
// what drives the accept/discard rule, so tests set it directly.
type StubCodec struct {
	BackendName string
	Formats     map[config.Format]bool
	// OutputSize is the byte size of every candidate this codec writes.
	OutputSize int64
	// FailFormats lists formats whose encodes return an error.
	FailFormats map[config.Format]bool
	// BlockOn, when set, runs at the start of every encode so tests
	// can hold a conversion mid-flight.
	BlockOn func()
	// Calls records every (src, format) encode attempt in order.
	Calls []string
}

// NewStubCodec builds a webp+avif capable stub emitting outputSize
// byte candidates.
func NewStubCodec(outputSize int64) *StubCodec {
	return &StubCodec{
		BackendName: "stub",
		Formats:     map[config.Format]bool{config.FormatWebP: true, config.FormatAVIF: true},
		OutputSize:  outputSize,
	}
}

// Name implements codec.Codec.
func (s *StubCodec) Name() string { return s.BackendName }

// Supports implements codec.Codec.
func (s *StubCodec) Supports(format config.Format) bool { return s.Formats[format] }

// Encode implements codec.Codec.
func (s *StubCodec) Encode(_ context.Context, src, dst string, format config.Format, _ int) error {
	if s.BlockOn != nil {
		s.BlockOn()
	}
	s.Calls = append(s.Calls, fmt.Sprintf("%s:%s", src, format))
	if s.FailFormats[format] {
		return fmt.Errorf("stub codec: forced failure for %s", format)
	}
	data := make([]byte, s.OutputSize)
	return os.WriteFile(dst, data, 0o644)
}

// StubProbe satisfies convert.Prober with a fixed capability report and
// a single backend for every supported format.
type StubProbe struct {
	Caps  capability.Capabilities
	Codec codec.Codec
}

// NewStubProbe wires a probe around one stub codec, reporting support
// for exactly the formats the codec claims.
func NewStubProbe(c *StubCodec) *StubProbe {
	return &StubProbe{
		Caps: capability.Capabilities{
			FFmpeg: capability.Support{
				WebP: c.Supports(config.FormatWebP),
				AVIF: c.Supports(config.FormatAVIF),
			},
			FFmpegDetail:  "stub",
			MemoryLimitMB: 512,
			MaxRunSeconds: 120,
		},
		Codec: c,
	}
}

// Detect implements convert.Prober.
func (p *StubProbe) Detect(context.Context) capability.Capabilities { return p.Caps }

// EngineFor implements convert.Prober.
func (p *StubProbe) EngineFor(_ context.Context, format config.Format) codec.Codec {
	if p.Codec != nil && p.Codec.Supports(format) && p.Caps.FormatAvailable(format) {
		return p.Codec
	}
	return nil
}
