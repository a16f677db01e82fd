package codec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"pixelpress/internal/config"
	"pixelpress/internal/fileutil"
)

var commandContext = exec.CommandContext

// FFmpegName is the backend identifier for the external ffmpeg encoder.
const FFmpegName = "ffmpeg"

// Option configures the ffmpeg codec.
type Option func(*FFmpeg)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(f *FFmpeg) {
		if binary != "" {
			f.binary = binary
		}
	}
}

// FFmpeg encodes derivatives by invoking the ffmpeg command line. It is
// the full-featured backend: both WebP and AVIF.
type FFmpeg struct {
	binary string
}

// NewFFmpeg constructs the ffmpeg codec using defaults.
func NewFFmpeg(opts ...Option) *FFmpeg {
	codec := &FFmpeg{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(codec)
	}
	return codec
}

// Name implements Codec.
func (f *FFmpeg) Name() string { return FFmpegName }

// Binary returns the configured executable name.
func (f *FFmpeg) Binary() string { return f.binary }

// Supports implements Codec.
func (f *FFmpeg) Supports(format config.Format) bool {
	return format == config.FormatWebP || format == config.FormatAVIF
}

// Encode implements Codec.
func (f *FFmpeg) Encode(ctx context.Context, src, dst string, format config.Format, quality int) error {
	if src == "" {
		return errors.New("source path required")
	}
	if dst == "" {
		return errors.New("destination path required")
	}

	args, err := f.encodeArgs(src, dst, format, quality)
	if err != nil {
		return err
	}

	cmd := commandContext(ctx, f.binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		_ = os.Remove(dst)
		detail := lastLine(stderr.String())
		if detail != "" {
			return fmt.Errorf("ffmpeg %s encode: %w (%s)", format, err, detail)
		}
		return fmt.Errorf("ffmpeg %s encode: %w", format, err)
	}
	if !fileutil.FileExists(dst) {
		return fmt.Errorf("ffmpeg %s encode: no output produced", format)
	}
	return nil
}

func (f *FFmpeg) encodeArgs(src, dst string, format config.Format, quality int) ([]string, error) {
	base := []string{"-hide_banner", "-loglevel", "error", "-y", "-i", src, "-frames:v", "1"}
	switch format {
	case config.FormatWebP:
		// libwebp takes quality on the same 0-100 scale we configure.
		return append(base,
			"-c:v", "libwebp",
			"-quality", strconv.Itoa(quality),
			dst,
		), nil
	case config.FormatAVIF:
		// AV1 encoders take CRF 0-63 where lower is better; map the
		// configured quality onto that scale.
		crf := (100 - quality) * 63 / 100
		return append(base,
			"-c:v", "libaom-av1",
			"-still-picture", "1",
			"-crf", strconv.Itoa(crf),
			"-b:v", "0",
			dst,
		), nil
	default:
		return nil, fmt.Errorf("ffmpeg codec: unsupported format %q", format)
	}
}

// ListEncoders returns the raw `ffmpeg -encoders` output so the
// capability probe can check for libwebp and AV1 support.
func (f *FFmpeg) ListEncoders(ctx context.Context) (string, error) {
	cmd := commandContext(ctx, f.binary, "-hide_banner", "-encoders") //nolint:gosec
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("list ffmpeg encoders: %w", err)
	}
	return stdout.String(), nil
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
