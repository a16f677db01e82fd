package codec

import (
	"context"
	"fmt"
	"image"
	"image/gif"
	"os"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"pixelpress/internal/config"
)

// NativeName is the backend identifier for the in-process encoder.
const NativeName = "native"

// Native encodes WebP in-process through libwebp bindings. It is the
// lightweight fallback: always present, WebP only.
type Native struct{}

// NewNative constructs the native codec.
func NewNative() *Native { return &Native{} }

// Name implements Codec.
func (n *Native) Name() string { return NativeName }

// Supports implements Codec.
func (n *Native) Supports(format config.Format) bool {
	return format == config.FormatWebP
}

// Encode implements Codec.
func (n *Native) Encode(ctx context.Context, src, dst string, format config.Format, quality int) error {
	if !n.Supports(format) {
		return fmt.Errorf("native codec: unsupported format %q", format)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	img, err := openImage(src)
	if err != nil {
		return fmt.Errorf("native codec: decode %s: %w", src, err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("native codec: create %s: %w", dst, err)
	}
	defer out.Close()

	if err := webp.Encode(out, img, &webp.Options{Quality: float32(quality)}); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("native codec: encode webp: %w", err)
	}
	return out.Close()
}

// openImage decodes the source. Animated GIFs decode to their first
// frame, matching the convert policy for animations.
func openImage(path string) (image.Image, error) {
	if IsGIF(path) {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return gif.Decode(file)
	}
	return imaging.Open(path, imaging.AutoOrientation(true))
}
