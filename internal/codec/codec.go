package codec

import (
	"context"

	"pixelpress/internal/config"
)

// Codec produces one derivative file from one source image.
type Codec interface {
	// Name identifies the backend in logs and capability reports.
	Name() string
	// Supports reports whether this backend can emit the format at all.
	// Availability on this host is the capability probe's concern.
	Supports(format config.Format) bool
	// Encode writes the derivative for src to dst. The destination is
	// removed on failure so a broken candidate never survives.
	Encode(ctx context.Context, src, dst string, format config.Format, quality int) error
}
