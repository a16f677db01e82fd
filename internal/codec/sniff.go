package codec

import (
	"image/gif"
	"os"
	"path/filepath"
	"strings"
)

// MimeForPath maps a filename extension to the image MIME types the
// conversion engine understands. Unknown extensions return "".
func MimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".avif":
		return "image/avif"
	default:
		return ""
	}
}

// IsGIF reports whether the path names a GIF by extension.
func IsGIF(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".gif")
}

// IsAnimatedGIF decodes the file's frame table and reports whether it
// contains more than one frame. Non-GIF or unreadable files report
// false; the caller's skip chain handles those separately.
func IsAnimatedGIF(path string) bool {
	if !IsGIF(path) {
		return false
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	decoded, err := gif.DecodeAll(file)
	if err != nil {
		return false
	}
	return len(decoded.Image) > 1
}
