package testsupport

import (
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
)

// WriteFileBytes writes a file of exactly size bytes, creating parent
// directories. The content is deterministic but incompressible enough
// for size-based assertions.
func WriteFileBytes(t testing.TB, path string, size int64) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// WriteAnimatedGIF writes a real GIF with the given frame count so
// animation detection exercises the actual decoder.
func WriteAnimatedGIF(t testing.TB, path string, frames int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}

	palette := color.Palette{color.Black, color.White}
	anim := &gif.GIF{}
	for i := 0; i < frames; i++ {
		frame := image.NewPaletted(image.Rect(0, 0, 8, 8), palette)
		for p := range frame.Pix {
			frame.Pix[p] = uint8((p + i) % 2)
		}
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 10)
	}

	file, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer file.Close()
	if err := gif.EncodeAll(file, anim); err != nil {
		t.Fatalf("encode gif %s: %v", path, err)
	}
}

// FileSize returns the byte size of path, failing the test when the
// file is missing.
func FileSize(t testing.TB, path string) int64 {
	t.Helper()
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat %s: %v", path, err)
	}
	return info.Size()
}
