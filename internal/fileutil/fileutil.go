// Package fileutil holds small filesystem helpers shared by the backup
// mirror and the conversion engine.
package fileutil

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DerivedPath names the derivative produced for a source file: the
// format extension is appended to the full original filename, so
// photo.jpg becomes photo.jpg.webp. Presence of the derivative is a
// plain existence check on this path.
func DerivedPath(sourcePath, format string) string {
	return sourcePath + "." + format
}

// EnsureParentDir creates the directory hierarchy containing path.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// CopyFileVerified streams src to dst with SHA256 + size integrity
// verification, removing dst on mismatch. Backups go through this path:
// a silently corrupted mirror copy would make the delete protocol unsafe.
func CopyFileVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	written, err := io.Copy(io.MultiWriter(out, dstHasher), io.TeeReader(in, srcHasher))
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcInfo.Size() {
		_ = os.Remove(dst)
		return fmt.Errorf("short copy of %q: wrote %d of %d bytes", src, written, srcInfo.Size())
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("checksum mismatch copying %q, destination removed", src)
	}
	return nil
}
