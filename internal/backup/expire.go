package backup

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"pixelpress/internal/config"
	"pixelpress/internal/fileutil"
	"pixelpress/internal/logging"
)

// Expire deletes mirrored copies older than the cutoff and removes
// directories left empty. Newer files are never touched. Returns the
// number of files removed.
func (s *Store) Expire(olderThanDays int) (int, error) {
	if olderThanDays < 1 {
		olderThanDays = 1
	}
	cutoff := time.Now().Add(-time.Duration(olderThanDays) * 24 * time.Hour)

	if _, err := os.Stat(s.backupDir); os.IsNotExist(err) {
		return 0, nil
	}

	removed := 0
	var dirs []string
	err := filepath.WalkDir(s.backupDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != s.backupDir {
				dirs = append(dirs, path)
			}
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return err
		}
		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err != nil {
				s.logger.Warn("expire failed", logging.String("path", path), logging.Error(err))
				return nil
			}
			removed++
		}
		return nil
	})
	if err != nil {
		return removed, err
	}

	// Deepest first so empty parents collapse too.
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err == nil && len(entries) == 0 {
			_ = os.Remove(dir)
		}
	}

	if removed > 0 {
		s.logger.Info("expired backups",
			logging.Int("removed", removed),
			logging.Int("older_than_days", olderThanDays),
		)
	}
	return removed, nil
}

func restoreFile(mirror, dst string) error {
	if err := fileutil.EnsureParentDir(dst); err != nil {
		return err
	}
	return fileutil.CopyFileVerified(mirror, dst)
}

// removeDerivatives deletes every derived-format file for one source.
func removeDerivatives(path string) {
	for _, format := range []config.Format{config.FormatWebP, config.FormatAVIF} {
		derived := fileutil.DerivedPath(path, string(format))
		if fileutil.FileExists(derived) {
			_ = os.Remove(derived)
		}
	}
}
