package backup

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"pixelpress/internal/assets"
	"pixelpress/internal/config"
	"pixelpress/internal/fileutil"
	"pixelpress/internal/logging"
)

// Store mirrors originals into the quarantine tree and back.
type Store struct {
	libraryDir string
	backupDir  string
	catalog    *assets.Store
	logger     *slog.Logger
}

// New wires a backup store over the catalog.
func New(cfg *config.Config, catalog *assets.Store, logger *slog.Logger) *Store {
	return &Store{
		libraryDir: cfg.Paths.LibraryDir,
		backupDir:  cfg.Paths.BackupDir,
		catalog:    catalog,
		logger:     logging.NewComponentLogger(logger, "backup"),
	}
}

// MirrorPath maps a library file to its deterministic location in the
// quarantine tree. Files outside the library root fall back to a flat
// path under the mirror so they are still backed up somewhere.
func (s *Store) MirrorPath(path string) string {
	rel, err := filepath.Rel(s.libraryDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.Join(s.backupDir, filepath.Base(path))
	}
	return filepath.Join(s.backupDir, rel)
}

// Backup copies one file into the quarantine tree, overwriting any
// previous copy (last backup wins, no versioning). Failure is reported
// as false and logged, never returned as an error: a failed backup must
// block deletion, not abort the batch.
func (s *Store) Backup(path string) bool {
	if !fileutil.FileExists(path) {
		s.logger.Warn("backup skipped, source missing", logging.String("path", path))
		return false
	}
	mirror := s.MirrorPath(path)
	if err := fileutil.EnsureParentDir(mirror); err != nil {
		s.logger.Warn("backup failed", logging.String("path", path), logging.Error(err))
		return false
	}
	if err := fileutil.CopyFileVerified(path, mirror); err != nil {
		s.logger.Warn("backup failed", logging.String("path", path), logging.Error(err))
		return false
	}
	s.logger.Debug("backed up", logging.String("path", path), logging.String("mirror", mirror))
	return true
}

// HasBackup reports whether the asset's main file has a mirrored copy.
func (s *Store) HasBackup(ctx context.Context, id int64) bool {
	asset, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return false
	}
	return fileutil.FileExists(s.MirrorPath(asset.SourcePath))
}

// Restore copies the mirrored main file and any mirrored variants back
// into the library, removes every derived-format file for the asset,
// and clears its recorded result so it re-enters the unprocessed
// population. Returns false only when the main file has no backup.
func (s *Store) Restore(ctx context.Context, id int64) (bool, error) {
	asset, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	mainMirror := s.MirrorPath(asset.SourcePath)
	if !fileutil.FileExists(mainMirror) {
		s.logger.Warn("restore refused, no backup of main file",
			logging.Int64(logging.FieldAssetID, id),
			logging.String("mirror", mainMirror),
		)
		return false, nil
	}

	variants, err := s.catalog.Variants(ctx, id)
	if err != nil {
		return false, err
	}

	if err := restoreFile(mainMirror, asset.SourcePath); err != nil {
		return false, err
	}
	for _, variant := range variants {
		variantMirror := s.MirrorPath(variant.Path)
		if !fileutil.FileExists(variantMirror) {
			// Variant was never backed up; nothing to put back.
			continue
		}
		if err := restoreFile(variantMirror, variant.Path); err != nil {
			return false, err
		}
	}

	removeDerivatives(asset.SourcePath)
	for _, variant := range variants {
		removeDerivatives(variant.Path)
	}

	if err := s.catalog.ClearResult(ctx, id); err != nil {
		return false, err
	}

	s.logger.Info("restored from backup",
		logging.Int64(logging.FieldAssetID, id),
		logging.String("path", asset.SourcePath),
	)
	return true, nil
}
