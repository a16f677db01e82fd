// Package testsupport provides builders shared by package tests:
// per-test configs rooted in temp directories, opened catalog stores,
// synthetic image files, and stub codec backends.
package testsupport

import (
	"path/filepath"
	"testing"

	"pixelpress/internal/config"
)

// ConfigOption customizes the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test and relaxed guards so chunks run to completion unless a test
// tightens them.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.LibraryDir = filepath.Join(base, "library")
	cfg.Paths.BackupDir = filepath.Join(base, "backup")
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Conversion.Quality = 82
	cfg.Conversion.MinSizeKB = 5
	cfg.Batch.Size = 10
	cfg.Batch.MaxRunSeconds = 3600
	cfg.Batch.GuardMarginSeconds = 1
	cfg.Batch.MemoryLimitMB = 1 << 20

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithDeleteOriginals arms the delete protocol on the test config.
func WithDeleteOriginals(keepBackups bool) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Batch.DeleteOriginals = true
		cfg.Batch.KeepBackups = keepBackups
	}
}

// WithBatchSize overrides the chunk size.
func WithBatchSize(size int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Batch.Size = size
	}
}

// WithFormats sets the target format mode.
func WithFormats(mode string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Conversion.Format = mode
	}
}
