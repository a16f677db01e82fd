package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeConversion()
	c.normalizeBatch()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.LibraryDir, err = expandPath(c.Paths.LibraryDir); err != nil {
		return fmt.Errorf("paths.library_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.BackupDir) == "" {
		c.Paths.BackupDir = defaultBackupDir
	}
	if c.Paths.BackupDir, err = expandPath(c.Paths.BackupDir); err != nil {
		return fmt.Errorf("paths.backup_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConversion() {
	c.Conversion.Format = strings.ToLower(strings.TrimSpace(c.Conversion.Format))
	if c.Conversion.Format == "" {
		c.Conversion.Format = defaultFormat
	}
	c.Conversion.AnimatedGIFPolicy = strings.ToLower(strings.TrimSpace(c.Conversion.AnimatedGIFPolicy))
	if c.Conversion.AnimatedGIFPolicy == "" {
		c.Conversion.AnimatedGIFPolicy = defaultAnimatedGIFPolicy
	}
	if c.Conversion.MinSizeKB < 0 {
		c.Conversion.MinSizeKB = 0
	}

	folders := make([]string, 0, len(c.Conversion.ExcludeFolders))
	for _, folder := range c.Conversion.ExcludeFolders {
		if trimmed := strings.TrimSpace(folder); trimmed != "" {
			folders = append(folders, trimmed)
		}
	}
	c.Conversion.ExcludeFolders = folders

	patterns := make([]string, 0, len(c.Conversion.ExcludePatterns))
	for _, pattern := range c.Conversion.ExcludePatterns {
		if trimmed := strings.TrimSpace(pattern); trimmed != "" {
			patterns = append(patterns, trimmed)
		}
	}
	c.Conversion.ExcludePatterns = patterns
}

// normalizeBatch clamps the chunk size to [1,100] rather than rejecting
// it; a scheduler that writes an out-of-range value should degrade, not
// stop processing.
func (c *Config) normalizeBatch() {
	if c.Batch.Size < 1 {
		c.Batch.Size = 1
	}
	if c.Batch.Size > 100 {
		c.Batch.Size = 100
	}
	if c.Batch.BackupRetentionDays < 1 {
		c.Batch.BackupRetentionDays = defaultBackupRetentionDays
	}
	if c.Batch.MaxRunSeconds < 1 {
		c.Batch.MaxRunSeconds = defaultMaxRunSeconds
	}
	if c.Batch.GuardMarginSeconds < 0 {
		c.Batch.GuardMarginSeconds = defaultGuardMarginSeconds
	}
	if c.Batch.GuardMarginSeconds >= c.Batch.MaxRunSeconds {
		c.Batch.GuardMarginSeconds = c.Batch.MaxRunSeconds / 2
	}
	if c.Batch.MemoryLimitMB < 1 {
		c.Batch.MemoryLimitMB = defaultMemoryLimitMB
	}
	if c.Batch.WatchIntervalSeconds < 1 {
		c.Batch.WatchIntervalSeconds = defaultWatchIntervalSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
