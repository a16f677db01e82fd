package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.LibraryDir) == "" {
		return errors.New("paths.library_dir must be set")
	}
	if c.Paths.BackupDir == c.Paths.LibraryDir {
		return errors.New("paths.backup_dir must differ from paths.library_dir")
	}
	return nil
}

func (c *Config) validateConversion() error {
	switch c.Conversion.Format {
	case TargetWebP, TargetAVIF, TargetBoth:
	default:
		return fmt.Errorf("conversion.format must be webp, avif, or both (got %q)", c.Conversion.Format)
	}
	if c.Conversion.Quality < 10 || c.Conversion.Quality > 100 {
		return fmt.Errorf("conversion.quality must be between 10 and 100 (got %d)", c.Conversion.Quality)
	}
	switch c.Conversion.AnimatedGIFPolicy {
	case GIFPolicySkip, GIFPolicyConvert:
	default:
		return fmt.Errorf("conversion.animated_gif_policy must be skip or convert (got %q)", c.Conversion.AnimatedGIFPolicy)
	}
	for _, pattern := range c.Conversion.ExcludePatterns {
		if _, err := filepath.Match(pattern, "probe"); err != nil {
			return fmt.Errorf("conversion.exclude_patterns: invalid glob %q: %w", pattern, err)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
