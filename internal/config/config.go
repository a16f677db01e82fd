package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Format names the derivative formats pixelpress can produce.
type Format string

const (
	FormatWebP Format = "webp"
	FormatAVIF Format = "avif"
)

// Animated GIF policies.
const (
	GIFPolicySkip    = "skip"
	GIFPolicyConvert = "convert"
)

// Target format modes.
const (
	TargetWebP = "webp"
	TargetAVIF = "avif"
	TargetBoth = "both"
)

// Paths contains directory configuration.
type Paths struct {
	LibraryDir string `toml:"library_dir"`
	BackupDir  string `toml:"backup_dir"`
	DataDir    string `toml:"data_dir"`
	LogDir     string `toml:"log_dir"`
}

// Conversion contains settings consumed by the conversion engine.
type Conversion struct {
	// Format selects the derivative formats: webp, avif, or both.
	Format  string `toml:"format"`
	Quality int    `toml:"quality"`
	// MinSizeKB skips sources below this size; tiny files rarely shrink.
	MinSizeKB         int      `toml:"min_size_kb"`
	ExcludeFolders    []string `toml:"exclude_folders"`
	ExcludePatterns   []string `toml:"exclude_patterns"`
	AnimatedGIFPolicy string   `toml:"animated_gif_policy"`
}

// Batch contains settings for chunked bulk processing and the delete
// protocol.
type Batch struct {
	Size                int  `toml:"size"`
	DeleteOriginals     bool `toml:"delete_originals"`
	KeepBackups         bool `toml:"keep_backups"`
	BackupRetentionDays int  `toml:"backup_retention_days"`
	// MaxRunSeconds is the wall-clock ceiling for one chunk; the time
	// guard stops the loop GuardMarginSeconds before it.
	MaxRunSeconds      int `toml:"max_run_seconds"`
	GuardMarginSeconds int `toml:"guard_margin_seconds"`
	MemoryLimitMB      int `toml:"memory_limit_mb"`
	// WatchIntervalSeconds is the pause between chunks in watch mode.
	WatchIntervalSeconds int `toml:"watch_interval_seconds"`
}

// Codecs contains external codec binary configuration.
type Codecs struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for pixelpress.
//
// Configuration sections:
//   - Paths: library, backup mirror, catalog database, and log directories
//   - Conversion: target formats, quality, skip heuristics, exclusions
//   - Batch: chunk sizing, runtime guards, delete/backup policy
//   - Codecs: external encoder binaries
//   - Logging: log format and level
type Config struct {
	Paths      Paths      `toml:"paths"`
	Conversion Conversion `toml:"conversion"`
	Batch      Batch      `toml:"batch"`
	Codecs     Codecs     `toml:"codecs"`
	Logging    Logging    `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/pixelpress/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. The boolean reports
// whether a config file was actually found.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path == "" {
		if env := strings.TrimSpace(os.Getenv("PIXELPRESS_CONFIG")); env != "" {
			path = env
		}
	}
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("pixelpress.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories pixelpress writes to. The
// library dir is created best-effort so a temporarily offline mount does
// not fail config load.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir, c.Paths.BackupDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.LibraryDir) != "" {
		_ = os.MkdirAll(c.Paths.LibraryDir, 0o755)
	}
	return nil
}

// TargetFormats expands the configured format mode into concrete formats.
func (c *Config) TargetFormats() []Format {
	switch c.Conversion.Format {
	case TargetAVIF:
		return []Format{FormatAVIF}
	case TargetBoth:
		return []Format{FormatWebP, FormatAVIF}
	default:
		return []Format{FormatWebP}
	}
}

// FFmpegBinary returns the configured ffmpeg executable name.
func (c *Config) FFmpegBinary() string {
	if bin := strings.TrimSpace(c.Codecs.FFmpegBinary); bin != "" {
		return bin
	}
	return "ffmpeg"
}

// CatalogPath returns the location of the asset catalog database.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.DataDir, "catalog.db")
}

// RunLockPath returns the location of the chunk-runner lock file.
func (c *Config) RunLockPath() string {
	return filepath.Join(c.Paths.DataDir, "run.lock")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// CreateSample writes a sample configuration file to the given path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
