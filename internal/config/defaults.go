package config

const (
	defaultLibraryDir           = "~/pictures"
	defaultBackupDir            = "~/.local/share/pixelpress/backup"
	defaultDataDir              = "~/.local/share/pixelpress"
	defaultLogDir               = "~/.local/share/pixelpress/logs"
	defaultFormat               = TargetWebP
	defaultQuality              = 82
	defaultMinSizeKB            = 5
	defaultAnimatedGIFPolicy    = GIFPolicySkip
	defaultBatchSize            = 10
	defaultBackupRetentionDays  = 30
	defaultMaxRunSeconds        = 120
	defaultGuardMarginSeconds   = 10
	defaultMemoryLimitMB        = 512
	defaultWatchIntervalSeconds = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LibraryDir: defaultLibraryDir,
			BackupDir:  defaultBackupDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Conversion: Conversion{
			Format:            defaultFormat,
			Quality:           defaultQuality,
			MinSizeKB:         defaultMinSizeKB,
			AnimatedGIFPolicy: defaultAnimatedGIFPolicy,
		},
		Batch: Batch{
			Size:                 defaultBatchSize,
			KeepBackups:          true,
			BackupRetentionDays:  defaultBackupRetentionDays,
			MaxRunSeconds:        defaultMaxRunSeconds,
			GuardMarginSeconds:   defaultGuardMarginSeconds,
			MemoryLimitMB:        defaultMemoryLimitMB,
			WatchIntervalSeconds: defaultWatchIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
