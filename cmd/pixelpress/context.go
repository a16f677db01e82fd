package main

import (
	"log/slog"
	"strings"
	"sync"

	"pixelpress/internal/assets"
	"pixelpress/internal/backup"
	"pixelpress/internal/batch"
	"pixelpress/internal/capability"
	"pixelpress/internal/codec"
	"pixelpress/internal/config"
	"pixelpress/internal/convert"
	"pixelpress/internal/ingest"
	"pixelpress/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// app is the once-per-process dependency assembly: probe, engine,
// backup store, and batch processor wired over one catalog connection.
type app struct {
	Cfg       *config.Config
	Logger    *slog.Logger
	Store     *assets.Store
	Probe     *capability.Probe
	FFmpeg    *codec.FFmpeg
	Engine    *convert.Engine
	Backups   *backup.Store
	Processor *batch.Processor
	Scanner   *ingest.Scanner
}

func (a *app) Close() {
	if a.Store != nil {
		_ = a.Store.Close()
	}
}

func (c *commandContext) buildApp() (*app, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewFromConfig(cfg.Logging.Level, cfg.Logging.Format, cfg.Paths.LogDir)
	if err != nil {
		return nil, err
	}

	store, err := assets.Open(cfg)
	if err != nil {
		return nil, err
	}

	ffmpeg := codec.NewFFmpeg(codec.WithBinary(cfg.FFmpegBinary()))
	probe := capability.NewProbe(cfg, ffmpeg, codec.NewNative())
	engine := convert.New(cfg, store, probe, logger)
	backups := backup.New(cfg, store, logger)
	processor := batch.New(cfg, store, engine, backups, logger)
	scanner := ingest.New(cfg, store, logger)

	return &app{
		Cfg:       cfg,
		Logger:    logger,
		Store:     store,
		Probe:     probe,
		FFmpeg:    ffmpeg,
		Engine:    engine,
		Backups:   backups,
		Processor: processor,
		Scanner:   scanner,
	}, nil
}

// withApp builds the assembly, runs fn, and tears it down.
func (c *commandContext) withApp(fn func(*app) error) error {
	application, err := c.buildApp()
	if err != nil {
		return err
	}
	defer application.Close()
	return fn(application)
}
