package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"pixelpress/internal/assets"
	"pixelpress/internal/capability"
	"pixelpress/internal/codec"
	"pixelpress/internal/config"
	"pixelpress/internal/fileutil"
	"pixelpress/internal/logging"
)

// maxRecordedErrors bounds the per-asset error list; anything beyond is
// summarized in one trailing entry.
const maxRecordedErrors = 8

// Prober reports host codec capabilities and picks the backend for a
// format. *capability.Probe is the production implementation; tests
// substitute stubs.
type Prober interface {
	Detect(ctx context.Context) capability.Capabilities
	EngineFor(ctx context.Context, format config.Format) codec.Codec
}

// Engine converts one source image into the configured derivative
// formats and persists the outcome.
type Engine struct {
	cfg    *config.Config
	store  *assets.Store
	probe  Prober
	logger *slog.Logger
}

// New wires a conversion engine.
func New(cfg *config.Config, store *assets.Store, probe Prober, logger *slog.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		store:  store,
		probe:  probe,
		logger: logging.NewComponentLogger(logger, "convert"),
	}
}

// OptimizeAsset converts the asset's main file and variants, records
// the result, and returns it. Only catalog access failures surface as
// errors; conversion problems are folded into the result.
func (e *Engine) OptimizeAsset(ctx context.Context, id int64) (*assets.Result, error) {
	asset, err := e.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result := e.convert(ctx, asset)
	if err := e.store.SetResult(ctx, id, result); err != nil {
		return nil, fmt.Errorf("persist result: %w", err)
	}

	e.logger.Info("conversion recorded",
		logging.Int64(logging.FieldAssetID, id),
		logging.String("status", string(result.Status)),
		logging.Int64("savings", result.Savings),
		logging.Float64("savings_pct", result.SavingsPercent()),
		logging.Bool("all_ok", result.AllOK),
	)
	if !result.AllOK && len(result.Errors) > 0 {
		e.logger.Warn("conversion had failures",
			logging.Int64(logging.FieldAssetID, id),
			logging.Any("errors", result.Errors),
		)
	}
	return result, nil
}

func (e *Engine) convert(ctx context.Context, asset *assets.Asset) *assets.Result {
	requested := e.cfg.TargetFormats()
	result := &assets.Result{
		FormatsRequested: formatNames(requested),
		Timestamp:        time.Now().UTC(),
	}

	// Skip chain: each branch is terminal, no further work.
	mainInfo, err := os.Stat(asset.SourcePath)
	if err != nil {
		result.Status = assets.StatusMissing
		result.Errors = append(result.Errors, fmt.Sprintf("source missing: %s", asset.SourcePath))
		return result
	}
	result.OriginalSize = mainInfo.Size()
	result.OptimizedSize = mainInfo.Size()

	if mainInfo.Size() < int64(e.cfg.Conversion.MinSizeKB)*1024 {
		result.Status = assets.StatusSkippedSmall
		result.AllOK = true
		return result
	}
	if matchesExclusion(e.cfg, asset.SourcePath) {
		result.Status = assets.StatusSkippedExclude
		result.AllOK = true
		return result
	}
	if codec.IsAnimatedGIF(asset.SourcePath) && e.cfg.Conversion.AnimatedGIFPolicy == config.GIFPolicySkip {
		result.Status = assets.StatusSkippedGIF
		result.AllOK = true
		return result
	}

	caps := e.probe.Detect(ctx)
	targets := resolveTargets(caps, requested)
	if len(targets) == 0 {
		result.Status = assets.StatusNoEngine
		result.Errors = append(result.Errors, "no codec backend available for any requested format")
		return result
	}

	variants, err := e.store.Variants(ctx, asset.ID)
	if err != nil {
		result.Status = assets.StatusPartial
		result.Errors = append(result.Errors, fmt.Sprintf("list variants: %v", err))
		return result
	}

	files := make([]string, 0, 1+len(variants))
	files = append(files, asset.SourcePath)
	for _, variant := range variants {
		files = append(files, variant.Path)
	}

	acc := newAccumulator()
	for _, file := range files {
		e.convertFile(ctx, acc, file, targets)
	}
	acc.finish(result)
	return result
}

// convertFile attempts every target format for one file and records
// accepted sizes and failures in the accumulator. A failure for one
// format never prevents the next attempt.
func (e *Engine) convertFile(ctx context.Context, acc *accumulator, file string, targets []config.Format) {
	info, err := os.Stat(file)
	if err != nil {
		for range targets {
			acc.fail(fmt.Sprintf("%s: unreadable source: %v", file, err))
		}
		return
	}
	sourceSize := info.Size()
	acc.observe(file, sourceSize)

	for _, format := range targets {
		engine := e.probe.EngineFor(ctx, format)
		if engine == nil {
			acc.fail(fmt.Sprintf("%s: no backend for %s", file, format))
			continue
		}

		dst := fileutil.DerivedPath(file, string(format))
		if err := engine.Encode(ctx, file, dst, format, e.cfg.Conversion.Quality); err != nil {
			acc.fail(fmt.Sprintf("%s: %v", file, err))
			e.logger.Debug("encode failed",
				logging.String("file", file),
				logging.String(logging.FieldFormat, string(format)),
				logging.String(logging.FieldBackend, engine.Name()),
				logging.Error(err),
			)
			continue
		}

		candidate, err := os.Stat(dst)
		if err != nil {
			acc.fail(fmt.Sprintf("%s: stat candidate %s: %v", file, dst, err))
			continue
		}
		if candidate.Size() >= sourceSize {
			// The derivative is no improvement; keeping it would waste
			// space and serving it would be a regression.
			_ = os.Remove(dst)
			acc.fail(fmt.Sprintf("%s: %s candidate not smaller than source, discarded", file, format))
			continue
		}

		acc.accept(file, format, sourceSize, candidate.Size())
	}
}

// resolveTargets intersects the requested formats with host support,
// falling back to WebP alone when nothing requested is available.
func resolveTargets(caps capability.Capabilities, requested []config.Format) []config.Format {
	targets := make([]config.Format, 0, len(requested))
	for _, format := range requested {
		if caps.FormatAvailable(format) {
			targets = append(targets, format)
		}
	}
	if len(targets) == 0 && caps.FormatAvailable(config.FormatWebP) {
		targets = []config.Format{config.FormatWebP}
	}
	return targets
}

// matchesExclusion applies the configured folder substring and filename
// glob rules to a source path.
func matchesExclusion(cfg *config.Config, path string) bool {
	return matchesRules(path, cfg.Conversion.ExcludeFolders, cfg.Conversion.ExcludePatterns)
}

func formatNames(formats []config.Format) []string {
	names := make([]string, 0, len(formats))
	for _, format := range formats {
		names = append(names, string(format))
	}
	return names
}
