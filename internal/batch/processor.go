package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"pixelpress/internal/assets"
	"pixelpress/internal/backup"
	"pixelpress/internal/config"
	"pixelpress/internal/convert"
	"pixelpress/internal/fileutil"
	"pixelpress/internal/logging"
)

// memoryGuardRatio is the fraction of the memory ceiling at which the
// memory guard trips.
const memoryGuardRatio = 0.85

// Processor orchestrates chunked bulk optimization.
type Processor struct {
	cfg     *config.Config
	store   *assets.Store
	engine  *convert.Engine
	backups *backup.Store
	logger  *slog.Logger
	lock    *flock.Flock

	// Injectable for guard tests.
	now      func() time.Time
	memUsage func() uint64
}

// New wires a batch processor.
func New(cfg *config.Config, store *assets.Store, engine *convert.Engine, backups *backup.Store, logger *slog.Logger) *Processor {
	return &Processor{
		cfg:      cfg,
		store:    store,
		engine:   engine,
		backups:  backups,
		logger:   logging.NewComponentLogger(logger, "batch"),
		lock:     flock.New(cfg.RunLockPath()),
		now:      time.Now,
		memUsage: liveHeapBytes,
	}
}

// Status returns catalog-wide progress. It takes no lock and performs
// no writes, so any caller may poll it freely.
func (p *Processor) Status(ctx context.Context) (Summary, error) {
	agg, err := p.store.ComputeAggregates(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		Total:        agg.Total,
		Processed:    agg.Processed,
		Succeeded:    agg.Succeeded,
		Remaining:    agg.Remaining(),
		SavingsBytes: agg.SavingsBytes,
		AvgPercent:   agg.AvgPercent,
	}, nil
}

// RunChunk processes up to one chunk of unprocessed assets and reports
// progress. Overlapping callers are serialized by a file lock; the
// loser returns immediately with Locked set rather than duplicating
// work.
func (p *Processor) RunChunk(ctx context.Context) (*Report, error) {
	locked, err := p.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !locked {
		p.logger.Info("chunk skipped, another runner holds the lock")
		return &Report{Locked: true}, nil
	}
	defer func() {
		_ = p.lock.Unlock()
	}()

	size := clampChunkSize(p.cfg.Batch.Size)
	selection, err := p.store.ListUnprocessed(ctx, size)
	if err != nil {
		return nil, fmt.Errorf("select chunk: %w", err)
	}
	if len(selection) == 0 {
		report := &Report{Done: true}
		return p.fillAggregates(ctx, report)
	}

	runID := uuid.NewString()[:8]
	logger := p.logger.With(logging.String(logging.FieldRunID, runID))
	start := p.now()
	deadline := time.Duration(p.cfg.Batch.MaxRunSeconds-p.cfg.Batch.GuardMarginSeconds) * time.Second
	memCeiling := uint64(float64(p.cfg.Batch.MemoryLimitMB) * 1024 * 1024 * memoryGuardRatio)

	report := &Report{}
	for _, asset := range selection {
		if guard := p.checkGuards(logger, start, deadline, memCeiling); guard != GuardNone {
			report.Guard = guard
			break
		}
		report.Results = append(report.Results, p.processAsset(ctx, logger, asset))
	}

	logger.Info("chunk finished",
		logging.Int("processed", len(report.Results)),
		logging.Duration("elapsed", p.now().Sub(start)),
		logging.String("guard", string(report.Guard)),
	)
	return p.fillAggregates(ctx, report)
}

// processAsset runs backup, conversion, and the delete protocol for one
// asset. Nothing in here aborts the chunk; failures land in the outcome.
func (p *Processor) processAsset(ctx context.Context, logger *slog.Logger, asset *assets.Asset) Outcome {
	outcome := Outcome{AssetID: asset.ID}

	// Back up before conversion whenever deletion is armed, regardless
	// of the conversion outcome, so a retry never forfeits the chance
	// to back up.
	if p.cfg.Batch.DeleteOriginals && p.cfg.Batch.KeepBackups {
		p.backupAsset(ctx, asset)
	}

	result, err := p.engine.OptimizeAsset(ctx, asset.ID)
	if err != nil {
		outcome.Error = err.Error()
		logger.Error("asset processing failed",
			logging.Int64(logging.FieldAssetID, asset.ID),
			logging.Error(err),
		)
		return outcome
	}

	outcome.Status = result.Status
	outcome.Success = result.AllOK
	outcome.SavingsBytes = result.Savings
	if len(result.Errors) > 0 {
		outcome.Error = result.Errors[0]
	}

	if p.cfg.Batch.DeleteOriginals && result.Deletable() {
		outcome.Deleted = p.deleteOriginals(ctx, logger, asset)
	}
	return outcome
}

func (p *Processor) backupAsset(ctx context.Context, asset *assets.Asset) {
	p.backups.Backup(asset.SourcePath)
	variants, err := p.store.Variants(ctx, asset.ID)
	if err != nil {
		p.logger.Warn("variant lookup for backup failed",
			logging.Int64(logging.FieldAssetID, asset.ID),
			logging.Error(err),
		)
		return
	}
	for _, variant := range variants {
		p.backups.Backup(variant.Path)
	}
}

// deleteOriginals applies the destructive half of the delete protocol.
// It must never fire when backups are required but absent: a failed or
// skipped backup leaves the asset in the valid Not-Deletable state.
func (p *Processor) deleteOriginals(ctx context.Context, logger *slog.Logger, asset *assets.Asset) bool {
	if p.cfg.Batch.KeepBackups && !p.backups.HasBackup(ctx, asset.ID) {
		logger.Warn("delete blocked, no backup of original",
			logging.Int64(logging.FieldAssetID, asset.ID),
			logging.String("path", asset.SourcePath),
		)
		return false
	}

	variants, err := p.store.Variants(ctx, asset.ID)
	if err != nil {
		logger.Warn("delete blocked, variant lookup failed",
			logging.Int64(logging.FieldAssetID, asset.ID),
			logging.Error(err),
		)
		return false
	}

	removeIfPresent(asset.SourcePath)
	for _, variant := range variants {
		removeIfPresent(variant.Path)
	}

	if err := p.store.SetOriginalsDeleted(ctx, asset.ID); err != nil {
		logger.Error("originals deleted but flag not recorded",
			logging.Int64(logging.FieldAssetID, asset.ID),
			logging.Error(err),
		)
		return false
	}

	logger.Info("originals deleted",
		logging.Int64(logging.FieldAssetID, asset.ID),
		logging.String("path", asset.SourcePath),
	)
	return true
}

// checkGuards evaluates the two runtime guards. Guards fire only at
// asset boundaries; an early stop is deliberate, not an error.
func (p *Processor) checkGuards(logger *slog.Logger, start time.Time, deadline time.Duration, memCeiling uint64) Guard {
	if elapsed := p.now().Sub(start); elapsed >= deadline {
		logger.Info("time guard stopped chunk early",
			logging.Duration("elapsed", elapsed),
			logging.Duration("deadline", deadline),
		)
		return GuardTime
	}
	if usage := p.memUsage(); usage >= memCeiling {
		logger.Warn("memory guard stopped chunk early",
			logging.Uint64("usage_bytes", usage),
			logging.Uint64("ceiling_bytes", memCeiling),
		)
		return GuardMemory
	}
	return GuardNone
}

func (p *Processor) fillAggregates(ctx context.Context, report *Report) (*Report, error) {
	agg, err := p.store.ComputeAggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("aggregate progress: %w", err)
	}
	report.ProcessedTotal = agg.Processed
	report.Remaining = agg.Remaining()
	report.Done = report.Remaining == 0
	return report, nil
}

// OptimizeSingle converts one asset outside the chunk loop, applying
// the same backup-before-delete discipline.
func (p *Processor) OptimizeSingle(ctx context.Context, id int64) (*assets.Result, error) {
	asset, err := p.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.cfg.Batch.DeleteOriginals && p.cfg.Batch.KeepBackups {
		p.backupAsset(ctx, asset)
	}
	result, err := p.engine.OptimizeAsset(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.cfg.Batch.DeleteOriginals && result.Deletable() {
		p.deleteOriginals(ctx, p.logger, asset)
	}
	return result, nil
}

// RestoreSingle reverses a destructive delete for one asset.
func (p *Processor) RestoreSingle(ctx context.Context, id int64) (bool, error) {
	return p.backups.Restore(ctx, id)
}

func clampChunkSize(size int) int {
	if size < 1 {
		return 1
	}
	if size > 100 {
		return 100
	}
	return size
}

func removeIfPresent(path string) {
	if fileutil.FileExists(path) {
		_ = os.Remove(path)
	}
}

// liveHeapBytes approximates process memory pressure with the live
// heap plus goroutine stacks; it is what codec work actually grows.
func liveHeapBytes() uint64 {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.HeapAlloc + stats.StackInuse
}
