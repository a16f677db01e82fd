package convert_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pixelpress/internal/assets"
	"pixelpress/internal/config"
	"pixelpress/internal/convert"
	"pixelpress/internal/fileutil"
	"pixelpress/internal/logging"
	"pixelpress/internal/testsupport"
)

func newEngine(t *testing.T, cfg *config.Config, codec *testsupport.StubCodec) (*convert.Engine, *assets.Store) {
	t.Helper()
	store := testsupport.MustOpenStore(t, cfg)
	probe := testsupport.NewStubProbe(codec)
	engine := convert.New(cfg, store, probe, logging.NewNop())
	return engine, store
}

func TestOptimizeGeneratesSmallerDerivative(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(4096)
	engine, store := newEngine(t, cfg, stub)
	ctx := context.Background()

	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusOptimized || !result.AllOK {
		t.Fatalf("result = %+v", result)
	}
	if len(result.FormatsGenerated) != 1 || result.FormatsGenerated[0] != "webp" {
		t.Errorf("generated = %v, want [webp]", result.FormatsGenerated)
	}
	if result.Savings != 20480-4096 {
		t.Errorf("savings = %d, want %d", result.Savings, 20480-4096)
	}

	derived := fileutil.DerivedPath(source, "webp")
	if testsupport.FileSize(t, derived) != 4096 {
		t.Error("derivative not written alongside the source")
	}

	stored, err := store.GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.ResultStatus != assets.StatusOptimized {
		t.Errorf("persisted status = %q", stored.ResultStatus)
	}
}

func TestOptimizeSkipsSmallSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(512)
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "icon.png")
	testsupport.WriteFileBytes(t, source, 2048) // below the 5 KB floor
	asset := testsupport.MustAddAsset(t, store, source, "image/png", 2048)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusSkippedSmall {
		t.Fatalf("status = %q, want skipped_small", result.Status)
	}
	if !result.AllOK {
		t.Error("skips count as success")
	}
	if result.Deletable() {
		t.Error("a skip must not unlock deletion")
	}
	if len(stub.Calls) != 0 {
		t.Errorf("codec was invoked %d times for a skipped asset", len(stub.Calls))
	}
	if fileutil.FileExists(fileutil.DerivedPath(source, "webp")) {
		t.Error("no derivative should exist for a skipped asset")
	}
}

func TestOptimizeSkipsExcludedFolder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.ExcludeFolders = []string{"thumbnails"}
	stub := testsupport.NewStubCodec(512)
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "thumbnails", "photo.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusSkippedExclude || !result.AllOK {
		t.Fatalf("result = %+v", result)
	}
}

func TestOptimizeSkipsExcludedPattern(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.ExcludePatterns = []string{"*-draft.*"}
	stub := testsupport.NewStubCodec(512)
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "poster-draft.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusSkippedExclude {
		t.Fatalf("status = %q, want skipped_excluded", result.Status)
	}
}

func TestOptimizeSkipsAnimatedGIF(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.MinSizeKB = 0
	stub := testsupport.NewStubCodec(512)
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "banner.gif")
	testsupport.WriteAnimatedGIF(t, source, 3)
	asset := testsupport.MustAddAsset(t, store, source, "image/gif", testsupport.FileSize(t, source))

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusSkippedGIF || !result.AllOK {
		t.Fatalf("result = %+v", result)
	}
	if len(stub.Calls) != 0 {
		t.Error("animated gif should not reach the codec under the skip policy")
	}
}

func TestOptimizeConvertsAnimatedGIFWhenPolicyAllows(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Conversion.MinSizeKB = 0
	cfg.Conversion.AnimatedGIFPolicy = config.GIFPolicyConvert
	stub := testsupport.NewStubCodec(16)
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "banner.gif")
	testsupport.WriteAnimatedGIF(t, source, 3)
	asset := testsupport.MustAddAsset(t, store, source, "image/gif", testsupport.FileSize(t, source))

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusOptimized {
		t.Fatalf("status = %q, want optimized", result.Status)
	}
	if len(stub.Calls) == 0 {
		t.Error("convert policy should send the gif to the codec")
	}
}

func TestOptimizeMissingSource(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(512)
	engine, store := newEngine(t, cfg, stub)

	asset := testsupport.MustAddAsset(t, store, filepath.Join(cfg.Paths.LibraryDir, "gone.jpg"), "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusMissing {
		t.Fatalf("status = %q, want missing", result.Status)
	}
	if result.AllOK {
		t.Error("missing sources are not success")
	}
}

func TestOptimizeNoBackendAvailable(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(512)
	stub.Formats = map[config.Format]bool{}
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusNoEngine {
		t.Fatalf("status = %q, want error_no_engine", result.Status)
	}
	if result.AllOK {
		t.Error("no-engine outcome is a failure")
	}
}

func TestOptimizeDiscardsLargerCandidate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(30000) // bigger than the source
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusPartial {
		t.Fatalf("status = %q, want partial", result.Status)
	}
	if result.AllOK || result.Deletable() {
		t.Error("a discarded candidate must block the delete gate")
	}
	if len(result.FormatsGenerated) != 0 {
		t.Errorf("generated = %v, want none", result.FormatsGenerated)
	}
	if fileutil.FileExists(fileutil.DerivedPath(source, "webp")) {
		t.Error("oversized candidate should have been removed")
	}
	found := false
	for _, msg := range result.Errors {
		if strings.Contains(msg, "discarded") {
			found = true
		}
	}
	if !found {
		t.Errorf("errors should mention the discard: %v", result.Errors)
	}
}

func TestOptimizePartialOnFormatFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFormats(config.TargetBoth))
	stub := testsupport.NewStubCodec(4096)
	stub.FailFormats = map[config.Format]bool{config.FormatAVIF: true}
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusPartial {
		t.Fatalf("status = %q, want partial", result.Status)
	}
	if result.AllOK {
		t.Error("a failed format must clear all_ok")
	}
	if len(result.FormatsGenerated) != 1 || result.FormatsGenerated[0] != "webp" {
		t.Errorf("generated = %v, want [webp]", result.FormatsGenerated)
	}
	if result.Savings != 20480-4096 {
		t.Errorf("savings = %d; the surviving format still counts", result.Savings)
	}
}

func TestOptimizeCoversVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(1024)
	engine, store := newEngine(t, cfg, stub)
	ctx := context.Background()

	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	variant := filepath.Join(cfg.Paths.LibraryDir, "photo-300x300.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	testsupport.WriteFileBytes(t, variant, 10240)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)
	if err := store.AddVariant(ctx, asset.ID, "300x300", variant, 10240); err != nil {
		t.Fatalf("AddVariant: %v", err)
	}

	result, err := engine.OptimizeAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusOptimized {
		t.Fatalf("status = %q, want optimized", result.Status)
	}
	if len(stub.Calls) != 2 {
		t.Errorf("codec calls = %d, want main plus variant", len(stub.Calls))
	}
	if !fileutil.FileExists(fileutil.DerivedPath(variant, "webp")) {
		t.Error("variant derivative missing")
	}
	wantSavings := int64(20480-1024) + int64(10240-1024)
	if result.Savings != wantSavings {
		t.Errorf("savings = %d, want %d", result.Savings, wantSavings)
	}
	if result.OriginalSize != 20480+10240 {
		t.Errorf("original size = %d, want main plus variant", result.OriginalSize)
	}
	if result.OptimizedSize != 2*1024 {
		t.Errorf("optimized size = %d, want best candidate per file", result.OptimizedSize)
	}
}

func TestOptimizeVariantLargerThanMainKeepsSizesSane(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(1024)
	engine, store := newEngine(t, cfg, stub)
	ctx := context.Background()

	// The variant dwarfs the main file, so its savings alone exceed the
	// main file's size. Totals must still cover both files.
	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	variant := filepath.Join(cfg.Paths.LibraryDir, "photo-2048x2048.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	testsupport.WriteFileBytes(t, variant, 102400)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)
	if err := store.AddVariant(ctx, asset.ID, "2048x2048", variant, 102400); err != nil {
		t.Fatalf("AddVariant: %v", err)
	}

	result, err := engine.OptimizeAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.OptimizedSize <= 0 {
		t.Errorf("optimized size = %d, want positive", result.OptimizedSize)
	}
	if result.OriginalSize != 20480+102400 {
		t.Errorf("original size = %d, want main plus variant", result.OriginalSize)
	}
	if result.Savings != result.OriginalSize-result.OptimizedSize {
		t.Errorf("savings = %d, inconsistent with sizes", result.Savings)
	}
	if pct := result.SavingsPercent(); pct > 100 {
		t.Errorf("savings percent = %.1f, must not exceed 100", pct)
	}
}

func TestOptimizeIsIdempotent(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	stub := testsupport.NewStubCodec(4096)
	engine, store := newEngine(t, cfg, stub)
	ctx := context.Background()

	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	first, err := engine.OptimizeAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("first OptimizeAsset: %v", err)
	}
	second, err := engine.OptimizeAsset(ctx, asset.ID)
	if err != nil {
		t.Fatalf("second OptimizeAsset: %v", err)
	}
	if second.Status != first.Status || second.Savings != first.Savings {
		t.Errorf("second run diverged: first=%+v second=%+v", first, second)
	}
	if info, err := os.Stat(fileutil.DerivedPath(source, "webp")); err != nil || info.Size() != 4096 {
		t.Errorf("derivative should simply be rewritten: %v", err)
	}
}

func TestAvifFallsBackToWebP(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithFormats(config.TargetAVIF))
	stub := testsupport.NewStubCodec(4096)
	stub.Formats = map[config.Format]bool{config.FormatWebP: true}
	engine, store := newEngine(t, cfg, stub)

	source := filepath.Join(cfg.Paths.LibraryDir, "photo.jpg")
	testsupport.WriteFileBytes(t, source, 20480)
	asset := testsupport.MustAddAsset(t, store, source, "image/jpeg", 20480)

	result, err := engine.OptimizeAsset(context.Background(), asset.ID)
	if err != nil {
		t.Fatalf("OptimizeAsset: %v", err)
	}
	if result.Status != assets.StatusOptimized {
		t.Fatalf("status = %q, want optimized via webp fallback", result.Status)
	}
	if len(result.FormatsGenerated) != 1 || result.FormatsGenerated[0] != "webp" {
		t.Errorf("generated = %v, want [webp]", result.FormatsGenerated)
	}
}
