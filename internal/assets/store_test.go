package assets_test

import (
	"context"
	"errors"
	"testing"

	"pixelpress/internal/assets"
	"pixelpress/internal/testsupport"
)

func TestAddAndGetAsset(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.MustAddAsset(t, store, "/library/photo.jpg", "image/jpeg", 20480)
	if asset.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if asset.Processed() {
		t.Error("fresh asset should be unprocessed")
	}

	got, err := store.GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SourcePath != "/library/photo.jpg" || got.MimeType != "image/jpeg" || got.FileSize != 20480 {
		t.Errorf("roundtrip mismatch: %+v", got)
	}
}

func TestAddRejectsDuplicatePath(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.MustAddAsset(t, store, "/library/photo.jpg", "image/jpeg", 1024)
	if _, err := store.Add(ctx, "/library/photo.jpg", "image/jpeg", 1024); !errors.Is(err, assets.ErrDuplicatePath) {
		t.Fatalf("expected ErrDuplicatePath, got %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.GetByID(context.Background(), 999); !errors.Is(err, assets.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFindByPathMissingReturnsNil(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	asset, err := store.FindByPath(context.Background(), "/library/absent.png")
	if err != nil {
		t.Fatalf("FindByPath: %v", err)
	}
	if asset != nil {
		t.Fatalf("expected nil asset, got %+v", asset)
	}
}

func TestListUnprocessedOrdersAndFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := testsupport.MustAddAsset(t, store, "/library/a.jpg", "image/jpeg", 1024)
	second := testsupport.MustAddAsset(t, store, "/library/b.jpg", "image/jpeg", 1024)
	third := testsupport.MustAddAsset(t, store, "/library/c.jpg", "image/jpeg", 1024)

	if err := store.SetResult(ctx, first.ID, &assets.Result{Status: assets.StatusOptimized, AllOK: true}); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	pending, err := store.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending assets, got %d", len(pending))
	}
	if pending[0].ID != second.ID || pending[1].ID != third.ID {
		t.Errorf("wrong order: got ids %d, %d", pending[0].ID, pending[1].ID)
	}

	limited, err := store.ListUnprocessed(ctx, 1)
	if err != nil {
		t.Fatalf("ListUnprocessed limited: %v", err)
	}
	if len(limited) != 1 || limited[0].ID != second.ID {
		t.Errorf("limit should return lowest pending id, got %+v", limited)
	}
}

func TestSetAndClearResult(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.MustAddAsset(t, store, "/library/photo.jpg", "image/jpeg", 40960)
	result := &assets.Result{
		Status:           assets.StatusOptimized,
		OriginalSize:     40960,
		OptimizedSize:    10240,
		Savings:          30720,
		FormatsRequested: []string{"webp"},
		FormatsGenerated: []string{"webp"},
		AllOK:            true,
	}
	if err := store.SetResult(ctx, asset.ID, result); err != nil {
		t.Fatalf("SetResult: %v", err)
	}

	stored, err := store.Result(ctx, asset.ID)
	if err != nil {
		t.Fatalf("Result: %v", err)
	}
	if stored == nil || stored.Status != assets.StatusOptimized || stored.Savings != 30720 {
		t.Fatalf("stored result mismatch: %+v", stored)
	}
	if !stored.Deletable() {
		t.Error("optimized result with generated formats should be deletable")
	}

	if err := store.SetOriginalsDeleted(ctx, asset.ID); err != nil {
		t.Fatalf("SetOriginalsDeleted: %v", err)
	}
	updated, err := store.GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !updated.OriginalsDeleted {
		t.Error("originals_deleted flag not set")
	}

	if err := store.ClearResult(ctx, asset.ID); err != nil {
		t.Fatalf("ClearResult: %v", err)
	}
	cleared, err := store.GetByID(ctx, asset.ID)
	if err != nil {
		t.Fatalf("GetByID after clear: %v", err)
	}
	if cleared.Processed() || cleared.OriginalsDeleted {
		t.Errorf("clear should reset processing state: %+v", cleared)
	}

	pending, err := store.ListUnprocessed(ctx, 10)
	if err != nil {
		t.Fatalf("ListUnprocessed: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != asset.ID {
		t.Errorf("cleared asset should be pending again, got %+v", pending)
	}
}

func TestSkippedResultIsNotDeletable(t *testing.T) {
	result := &assets.Result{Status: assets.StatusSkippedSmall, AllOK: true}
	if result.Deletable() {
		t.Error("skip results must never unlock deletion")
	}
}

func TestVariants(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.MustAddAsset(t, store, "/library/photo.jpg", "image/jpeg", 40960)
	if err := store.AddVariant(ctx, asset.ID, "300x300", "/library/photo-300x300.jpg", 4096); err != nil {
		t.Fatalf("AddVariant: %v", err)
	}
	if err := store.AddVariant(ctx, asset.ID, "1024x768", "/library/photo-1024x768.jpg", 16384); err != nil {
		t.Fatalf("AddVariant: %v", err)
	}

	variants, err := store.Variants(ctx, asset.ID)
	if err != nil {
		t.Fatalf("Variants: %v", err)
	}
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	if variants[0].Name != "300x300" || variants[1].Name != "1024x768" {
		t.Errorf("variants out of insertion order: %+v", variants)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	asset := testsupport.MustAddAsset(t, store, "/library/photo.jpg", "image/jpeg", 1024)
	if err := store.SetMetadata(ctx, asset.ID, "origin", "scan"); err != nil {
		t.Fatalf("SetMetadata: %v", err)
	}
	value, err := store.Metadata(ctx, asset.ID, "origin")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if value != "scan" {
		t.Errorf("metadata value = %q", value)
	}

	if err := store.SetMetadata(ctx, asset.ID, "origin", ""); err != nil {
		t.Fatalf("SetMetadata delete: %v", err)
	}
	value, err = store.Metadata(ctx, asset.ID, "origin")
	if err != nil {
		t.Fatalf("Metadata after delete: %v", err)
	}
	if value != "" {
		t.Errorf("deleted key still present: %q", value)
	}
}

func TestComputeAggregates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.MustAddAsset(t, store, "/library/a.jpg", "image/jpeg", 100000)
	b := testsupport.MustAddAsset(t, store, "/library/b.jpg", "image/jpeg", 50000)
	testsupport.MustAddAsset(t, store, "/library/c.jpg", "image/jpeg", 50000)

	if err := store.SetResult(ctx, a.ID, &assets.Result{
		Status:           assets.StatusOptimized,
		OriginalSize:     100000,
		OptimizedSize:    40000,
		Savings:          60000,
		FormatsGenerated: []string{"webp"},
		AllOK:            true,
	}); err != nil {
		t.Fatalf("SetResult a: %v", err)
	}
	if err := store.SetResult(ctx, b.ID, &assets.Result{
		Status: assets.StatusSkippedSmall,
		AllOK:  true,
	}); err != nil {
		t.Fatalf("SetResult b: %v", err)
	}

	agg, err := store.ComputeAggregates(ctx)
	if err != nil {
		t.Fatalf("ComputeAggregates: %v", err)
	}
	if agg.Total != 3 {
		t.Errorf("total = %d, want 3", agg.Total)
	}
	if agg.Processed != 2 {
		t.Errorf("processed = %d, want 2", agg.Processed)
	}
	if agg.Remaining() != 1 {
		t.Errorf("remaining = %d, want 1", agg.Remaining())
	}
	if agg.SavingsBytes != 60000 {
		t.Errorf("savings = %d, want 60000", agg.SavingsBytes)
	}

	processed, err := store.CountProcessed(ctx)
	if err != nil {
		t.Fatalf("CountProcessed: %v", err)
	}
	if processed != 2 {
		t.Errorf("CountProcessed = %d, want 2", processed)
	}
}
