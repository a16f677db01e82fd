package testsupport

import (
	"context"
	"testing"

	"pixelpress/internal/assets"
	"pixelpress/internal/config"
)

// MustOpenStore opens the catalog for a test config and closes it on
// cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *assets.Store {
	t.Helper()
	store, err := assets.Open(cfg)
	if err != nil {
		t.Fatalf("open catalog store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// MustAddAsset registers a main file in the catalog.
func MustAddAsset(t testing.TB, store *assets.Store, path, mime string, size int64) *assets.Asset {
	t.Helper()
	asset, err := store.Add(context.Background(), path, mime, size)
	if err != nil {
		t.Fatalf("add asset %s: %v", path, err)
	}
	return asset
}
