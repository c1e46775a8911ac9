package testsupport

import (
	"context"
	"testing"

	"worldshelf/internal/catalog"
	"worldshelf/internal/config"
)

// MustOpenCatalog opens a catalog.Store for tests and registers cleanup.
func MustOpenCatalog(t testing.TB, cfg *config.Config) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewWorld creates a catalog world for tests using the provided store.
func NewWorld(t testing.TB, store *catalog.Store, worldID, name string) *catalog.World {
	t.Helper()

	world, err := store.CreateWorld(context.Background(), catalog.WorldInput{
		VRChatWorldID: worldID,
		Name:          name,
	})
	if err != nil {
		t.Fatalf("store.CreateWorld: %v", err)
	}
	return world
}
