package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"worldshelf/internal/catalog"
	"worldshelf/internal/testsupport"
)

func TestPhotoLifecycle(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	world := testsupport.NewWorld(t, store, worldA, "Midnight Bar")
	older := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	first, err := store.CreatePhoto(ctx, catalog.PhotoInput{
		WorldID:          world.ID,
		FilePath:         "/data/photos/one.png",
		OriginalFileName: "VRChat_2024-01-02.png",
		BlurHash:         "LEHV6nWB2yk8pyo0adR*.7kCMdnj",
		TakenAt:          &older,
	})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}
	if first.TakenAt == nil || !first.TakenAt.Equal(older) {
		t.Fatalf("unexpected taken at: %v", first.TakenAt)
	}
	second, err := store.CreatePhoto(ctx, catalog.PhotoInput{
		WorldID:          world.ID,
		FilePath:         "/data/photos/two.png",
		OriginalFileName: "VRChat_2024-01-04.png",
		TakenAt:          &newer,
	})
	if err != nil {
		t.Fatalf("CreatePhoto: %v", err)
	}

	photos, err := store.ListPhotosByWorld(ctx, world.ID)
	if err != nil {
		t.Fatalf("ListPhotosByWorld: %v", err)
	}
	if len(photos) != 2 || photos[0].ID != second.ID || photos[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", photos)
	}

	if err := store.DeletePhoto(ctx, first.ID); err != nil {
		t.Fatalf("DeletePhoto: %v", err)
	}
	if _, err := store.GetPhoto(ctx, first.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.DeleteWorld(ctx, world.ID); err != nil {
		t.Fatalf("DeleteWorld: %v", err)
	}
	if _, err := store.GetPhoto(ctx, second.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected photo removed with world, got %v", err)
	}
}

func TestCreatePhotoRequiresWorld(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)

	_, err := store.CreatePhoto(context.Background(), catalog.PhotoInput{
		WorldID:          42,
		FilePath:         "/data/photos/x.png",
		OriginalFileName: "x.png",
	})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
