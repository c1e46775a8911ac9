package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	_ "modernc.org/sqlite"

	"worldshelf/internal/catalog"
	"worldshelf/internal/testsupport"
)

const (
	worldA = "wrld_4cf554b4-430c-4f8f-b53e-1f294eed230b"
	worldB = "wrld_1b9c6d1e-7e0a-4d4b-9a1f-2a3b4c5d6e7f"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	if store.Path() != cfg.DatabasePath() {
		t.Fatalf("expected db at %s, got %s", cfg.DatabasePath(), store.Path())
	}
	store.Close()

	reopened, err := catalog.Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	reopened.Close()
}

func TestOpenRejectsSchemaMismatch(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	store.Close()

	db, err := sql.Open("sqlite", cfg.DatabasePath())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 999"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	db.Close()

	if _, err := catalog.Open(cfg); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestFindByExternalID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	missing, err := store.FindByExternalID(ctx, worldA)
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for absent world, got %#v", missing)
	}

	created := testsupport.NewWorld(t, store, worldA, "Sample World")
	found, err := store.FindByExternalID(ctx, worldA)
	if err != nil {
		t.Fatalf("FindByExternalID: %v", err)
	}
	if found == nil || found.ID != created.ID {
		t.Fatalf("expected to find world %d, got %#v", created.ID, found)
	}

	blank, err := store.FindByExternalID(ctx, "")
	if err != nil || blank != nil {
		t.Fatalf("expected nil for blank id, got %#v, %v", blank, err)
	}
}

func TestCreateWorldRejectsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	testsupport.NewWorld(t, store, worldA, "First")
	_, err := store.CreateWorld(ctx, catalog.WorldInput{VRChatWorldID: worldA, Name: "Second"})
	if !errors.Is(err, catalog.ErrDuplicateWorld) {
		t.Fatalf("expected ErrDuplicateWorld, got %v", err)
	}

	// Hand-entered worlds have no external ID and never collide.
	for _, name := range []string{"Manual One", "Manual Two"} {
		if _, err := store.CreateWorld(ctx, catalog.WorldInput{Name: name}); err != nil {
			t.Fatalf("CreateWorld %s: %v", name, err)
		}
	}
}

func TestWorldRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	created, err := store.CreateWorld(ctx, catalog.WorldInput{
		VRChatWorldID: worldA,
		Name:          "The Black Cat",
		AuthorName:    "spookyghostboo",
		Description:   "A cozy bar",
		ThumbnailURL:  "https://example.test/thumb.png",
		Tags:          []string{"bar", "chill"},
	})
	if err != nil {
		t.Fatalf("CreateWorld: %v", err)
	}

	got, err := store.GetWorld(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetWorld: %v", err)
	}
	want := catalog.World{
		ID:            created.ID,
		VRChatWorldID: worldA,
		Name:          "The Black Cat",
		AuthorName:    "spookyghostboo",
		Description:   "A cozy bar",
		ThumbnailURL:  "https://example.test/thumb.png",
		Tags:          []string{"bar", "chill"},
		GroupIDs:      []int64{},
	}
	got.CreatedAt, got.UpdatedAt = time.Time{}, time.Time{}
	if diff := cmp.Diff(want, *got); diff != "" {
		t.Fatalf("world mismatch (-want +got):\n%s", diff)
	}

	updated, err := store.UpdateWorld(ctx, created.ID, catalog.WorldInput{
		VRChatWorldID: worldA,
		Name:          "The Black Cat",
		UserMemo:      "visit on friday",
	})
	if err != nil {
		t.Fatalf("UpdateWorld: %v", err)
	}
	if updated.UserMemo != "visit on friday" || updated.AuthorName != "" || len(updated.Tags) != 0 {
		t.Fatalf("unexpected update result: %#v", updated)
	}

	if _, err := store.UpdateWorld(ctx, 9999, catalog.WorldInput{Name: "ghost"}); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.DeleteWorld(ctx, created.ID); err != nil {
		t.Fatalf("DeleteWorld: %v", err)
	}
	if _, err := store.GetWorld(ctx, created.ID); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestListWorldsFilters(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	bar := testsupport.NewWorld(t, store, worldA, "Midnight Bar")
	testsupport.NewWorld(t, store, worldB, "Sky Garden")
	if _, err := store.CreateWorld(ctx, catalog.WorldInput{Name: "alpine lodge", Tags: []string{"Snow"}}); err != nil {
		t.Fatalf("CreateWorld: %v", err)
	}
	group, err := store.CreateGroup(ctx, catalog.GroupInput{Name: "Hangouts"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := store.AddWorldToGroup(ctx, bar.ID, group.ID); err != nil {
		t.Fatalf("AddWorldToGroup: %v", err)
	}

	all, err := store.ListWorlds(ctx, catalog.ListOptions{})
	if err != nil {
		t.Fatalf("ListWorlds: %v", err)
	}
	names := worldNames(all)
	if diff := cmp.Diff([]string{"alpine lodge", "Midnight Bar", "Sky Garden"}, names); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}

	inGroup, err := store.ListWorlds(ctx, catalog.ListOptions{GroupID: group.ID})
	if err != nil {
		t.Fatalf("ListWorlds group: %v", err)
	}
	if len(inGroup) != 1 || inGroup[0].ID != bar.ID {
		t.Fatalf("expected only the bar in group, got %v", worldNames(inGroup))
	}
	if diff := cmp.Diff([]int64{group.ID}, inGroup[0].GroupIDs); diff != "" {
		t.Fatalf("group ids mismatch (-want +got):\n%s", diff)
	}

	searched, err := store.ListWorlds(ctx, catalog.ListOptions{Search: "SNOW"})
	if err != nil {
		t.Fatalf("ListWorlds search: %v", err)
	}
	if diff := cmp.Diff([]string{"alpine lodge"}, worldNames(searched)); diff != "" {
		t.Fatalf("search mismatch (-want +got):\n%s", diff)
	}
}

func TestDeleteWorlds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenCatalog(t, cfg)
	ctx := context.Background()

	a := testsupport.NewWorld(t, store, worldA, "A")
	b := testsupport.NewWorld(t, store, worldB, "B")
	n, err := store.DeleteWorlds(ctx, []int64{a.ID, b.ID, 9999})
	if err != nil {
		t.Fatalf("DeleteWorlds: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	if n, err := store.DeleteWorlds(ctx, nil); err != nil || n != 0 {
		t.Fatalf("expected no-op for empty ids, got %d, %v", n, err)
	}
}

func worldNames(worlds []*catalog.World) []string {
	names := make([]string, 0, len(worlds))
	for _, world := range worlds {
		names = append(names, world.Name)
	}
	return names
}
