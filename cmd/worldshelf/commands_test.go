package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"worldshelf/internal/catalog"
	"worldshelf/internal/config"
	"worldshelf/internal/suggest"
	"worldshelf/internal/testsupport"
	"worldshelf/internal/worlds"
)

func TestConfigValidateReportsPaths(t *testing.T) {
	env := setupCLITestEnv(t)
	out := env.mustRun(t, "config", "validate")
	requireContains(t, out, "Config path: "+env.configPath)
	requireContains(t, out, env.cfg.DatabasePath())
	requireContains(t, out, "Configuration valid")
}

func TestConfigInitWritesLoadableSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "nested", "worldshelf.toml")
	out, err := runCLI(t, []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, target)
	if _, _, exists, err := config.Load(target); err != nil || !exists {
		t.Fatalf("sample not loadable: exists=%v err=%v", exists, err)
	}
	if _, err := runCLI(t, []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestWorldsAddListShow(t *testing.T) {
	env := setupCLITestEnv(t)

	out := env.mustRun(t, "groups", "add", "Bars", "--description", "late night")
	requireContains(t, out, "Created group 1: Bars")

	out = env.mustRun(t, "worlds", "add", blackCat, "--group", "1")
	requireContains(t, out, "The Black Cat")

	out = env.mustRun(t, "--json", "worlds", "list", "--search", "BAR")
	var listed []catalog.World
	if err := json.Unmarshal([]byte(out), &listed); err != nil {
		t.Fatalf("decode list: %v\n%s", err, out)
	}
	if len(listed) != 1 || listed[0].VRChatWorldID != blackCat || listed[0].AuthorName != "spookyghostboo" {
		t.Fatalf("unexpected list: %+v", listed)
	}
	if len(listed[0].GroupIDs) != 1 || listed[0].GroupIDs[0] != 1 {
		t.Fatalf("expected group membership, got %v", listed[0].GroupIDs)
	}

	out = env.mustRun(t, "worlds", "list")
	requireContains(t, out, "1\tThe Black Cat\tspookyghostboo\t"+blackCat+"\tbar")

	out = env.mustRun(t, "worlds", "show", "1")
	requireContains(t, out, "Author:      spookyghostboo")
	requireContains(t, out, "Groups:      1")

	out = env.mustRun(t, "groups", "list")
	requireContains(t, out, "1\tBars\t1\tlate night")

	if _, err := env.run(t, "worlds", "add", blackCat); !errors.Is(err, catalog.ErrDuplicateWorld) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}

func TestWorldsCreateUpdateDelete(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, err := env.run(t, "worlds", "create", "--memo", "no name"); err == nil {
		t.Fatal("expected validation error without a name")
	} else {
		var verr *worlds.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	}

	out := env.mustRun(t, "worlds", "create", "--name", "Hand Entered", "--tag", "chill", "--tag", "music")
	requireContains(t, out, "Created world 1: Hand Entered")

	out = env.mustRun(t, "worlds", "update", "1", "--memo", "great sunsets")
	requireContains(t, out, "Updated world 1: Hand Entered")

	out = env.mustRun(t, "--json", "worlds", "show", "1")
	var detail struct {
		Name     string   `json:"name"`
		UserMemo string   `json:"userMemo"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("decode show: %v", err)
	}
	if detail.UserMemo != "great sunsets" || len(detail.Tags) != 2 {
		t.Fatalf("update lost fields: %+v", detail)
	}

	env.mustRun(t, "worlds", "delete", "1")
	if _, err := env.run(t, "worlds", "show", "1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := env.run(t, "worlds", "show", "abc"); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
}

func TestWorldsFetchAppliesAuthorTags(t *testing.T) {
	env := setupCLITestEnv(t)
	out := env.mustRun(t, "--json", "worlds", "fetch", blackCat)
	var fetched struct {
		Name       string   `json:"name"`
		Thumbnail  string   `json:"thumbnail"`
		AuthorTags []string `json:"authorTags"`
	}
	if err := json.Unmarshal([]byte(out), &fetched); err != nil {
		t.Fatalf("decode fetch: %v", err)
	}
	if fetched.Name != "The Black Cat" || fetched.Thumbnail != "https://example.test/cat.png" {
		t.Fatalf("unexpected fetch: %+v", fetched)
	}
	if len(fetched.AuthorTags) != 1 || fetched.AuthorTags[0] != "bar" {
		t.Fatalf("expected author tags, got %v", fetched.AuthorTags)
	}

	out = env.mustRun(t, "worlds", "list")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("fetch should not catalog, got %q", out)
	}
}

func TestSuggestScanAcceptDismiss(t *testing.T) {
	env := setupCLITestEnv(t)
	photos := filepath.Join(env.baseDir, "VRChat")
	testsupport.WriteWorldPNG(t, filepath.Join(photos, "2025-03", "a.png"), blackCat)
	testsupport.WriteWorldPNG(t, filepath.Join(photos, "2025-03", "b.png"), rooftop)

	out := env.mustRun(t, "suggest", "scan")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no suggestions without a photo directory, got %q", out)
	}

	env.mustRun(t, "prefs", "set", "--photo-dir", photos, "--scan-days", "30")

	out = env.mustRun(t, "--json", "suggest", "scan")
	var got []suggest.Suggestion
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode scan: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 suggestions, got %+v", got)
	}

	out = env.mustRun(t, "suggest", "dismiss", rooftop)
	requireContains(t, out, "Dismissed "+rooftop)
	out = env.mustRun(t, "suggest", "dismiss", rooftop)
	requireContains(t, out, "already dismissed")

	env.mustRun(t, "suggest", "accept", blackCat)

	out = env.mustRun(t, "suggest", "scan")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected accepted and dismissed worlds to drop out, got %q", out)
	}

	out = env.mustRun(t, "prefs", "dismissed")
	requireContains(t, out, rooftop)
	out = env.mustRun(t, "prefs", "dismissed", "--clear")
	requireContains(t, out, "Cleared 1 dismissed worlds")

	out = env.mustRun(t, "suggest", "scan")
	requireContains(t, out, rooftop+"\tRooftop\tsomeone\t2025-03/b.png")
}

func TestPrefsShowAndValidation(t *testing.T) {
	env := setupCLITestEnv(t)
	out := env.mustRun(t, "prefs", "show")
	requireContains(t, out, "Scan period:     14 days")

	if _, err := env.run(t, "prefs", "set"); err == nil {
		t.Fatal("expected error when nothing to set")
	}
	if _, err := env.run(t, "prefs", "set", "--scan-days", "0"); err == nil {
		t.Fatal("expected error for zero scan days")
	}
}

func TestPhotosImportListInspectDelete(t *testing.T) {
	env := setupCLITestEnv(t)
	src := filepath.Join(env.baseDir, "VRChat_2025-03-01.png")
	testsupport.WriteWorldPNG(t, src, blackCat)

	out := env.mustRun(t, "photos", "inspect", src)
	requireContains(t, out, "World ID: "+blackCat)

	out = env.mustRun(t, "photos", "import", src)
	requireContains(t, out, "Imported photo 1 for world 1: The Black Cat")
	requireContains(t, out, "World was new")

	out = env.mustRun(t, "photos", "list", "1")
	requireContains(t, out, "VRChat_2025-03-01.png")

	plain := filepath.Join(env.baseDir, "plain.png")
	testsupport.WritePNG(t, plain)
	if _, err := env.run(t, "photos", "import", plain); !errors.Is(err, worlds.ErrWorldIDNotFound) {
		t.Fatalf("expected ErrWorldIDNotFound, got %v", err)
	}
	env.mustRun(t, "photos", "import", plain, "--world", "1")

	env.mustRun(t, "photos", "delete", "1")
	entries, err := os.ReadDir(env.cfg.PhotoStoreDir())
	if err != nil {
		t.Fatalf("read photo store: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one stored photo left, got %d", len(entries))
	}
}

func TestGroupsAssignAndDelete(t *testing.T) {
	env := setupCLITestEnv(t)
	env.mustRun(t, "groups", "add", "Chill")
	env.mustRun(t, "worlds", "create", "--name", "Quiet Lake")

	env.mustRun(t, "groups", "assign", "1", "1")
	out := env.mustRun(t, "worlds", "list", "--group", "1")
	requireContains(t, out, "Quiet Lake")

	env.mustRun(t, "groups", "unassign", "1", "1")
	if _, err := env.run(t, "groups", "unassign", "1", "1"); !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	env.mustRun(t, "groups", "assign", "1", "1")
	env.mustRun(t, "groups", "update", "1", "--name", "Calm")
	out = env.mustRun(t, "groups", "list")
	requireContains(t, out, "1\tCalm\t1")

	env.mustRun(t, "groups", "delete", "1", "--with-worlds")
	out = env.mustRun(t, "worlds", "list")
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected member worlds deleted, got %q", out)
	}
}

func TestDoctorReportsMissingScreenshotFolder(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "doctor")
	if err == nil {
		t.Fatal("expected failure without a screenshot folder")
	}
	requireContains(t, out, "Screenshot folder\tFAIL")

	photos := filepath.Join(env.baseDir, "VRChat")
	if err := os.MkdirAll(photos, 0o755); err != nil {
		t.Fatal(err)
	}
	env.mustRun(t, "prefs", "set", "--photo-dir", photos)
	out = env.mustRun(t, "doctor")
	requireContains(t, out, "Data directory\tok")
}
