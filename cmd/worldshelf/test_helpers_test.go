package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"worldshelf/internal/config"
	"worldshelf/internal/testsupport"
)

const (
	blackCat = "wrld_4cf554b4-430c-4f8f-b53e-1f294eed230b"
	rooftop  = "wrld_00000000-0000-4000-8000-000000000002"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	env := &cliTestEnv{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payloads := map[string]map[string]any{
			blackCat: {
				"id":                blackCat,
				"name":              "The Black Cat",
				"authorName":        "spookyghostboo",
				"thumbnailImageUrl": "https://example.test/cat.png",
				"tags":              []string{"author_tag_bar", "system_approved"},
				"capacity":          32,
			},
			rooftop: {
				"id":         rooftop,
				"name":       "Rooftop",
				"authorName": "someone",
				"imageUrl":   "https://example.test/roof.png",
				"tags":       []string{},
			},
		}
		id := strings.TrimPrefix(r.URL.Path, "/api/1/worlds/")
		payload, ok := payloads[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("WORLDSHELF_USER_AGENT", "")

	cfg := testsupport.NewConfig(t, testsupport.WithVRChatURL(server.URL+"/api/1"))
	cfg.Logging.Level = "error"
	configPath := filepath.Join(base, "worldshelf.toml")
	writeTestConfig(t, configPath, cfg)

	env.cfg = cfg
	env.configPath = configPath
	env.baseDir = base
	return env
}

func (e *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append([]string{"--config", e.configPath}, args...))
}

func (e *cliTestEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.run(t, args...)
	if err != nil {
		t.Fatalf("worldshelf %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func runCLI(t *testing.T, args []string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
