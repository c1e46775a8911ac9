package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"worldshelf/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected probe file removed, found %d entries", len(entries))
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if result := CheckDirectoryAccess("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
	if result := CheckReadableDirectory("test", f); result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckReadableDirectoryCountsEntries(t *testing.T) {
	dir := t.TempDir()
	testsupport.WriteFile(t, filepath.Join(dir, "a.png"), []byte("x"))
	result := CheckReadableDirectory("shots", dir)
	if !result.Passed || !strings.Contains(result.Detail, "1 entries") {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestCheckVRChat_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/1/config" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Header.Get("User-Agent") != "worldshelf-test/1.0" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckVRChat(context.Background(), srv.URL+"/api/1/", "worldshelf-test/1.0")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckVRChat_Failures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		detail string
	}{
		{name: "forbidden", status: http.StatusForbidden, detail: "user_agent"},
		{name: "rate limited", status: http.StatusTooManyRequests, detail: "rate limited"},
		{name: "server error", status: http.StatusBadGateway, detail: "502"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			result := CheckVRChat(context.Background(), srv.URL, "agent")
			if result.Passed {
				t.Fatal("expected failure")
			}
			if !strings.Contains(result.Detail, tt.detail) {
				t.Fatalf("expected detail containing %q, got %q", tt.detail, result.Detail)
			}
		})
	}
}

func TestCheckVRChat_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if result := CheckVRChat(context.Background(), url, "agent"); result.Passed {
		t.Fatal("expected failure for closed server")
	}
	if result := CheckVRChat(context.Background(), "", "agent"); result.Passed || result.Detail != "missing base url" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestRunAll(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	results := RunAll(context.Background(), cfg, Options{})
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if AllPassed(results) {
		t.Fatal("expected unset screenshot folder to fail")
	}

	results = RunAll(context.Background(), cfg, Options{PhotoDirectory: t.TempDir()})
	if !AllPassed(results) {
		t.Fatalf("expected all checks to pass, got %+v", results)
	}
	if RunAll(context.Background(), nil, Options{}) != nil {
		t.Fatal("expected nil results for nil config")
	}
}
