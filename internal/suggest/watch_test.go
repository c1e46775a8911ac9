package suggest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"worldshelf/internal/suggest"
	"worldshelf/internal/testsupport"
)

func TestWatchRescansAfterNewPhoto(t *testing.T) {
	dir := t.TempDir()
	engine := suggest.New(&fakeLookup{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	triggered := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- engine.Watch(ctx, dir, 50*time.Millisecond, func(context.Context) {
			select {
			case triggered <- struct{}{}:
			default:
			}
		})
	}()

	// Give the watcher time to register before writing.
	time.Sleep(200 * time.Millisecond)
	testsupport.WriteWorldPNG(t, filepath.Join(dir, "new.png"), worldAAAA)

	select {
	case <-triggered:
	case <-time.After(5 * time.Second):
		t.Fatal("expected rescan after a new photo")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}

func TestWatchRescansAfterFolderMovedIn(t *testing.T) {
	dir := t.TempDir()
	staging := filepath.Join(t.TempDir(), "2024-05")
	testsupport.WriteWorldPNG(t, filepath.Join(staging, "nested", "shot.png"), worldAAAA)
	engine := suggest.New(&fakeLookup{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	triggered := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- engine.Watch(ctx, dir, 50*time.Millisecond, func(context.Context) {
			select {
			case triggered <- struct{}{}:
			default:
			}
		})
	}()

	time.Sleep(200 * time.Millisecond)
	if err := os.Rename(staging, filepath.Join(dir, "2024-05")); err != nil {
		t.Fatalf("move folder into watched directory: %v", err)
	}

	select {
	case <-triggered:
	case <-time.After(5 * time.Second):
		t.Fatal("expected rescan after a populated folder was moved in")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not stop after cancellation")
	}
}

func TestWatchRequiresDirectory(t *testing.T) {
	engine := suggest.New(&fakeLookup{}, nil)
	file := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := engine.Watch(context.Background(), file, time.Second, func(context.Context) {}); err == nil {
		t.Fatal("expected error for non-directory")
	}
	if err := engine.Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), time.Second, func(context.Context) {}); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
