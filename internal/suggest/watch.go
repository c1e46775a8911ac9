package suggest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"worldshelf/internal/logging"
)

// Watch watches dir recursively and calls fn once PNG writes have been quiet
// for debounce. Directories created later are watched too. fn runs on the
// watching goroutine, so events arriving during a rescan are coalesced into
// the next one. Watch returns when ctx is done.
func (e *Engine) Watch(ctx context.Context, dir string, debounce time.Duration, fn func(context.Context)) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("watch %s: not a directory", dir)
	}
	if debounce <= 0 {
		debounce = time.Second
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	logger := e.logger.With(logging.String(logging.FieldPath, dir))
	// addTree watches root and its subdirectories, reporting whether any PNG
	// files were already inside.
	addTree := func(root string) (foundPNG bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				logger.Warn("failed to access path", logging.String("entry", path), logging.Error(walkErr))
				return nil
			}
			if !d.IsDir() {
				foundPNG = foundPNG || IsPNG(path)
				return nil
			}
			if err := watcher.Add(path); err != nil {
				logger.Warn("failed to add watch", logging.String("entry", path), logging.Error(err))
				return nil
			}
			logger.Debug("added watch", logging.String("entry", path))
			return nil
		})
		return foundPNG
	}
	addTree(dir)

	var (
		timer  *time.Timer
		settle <-chan time.Time
	)
	arm := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
		} else {
			timer.Reset(debounce)
		}
		settle = timer.C
	}
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					// Photos moved in with the directory raise no events of their own.
					if addTree(event.Name) {
						arm()
					}
					continue
				}
			}
			if !IsPNG(event.Name) || !event.Has(fsnotify.Create|fsnotify.Write|fsnotify.Rename) {
				continue
			}
			arm()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("photo watcher error", logging.Error(err))
		case <-settle:
			settle = nil
			logger.Debug("photo directory settled; rescanning")
			fn(ctx)
		}
	}
}
