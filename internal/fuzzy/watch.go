package fuzzy

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the engine's table whenever the JSON file at path is
// rewritten. It blocks until ctx is cancelled.
func (e *Engine) Watch(ctx context.Context, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fuzzy: create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors replace files, which drops the
	// watch when added on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("fuzzy: watch %s: %w", path, err)
	}
	target := filepath.Base(path)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || filepath.Base(event.Name) != target {
				continue
			}
			// Let the write settle before reading.
			time.Sleep(100 * time.Millisecond)
			table, err := LoadTable(path)
			if err != nil {
				e.logger.Warn("keyword table reload failed", "path", path, "err", err)
				continue
			}
			e.setTable(table)
			e.logger.Info("keyword table reloaded", "path", path, "intents", len(table))
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("keyword table watcher error", "err", err)
		}
	}
}
