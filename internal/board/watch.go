package board

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/davidcforbes/beads-kanban/internal/debug"
	"github.com/davidcforbes/beads-kanban/internal/workspace"
)

// Watch invalidates the cache when the workspace changes from outside
// the board: another bd process, a git pull, an agent writing issues.
// onChange runs after each debounced invalidation; nil is allowed.
//
// The returned error covers watcher startup only. Callers treat a
// failed start as degraded freshness (TTL expiry still applies),
// report it once, and carry on. The watch stops when ctx is done.
func (b *Board) Watch(ctx context.Context, onChange func()) error {
	beadsDir := workspace.FindBeadsDir()
	if beadsDir == "" {
		return fmt.Errorf("no .beads directory found")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(beadsDir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watching %s: %w", beadsDir, err)
	}

	go b.watchLoop(ctx, watcher, onChange)
	return nil
}

func (b *Board) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, onChange func()) {
	defer func() { _ = watcher.Close() }()

	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !storeChanged(event) {
				continue
			}
			debug.Logf("watch: %s %s", event.Op, event.Name)
			// Debounce rapid changes: bd writes the database and the
			// JSONL export back to back.
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(b.opts.WatchDebounce, func() {
				if ctx.Err() != nil {
					return
				}
				b.cache.Invalidate()
				if onChange != nil {
					onChange()
				}
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			debug.Logf("watch error: %v", err)
		}
	}
}

// storeChanged reports whether an event touches the backend's data
// files: the JSONL export, the SQLite database and its sidecars, or
// the workspace config.
func storeChanged(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(event.Name)
	if name == "issues.jsonl" || name == "beads.jsonl" || name == "config.yaml" {
		return true
	}
	return strings.HasSuffix(name, ".db") ||
		strings.HasSuffix(name, ".db-wal") ||
		strings.HasSuffix(name, ".db-shm")
}
