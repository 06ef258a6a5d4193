package board

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"

	"github.com/davidcforbes/beads-kanban/internal/config"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

func watchedWorkspace(t *testing.T) string {
	t.Helper()
	beadsDir := filepath.Join(t.TempDir(), ".beads")
	if err := os.MkdirAll(beadsDir, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BEADS_DIR", beadsDir)
	return beadsDir
}

func TestWatchInvalidatesOnStoreChange(t *testing.T) {
	beadsDir := watchedWorkspace(t)
	b, fake := newTestBoard(t, func(o *config.Options) { o.WatchDebounce = 20 * time.Millisecond })
	fake.Stub("ready", issueRows("open", 2))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.NoError(t, err)

	changed := make(chan struct{}, 1)
	err = b.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	assert.NoError(t, err)

	jsonl := filepath.Join(beadsDir, "issues.jsonl")
	if err := os.WriteFile(jsonl, []byte(`{"id":"bd-1"}`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never reported the change")
	}

	_, err = b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, 2, fake.CallsFor("ready"), "an out-of-band store change must drop cached pages")
}

func TestWatchIgnoresUnrelatedFiles(t *testing.T) {
	beadsDir := watchedWorkspace(t)
	b, _ := newTestBoard(t, func(o *config.Options) { o.WatchDebounce = 20 * time.Millisecond })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	err := b.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	assert.NoError(t, err)

	if err := os.WriteFile(filepath.Join(beadsDir, "scratch.txt"), []byte("notes"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
		t.Fatal("unrelated file triggered an invalidation")
	case <-time.After(200 * time.Millisecond):
	}

	// The watcher is still alive: a store file fires as usual.
	if err := os.WriteFile(filepath.Join(beadsDir, "beads.db"), []byte("sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-changed:
	case <-time.After(3 * time.Second):
		t.Fatal("store write after unrelated write was missed")
	}
}

func TestStoreChangedFilters(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"jsonl write", fsnotify.Event{Name: "/w/.beads/issues.jsonl", Op: fsnotify.Write}, true},
		{"alternate jsonl name", fsnotify.Event{Name: "/w/.beads/beads.jsonl", Op: fsnotify.Create}, true},
		{"database write", fsnotify.Event{Name: "/w/.beads/beads.db", Op: fsnotify.Write}, true},
		{"wal sidecar", fsnotify.Event{Name: "/w/.beads/beads.db-wal", Op: fsnotify.Write}, true},
		{"shm sidecar", fsnotify.Event{Name: "/w/.beads/beads.db-shm", Op: fsnotify.Create}, true},
		{"workspace config", fsnotify.Event{Name: "/w/.beads/config.yaml", Op: fsnotify.Write}, true},
		{"rename into place", fsnotify.Event{Name: "/w/.beads/issues.jsonl", Op: fsnotify.Rename}, true},
		{"unrelated file", fsnotify.Event{Name: "/w/.beads/scratch.txt", Op: fsnotify.Write}, false},
		{"mutation audit log", fsnotify.Event{Name: "/w/.beads/kanban-events.log", Op: fsnotify.Write}, false},
		{"chmod only", fsnotify.Event{Name: "/w/.beads/issues.jsonl", Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: "/w/.beads/issues.jsonl", Op: fsnotify.Remove}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, storeChanged(tt.event))
		})
	}
}
