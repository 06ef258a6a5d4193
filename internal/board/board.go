// Package board is the kanban adapter over the bd backend: column
// metadata, incremental page loading, lazy card details, the mutation
// pipeline, and workspace change watching. Everything shares one
// short-TTL cache so repeated paints of the same board state cost zero
// subprocess invocations.
//
// The adapter never holds authoritative state. Every read is a cached
// point-in-time backend query; every mutation is a round-trip through
// the bd CLI followed by cache invalidation scoped to what the
// mutation could have touched.
package board

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/semaphore"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/cache"
	"github.com/davidcforbes/beads-kanban/internal/config"
	"github.com/davidcforbes/beads-kanban/internal/telemetry"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

// Board coordinates reads and writes against one bd workspace. Safe
// for concurrent use; the CLI watch loop and HTTP handlers share one
// instance.
type Board struct {
	client  *backend.Client
	cache   *cache.Cache
	dedup   *cache.Deduplicator
	sem     *semaphore.Weighted
	opts    config.Options
	columns []types.ColumnKey
}

// New builds a board over an existing client. An empty column set
// means the four standard columns.
func New(client *backend.Client, opts config.Options, columns []types.ColumnKey) *Board {
	opts.SetDefaults()
	if len(columns) == 0 {
		columns = types.StandardColumns()
	}
	return &Board{
		client:  client,
		cache:   cache.New(opts.CacheTTL, 0),
		dedup:   cache.NewDeduplicator(opts.DedupTimeout),
		sem:     semaphore.NewWeighted(int64(opts.MaxInFlight)),
		opts:    opts,
		columns: columns,
	}
}

// Open wires the standard stack for opts: an exec runner on the
// configured backend binary, telemetry instrumentation when enabled,
// and a typed client over both.
func Open(opts config.Options, columns []types.ColumnKey) *Board {
	opts.SetDefaults()
	runner := telemetry.WrapRunner(&backend.ExecRunner{Binary: opts.BackendBinary})
	client := backend.NewClient(runner, opts.ReadTimeout, opts.WriteTimeout)
	return New(client, opts, columns)
}

// Columns returns the board's column set in display order.
func (b *Board) Columns() []types.ColumnKey {
	out := make([]types.ColumnKey, len(b.columns))
	copy(out, b.columns)
	return out
}

// Options returns the resolved configuration the board runs with.
func (b *Board) Options() config.Options {
	return b.opts
}

// Invalidate drops every cached snapshot and supersedes in-flight
// fetches. The watcher calls this when the workspace changes from
// outside; mutations call it for cross-column effects.
func (b *Board) Invalidate() {
	b.cache.Invalidate()
}

// CacheStats reports cache hit counters for diagnostics output.
func (b *Board) CacheStats() cache.Stats {
	return b.cache.Stats()
}

// acquire claims a slot in the subprocess semaphore. Every backend
// call holds a slot so rapid UI interaction cannot fork-bomb bd.
func (b *Board) acquire(ctx context.Context) (func(), error) {
	if err := b.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { b.sem.Release(1) }, nil
}

// transientBackoff is the retry schedule for connection-lost reads and
// metadata fallbacks: quick attempts under a short cap. Package var so
// tests can shrink the waits.
var transientBackoff = func() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 500 * time.Millisecond
	bo.MaxElapsedTime = 2 * time.Second
	return bo
}

// retryConnectionLost reruns a read while it fails with a
// connection-lost kind (backend binary or daemon briefly unreachable).
// Any other failure is permanent. Mutations never come through here; a
// retried create could duplicate records.
func retryConnectionLost(ctx context.Context, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		if backend.KindOf(err) == backend.KindConnectionLost {
			return err
		}
		return backoff.Permanent(err)
	}
	return backoff.Retry(op, backoff.WithContext(transientBackoff(), ctx))
}

// retryBackend reruns a read on any backend-side failure. Used only on
// the metadata fallback path, where the summary call already failed
// and the per-column counts are the last resort.
func retryBackend(ctx context.Context, fn func() error) error {
	op := func() error {
		err := fn()
		if err == nil {
			return nil
		}
		var bdErr *backend.Error
		if errors.As(err, &bdErr) && bdErr.IsValidation() {
			return backoff.Permanent(err)
		}
		return err
	}
	return backoff.Retry(op, backoff.WithContext(transientBackoff(), ctx))
}
