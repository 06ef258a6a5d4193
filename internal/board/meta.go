package board

import (
	"context"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/cache"
	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/validation"
)

// fallbackReadyLimit caps the bounded enumeration used to count the
// ready column when the stats call is unavailable. Counts clip here
// rather than scanning the full store.
const fallbackReadyLimit = 1000

// Statistics returns the backend's aggregate counts, cached under the
// board TTL. One call answers every column-count question, which keeps
// board metadata O(1) in the number of issues.
func (b *Board) Statistics(ctx context.Context) (*types.Statistics, error) {
	key := cache.MakeKey("meta", "stats")
	if v, ok := b.cache.Get(key); ok {
		if stats, ok := v.(*types.Statistics); ok {
			return stats, nil
		}
	}

	v, _, err := b.dedup.Execute(key, func() (any, error) {
		ticket := b.cache.Begin(key)
		release, err := b.acquire(ctx)
		if err != nil {
			return nil, err
		}
		defer release()

		var stats *types.Statistics
		err = retryConnectionLost(ctx, func() error {
			s, err := b.client.Stats(ctx)
			if err != nil {
				return err
			}
			stats = s
			return nil
		})
		if err != nil {
			return nil, err
		}
		b.cache.SetLatest(key, ticket, stats)
		return stats, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Statistics), nil
}

// Metadata returns the board skeleton: one ColumnMeta per configured
// column, with a count where one was cheaply available. Counts come
// from a single stats call shared across columns. When stats fails,
// each column is counted individually under a short backoff; when that
// fails too the whole call surfaces MetadataUnavailable and callers
// render a zero-state instead of blocking.
func (b *Board) Metadata(ctx context.Context) (*types.BoardMeta, error) {
	stats, statsErr := b.Statistics(ctx)

	meta := &types.BoardMeta{Columns: make([]types.ColumnMeta, 0, len(b.columns))}
	for _, key := range b.columns {
		var count int
		if statsErr == nil {
			count = countFromStats(stats, key)
		} else {
			n, err := b.fallbackColumnCount(ctx, key)
			if err != nil {
				return nil, metadataUnavailable(statsErr, err)
			}
			count = n
		}
		meta.Columns = append(meta.Columns, types.ColumnMeta{
			Key:   key,
			Label: key.DefaultLabel(),
			Count: count,
		})
	}
	return meta, nil
}

// ColumnCount returns the number of issues in one column.
func (b *Board) ColumnCount(ctx context.Context, key types.ColumnKey) (int, error) {
	if err := validateColumn(key); err != nil {
		return 0, err
	}

	stats, statsErr := b.Statistics(ctx)
	if statsErr == nil {
		return countFromStats(stats, key), nil
	}
	n, err := b.fallbackColumnCount(ctx, key)
	if err != nil {
		return 0, metadataUnavailable(statsErr, err)
	}
	return n, nil
}

// validateColumn checks a column key for shape and loadability. A
// custom column key names a backend status; anything else cannot be
// turned into a list invocation.
func validateColumn(key types.ColumnKey) error {
	if err := validation.ColumnKey(key); err != nil {
		return err
	}
	if !key.IsStandard() {
		if err := validation.Status(types.Status(key)); err != nil {
			return err
		}
	}
	return nil
}

// countFromStats maps a column key onto the stats payload. Ready and
// blocked are predicate columns with their own fields; everything else
// counts by status.
func countFromStats(stats *types.Statistics, key types.ColumnKey) int {
	switch key {
	case types.ColumnReady:
		return stats.ReadyIssues
	case types.ColumnBlocked:
		return stats.BlockedIssues
	case types.ColumnInProgress:
		return stats.InProgressIssues
	case types.ColumnClosed:
		return stats.ClosedIssues
	}
	switch types.Status(key) {
	case types.StatusOpen:
		return stats.OpenIssues
	case types.StatusDeferred:
		return stats.DeferredIssues
	case types.StatusTombstone:
		return stats.TombstoneIssues
	case types.StatusPinned:
		return stats.PinnedIssues
	}
	return -1
}

// fallbackColumnCount counts one column without the stats call: a
// count subcommand for status columns, a bounded enumeration for the
// predicate columns. Results share the board TTL so a burst of
// metadata requests against an old backend still costs one pass.
func (b *Board) fallbackColumnCount(ctx context.Context, key types.ColumnKey) (int, error) {
	cacheKey := cache.MakeKey("count", string(key))
	if v, ok := b.cache.Get(cacheKey); ok {
		if n, ok := v.(int); ok {
			return n, nil
		}
	}

	ticket := b.cache.Begin(cacheKey)
	var n int
	err := retryBackend(ctx, func() error {
		c, err := b.countDirect(ctx, key)
		if err != nil {
			return err
		}
		n = c
		return nil
	})
	if err != nil {
		return 0, err
	}
	b.cache.SetLatest(cacheKey, ticket, n)
	return n, nil
}

func (b *Board) countDirect(ctx context.Context, key types.ColumnKey) (int, error) {
	release, err := b.acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer release()

	switch key {
	case types.ColumnReady:
		rows, err := b.client.Ready(ctx, backend.ReadyRequest{Limit: fallbackReadyLimit})
		if err != nil {
			return 0, err
		}
		return len(rows), nil
	case types.ColumnBlocked:
		rows, err := b.client.Blocked(ctx)
		if err != nil {
			return 0, err
		}
		return len(rows), nil
	}
	return b.client.Count(ctx, types.Status(key))
}

func metadataUnavailable(statsErr, fallbackErr error) error {
	return &backend.Error{
		Kind:   backend.KindMetadataUnavailable,
		Op:     "stats",
		Detail: "column counts unavailable: " + statsErr.Error(),
		Err:    fallbackErr,
	}
}
