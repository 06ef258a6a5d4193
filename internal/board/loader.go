package board

import (
	"context"
	"fmt"
	"strconv"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/cache"
	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/validation"
)

// LoadColumnPage returns one bounded slice of a column. Offset counts
// rows to skip; limit 0 means the configured page size. Pages are
// independent: requesting offset 100 before offset 0 works, and a
// failure loading one column never touches another.
//
// Identical concurrent requests coalesce onto one backend call, and a
// fetch that was overtaken by an invalidation is returned to its
// caller but never stored.
func (b *Board) LoadColumnPage(ctx context.Context, key types.ColumnKey, offset, limit int) (*types.ColumnPage, error) {
	if err := validateColumn(key); err != nil {
		return nil, err
	}
	if err := validation.Offset(offset); err != nil {
		return nil, err
	}
	if err := validation.Limit(limit); err != nil {
		return nil, err
	}
	if limit == 0 {
		limit = b.opts.PageSize
	}

	cacheKey := cache.MakeKey("column", string(key), strconv.Itoa(offset), strconv.Itoa(limit))
	if v, ok := b.cache.Get(cacheKey); ok {
		if page, ok := v.(*types.ColumnPage); ok {
			return page, nil
		}
	}

	v, _, err := b.dedup.Execute(cacheKey, func() (any, error) {
		ticket := b.cache.Begin(cacheKey)
		page, err := b.fetchColumnPage(ctx, key, offset, limit)
		if err != nil {
			return nil, err
		}
		b.cache.SetLatest(cacheKey, ticket, page)
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.ColumnPage), nil
}

// fetchColumnPage runs the backend query for one page. The backend
// caps rows but has no offset flag, so every strategy over-fetches
// offset+limit+1 rows and slices locally; the extra row is the HasMore
// signal.
func (b *Board) fetchColumnPage(ctx context.Context, key types.ColumnKey, offset, limit int) (*types.ColumnPage, error) {
	release, err := b.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	want := offset + limit + 1

	var page *types.ColumnPage
	err = retryConnectionLost(ctx, func() error {
		var ferr error
		switch key {
		case types.ColumnReady:
			page, ferr = b.fetchReady(ctx, offset, limit, want)
		case types.ColumnBlocked:
			page, ferr = b.fetchBlocked(ctx, offset, limit)
		default:
			page, ferr = b.fetchByStatus(ctx, types.Status(key), offset, limit, want)
		}
		return ferr
	})
	if err != nil {
		return nil, loadFailed(key, offset, err)
	}
	return page, nil
}

func (b *Board) fetchReady(ctx context.Context, offset, limit, want int) (*types.ColumnPage, error) {
	rows, err := b.client.Ready(ctx, backend.ReadyRequest{Limit: want})
	if err != nil {
		return nil, err
	}
	return slicePage(rows, offset, limit), nil
}

func (b *Board) fetchByStatus(ctx context.Context, status types.Status, offset, limit, want int) (*types.ColumnPage, error) {
	rows, err := b.client.List(ctx, backend.ListRequest{Status: status, Limit: want})
	if err != nil {
		return nil, err
	}
	issues := make([]*types.Issue, 0, len(rows))
	for _, r := range rows {
		issues = append(issues, r.Issue)
	}
	return slicePage(issues, offset, limit), nil
}

// fetchBlocked pages the blocked column. The blocked subcommand takes
// no flags at all, so one call returns the full blocked set; BlockedBy
// carries the open dependencies holding each page item.
func (b *Board) fetchBlocked(ctx context.Context, offset, limit int) (*types.ColumnPage, error) {
	rows, err := b.client.Blocked(ctx)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > offset+limit
	if offset > len(rows) {
		offset = len(rows)
	}
	end := offset + limit
	if end > len(rows) {
		end = len(rows)
	}
	pageRows := rows[offset:end]

	page := &types.ColumnPage{
		Items:   make([]*types.Issue, 0, len(pageRows)),
		HasMore: hasMore,
	}
	blockedBy := make(map[string][]string, len(pageRows))
	for _, r := range pageRows {
		page.Items = append(page.Items, &r.Issue)
		if len(r.BlockedBy) > 0 {
			blockedBy[r.ID] = r.BlockedBy
		}
	}
	if len(blockedBy) > 0 {
		page.BlockedBy = blockedBy
	}
	return page, nil
}

// slicePage cuts an over-fetched row set down to the requested page.
func slicePage(items []*types.Issue, offset, limit int) *types.ColumnPage {
	hasMore := len(items) > offset+limit
	if offset > len(items) {
		offset = len(items)
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	page := make([]*types.Issue, end-offset)
	copy(page, items[offset:end])
	return &types.ColumnPage{Items: page, HasMore: hasMore}
}

// loadFailed scopes a fetch failure to its column so the rest of the
// board keeps rendering. The cause stays wrapped for kind checks.
func loadFailed(key types.ColumnKey, offset int, err error) error {
	return &backend.Error{
		Kind:   backend.KindLoadFailed,
		Detail: fmt.Sprintf("column %s page at offset %d", key, offset),
		Err:    err,
	}
}
