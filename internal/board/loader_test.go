package board

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

func pageIDs(page *types.ColumnPage) []string {
	ids := make([]string, 0, len(page.Items))
	for _, it := range page.Items {
		ids = append(ids, it.ID)
	}
	return ids
}

func TestLoadColumnPageCachesWithinTTL(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	fake.Stub("ready", issueRows("open", 2))
	ctx := context.Background()

	first, err := b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"bd-1", "bd-2"}, pageIDs(first))
	assert.False(t, first.HasMore)

	second, err := b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, fake.CallCount(), "second load within the TTL must not spawn")
}

func TestLoadColumnPagePagination(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	fake.Stub("list", issueRows("in_progress", 5))
	ctx := context.Background()

	// Pages are independent: a middle page can load before the first.
	tests := []struct {
		name     string
		offset   int
		limit    int
		wantIDs  []string
		wantMore bool
	}{
		{name: "middle page first", offset: 2, limit: 2, wantIDs: []string{"bd-3", "bd-4"}, wantMore: true},
		{name: "first page", offset: 0, limit: 2, wantIDs: []string{"bd-1", "bd-2"}, wantMore: true},
		{name: "last partial page", offset: 4, limit: 2, wantIDs: []string{"bd-5"}, wantMore: false},
		{name: "offset past the end", offset: 10, limit: 2, wantIDs: []string{}, wantMore: false},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := b.LoadColumnPage(ctx, types.ColumnInProgress, tt.offset, tt.limit)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantIDs, pageIDs(page))
			assert.Equal(t, tt.wantMore, page.HasMore)

			// Over-fetch by one row past the page; the extra row is the
			// HasMore signal since bd list has no offset flag.
			want := []string{"list", "--status", "in_progress", "--limit", strconv.Itoa(tt.offset + tt.limit + 1), "--json"}
			assert.Equal(t, want, fake.Calls()[i].Args)
		})
	}
}

func TestLoadColumnPageBlocked(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	fake.Stub("blocked", blockedFixture)
	ctx := context.Background()

	page, err := b.LoadColumnPage(ctx, types.ColumnBlocked, 0, 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"bd-11", "bd-12"}, pageIDs(page))
	assert.True(t, page.HasMore)
	assert.Equal(t, map[string][]string{
		"bd-11": {"bd-3", "bd-4"},
		"bd-12": {"bd-3"},
	}, page.BlockedBy)
	assert.Equal(t, []string{"blocked", "--json"}, fake.Calls()[0].Args)

	// The blocked subcommand takes no flags; later pages slice the same
	// full result locally.
	page, err = b.LoadColumnPage(ctx, types.ColumnBlocked, 2, 2)
	assert.NoError(t, err)
	assert.Equal(t, []string{"bd-13"}, pageIDs(page))
	assert.False(t, page.HasMore)
	assert.Equal(t, map[string][]string{"bd-13": {"bd-9"}}, page.BlockedBy)
}

func TestLoadColumnPageCustomColumn(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	fake.Stub("list", issueRows("deferred", 2))
	ctx := context.Background()

	// Limit 0 means the configured page size; a custom column key maps
	// onto a status filter.
	page, err := b.LoadColumnPage(ctx, types.ColumnKey("deferred"), 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, []string{"bd-1", "bd-2"}, pageIDs(page))
	assert.Equal(t, []string{"list", "--status", "deferred", "--limit", "51", "--json"}, fake.Calls()[0].Args)
}

func TestLoadColumnPageRejectsBadInput(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	ctx := context.Background()

	tests := []struct {
		name   string
		key    types.ColumnKey
		offset int
		limit  int
	}{
		{name: "empty column", key: "", offset: 0, limit: 10},
		{name: "column is not a status", key: "urgent", offset: 0, limit: 10},
		{name: "metacharacters in column", key: "ready;rm -rf /", offset: 0, limit: 10},
		{name: "flag-shaped column", key: "--status", offset: 0, limit: 10},
		{name: "negative offset", key: types.ColumnReady, offset: -1, limit: 10},
		{name: "negative limit", key: types.ColumnReady, offset: 0, limit: -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.LoadColumnPage(ctx, tt.key, tt.offset, tt.limit)
			assert.Error(t, err)
			var bdErr *backend.Error
			assert.ErrorAs(t, err, &bdErr)
			assert.True(t, bdErr.IsValidation())
		})
	}
	assert.Equal(t, 0, fake.CallCount(), "rejected input must never spawn")
}

func TestLoadColumnPageFailureScoped(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	fake.StubExit("ready", 1, "query failed: database is locked")
	fake.Stub("list", issueRows("in_progress", 2))
	ctx := context.Background()

	_, err := b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.Error(t, err)
	assert.Equal(t, backend.KindLoadFailed, backend.KindOf(err))
	assert.Contains(t, err.Error(), "column ready")

	// One failing column leaves the others loadable.
	page, err := b.LoadColumnPage(ctx, types.ColumnInProgress, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, page.Items, 2)

	// Failures are not cached: the next load hits the backend again and
	// succeeds once the backend recovers.
	fake.Stub("ready", issueRows("open", 2))
	_, err = b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.Error(t, err)
	assert.Equal(t, 2, fake.CallsFor("ready"))

	page, err = b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, fake.CallsFor("ready"))
}

func TestLoadColumnPageRetriesConnectionLost(t *testing.T) {
	shrinkBackoff(t)
	b, fake := newTestBoard(t, nil)
	fake.StubError("ready", &backend.Error{Kind: backend.KindConnectionLost, Op: "ready", Detail: "daemon not running"})
	fake.Stub("ready", issueRows("open", 1))
	ctx := context.Background()

	page, err := b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"bd-1"}, pageIDs(page))
	assert.Equal(t, 2, fake.CallsFor("ready"), "connection loss retries, then succeeds")
}

func TestLoadColumnPageStaleFetchDiscarded(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	rows := issueRows("open", 3)
	fetching := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	fake.Handle = func(ctx context.Context, req backend.Request) (backend.Result, error) {
		if calls.Add(1) == 1 {
			close(fetching)
			<-release
		}
		return backend.Result{Stdout: []byte(rows)}, nil
	}
	ctx := context.Background()

	type result struct {
		page *types.ColumnPage
		err  error
	}
	done := make(chan result, 1)
	go func() {
		page, err := b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
		done <- result{page, err}
	}()

	// Invalidate while the fetch is in flight: the caller still gets its
	// rows, but a snapshot from before the invalidation must not stick.
	<-fetching
	b.Invalidate()
	close(release)

	res := <-done
	assert.NoError(t, res.err)
	assert.Len(t, res.page.Items, 3)

	_, err := b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load(), "superseded fetch must not be served from cache")
}

func TestLoadColumnPageCoalescesConcurrent(t *testing.T) {
	b, fake := newTestBoard(t, nil)
	rows := issueRows("open", 3)
	release := make(chan struct{})
	fake.Handle = func(ctx context.Context, req backend.Request) (backend.Result, error) {
		<-release
		return backend.Result{Stdout: []byte(rows)}, nil
	}
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	pages := make([]*types.ColumnPage, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			pages[i], errs[i] = b.LoadColumnPage(ctx, types.ColumnReady, 0, 10)
		}(i)
	}

	// Hold the fetch until every caller is parked on it, so the count
	// below proves coalescing rather than lucky timing.
	deadline := time.Now().Add(2 * time.Second)
	for b.dedup.Stats().TotalWaiters < callers {
		if time.Now().After(deadline) {
			t.Fatalf("callers never gathered: %+v", b.dedup.Stats())
		}
		time.Sleep(time.Millisecond)
	}
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.NoError(t, errs[i])
		assert.Len(t, pages[i].Items, 3)
	}
	assert.Equal(t, 1, fake.CallCount(), "identical concurrent loads share one subprocess")
}
