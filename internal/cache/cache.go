// Package cache provides the short-lived snapshot cache that sits between
// the board loader and the bd backend. Column pages, card details, and
// board metadata are stored under structured string keys for a small TTL
// window so repeated paints of the same board state cost zero subprocess
// invocations.
//
// Keys are readable paths built by MakeKey ("column/ready/0/50",
// "details/bd-42") rather than hashes, so mutations can invalidate by
// prefix: closing an issue clears every column page without touching
// cached card details for unrelated issues.
//
// Only successful fetches are stored. Callers never Set an error result,
// so a transient backend failure is retried on the next request instead
// of being served back for the rest of the TTL window.
package cache

import (
	"strings"
	"sync"
	"time"
)

// DefaultMaxEntries bounds the cache when the caller passes maxSize <= 0.
const DefaultMaxEntries = 256

// entry is a single cached snapshot.
type entry struct {
	value      any
	capturedAt time.Time
}

// Cache is a TTL-bounded snapshot store with per-key staleness tickets.
//
// The ticket protocol (Begin / SetLatest) guards against slow fetches
// writing stale data back over fresher results: a fetch takes a ticket
// before it starts, and its result is only stored if no newer fetch or
// invalidation touched the key in the meantime.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	maxSize int
	enabled bool
	entries map[string]entry

	// tickets is append-only: one monotonic counter per key ever fetched.
	// Counters are never reset, otherwise a fetch that straddled an
	// invalidation could be mistaken for current.
	tickets map[string]uint64

	hits   int64
	misses int64
}

// New creates a cache with the given TTL and entry bound.
// A ttl <= 0 disables storage entirely; Get always misses and Set is a
// no-op, but staleness tickets keep working so callers can still detect
// superseded fetches.
func New(ttl time.Duration, maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = DefaultMaxEntries
	}
	return &Cache{
		ttl:     ttl,
		maxSize: maxSize,
		enabled: ttl > 0,
		entries: make(map[string]entry),
		tickets: make(map[string]uint64),
	}
}

// MakeKey builds a structured cache key from an operation name and its
// distinguishing parts. Parts are validated tokens (column keys, issue
// IDs, page offsets), so joining with "/" cannot collide.
func MakeKey(op string, parts ...string) string {
	if len(parts) == 0 {
		return op
	}
	return op + "/" + strings.Join(parts, "/")
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache) Get(key string) (any, bool) {
	if c == nil || !c.enabled {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	if time.Since(e.capturedAt) > c.ttl {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}
	c.hits++
	return e.value, true
}

// Set stores a value unconditionally, superseding any in-flight fetch
// for the same key. Use SetLatest when the value came from a fetch that
// may have been overtaken.
func (c *Cache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tickets[key]++
	c.store(key, value)
}

// Begin registers a fetch that is about to start and returns its ticket.
// Pass the ticket to SetLatest when the fetch completes.
func (c *Cache) Begin(key string) uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.tickets[key]++
	return c.tickets[key]
}

// SetLatest stores value only if ticket is still the newest fetch for
// key. It reports whether the fetch was current; a false return means a
// newer fetch or an invalidation superseded this one and the caller
// should discard its result.
func (c *Cache) SetLatest(key string, ticket uint64, value any) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tickets[key] != ticket {
		return false
	}
	c.store(key, value)
	return true
}

// store writes an entry, evicting the oldest when at capacity.
// Callers hold c.mu.
func (c *Cache) store(key string, value any) {
	if !c.enabled {
		return
	}
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxSize {
		c.evictOldest()
	}
	c.entries[key] = entry{value: value, capturedAt: time.Now()}
}

// evictOldest removes the entry with the oldest capture time.
// Callers hold c.mu.
func (c *Cache) evictOldest() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.capturedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.capturedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}

// Invalidate clears every entry and supersedes every in-flight fetch.
// Called after mutations whose effects can reach arbitrary columns
// (status moves, dependency edits, creates).
func (c *Cache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]entry)
	for k := range c.tickets {
		c.tickets[k]++
	}
}

// InvalidateMatching clears entries whose key satisfies pred and
// supersedes in-flight fetches for those keys. Used for column-scoped
// invalidation after mutations that cannot move issues between columns
// (comments, label edits).
func (c *Cache) InvalidateMatching(pred func(key string) bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.entries {
		if pred(k) {
			delete(c.entries, k)
		}
	}
	// Tickets for keys not currently stored still need bumping: a fetch
	// may be in flight for a key that was never cached.
	for k := range c.tickets {
		if pred(k) {
			c.tickets[k]++
		}
	}
}

// InvalidatePrefix clears entries whose key starts with prefix.
func (c *Cache) InvalidatePrefix(prefix string) {
	c.InvalidateMatching(func(key string) bool {
		return strings.HasPrefix(key, prefix)
	})
}

// Stats holds cache hit counters for diagnostics.
type Stats struct {
	Hits    int64
	Misses  int64
	Entries int
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	if c == nil {
		return Stats{}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:    c.hits,
		Misses:  c.misses,
		Entries: len(c.entries),
	}
}

// Enabled reports whether the cache stores anything at all.
func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}
