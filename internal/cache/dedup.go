package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Deduplicator coalesces identical in-flight fetches. When several
// board consumers request the same column page or card detail within a
// short window, only the first spawns a bd subprocess; the rest wait
// for its result.
//
// Only read fetches go through the deduplicator. Mutations take the
// pipeline path and never coalesce. A fetch is in flight only until
// its fn returns; callers arriving after that run fresh. Re-serving
// completed results is the cache's job, and keeping it there is what
// stops a superseded result from outliving an invalidation.
type Deduplicator struct {
	mu       sync.Mutex
	inflight map[string]*inflightFetch
	timeout  time.Duration
}

// inflightFetch is one running fetch. done is closed after value and
// err are set; waiters read them only after done.
type inflightFetch struct {
	done      chan struct{}
	value     any
	err       error
	waiting   int // callers on this fetch, executor included
	startTime time.Time
}

// NewDeduplicator creates a deduplicator. timeout bounds how long a
// waiter blocks on someone else's fetch before falling back to direct
// execution.
func NewDeduplicator(timeout time.Duration) *Deduplicator {
	return &Deduplicator{
		inflight: make(map[string]*inflightFetch),
		timeout:  timeout,
	}
}

// flightKey hashes a cache key for the inflight map.
func flightKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return hex.EncodeToString(h[:])[:16] // 16 chars is enough for collision avoidance
}

// Execute runs fn with deduplication. If an identical fetch is already
// in flight, Execute waits for its result instead of running fn.
// Errors are shared too: an identical concurrent query that failed
// once fails for everyone waiting on it. The returned bool reports
// whether the result came from another caller's fetch.
func (d *Deduplicator) Execute(key string, fn func() (any, error)) (any, bool, error) {
	if d == nil {
		v, err := fn()
		return v, false, err
	}

	fk := flightKey(key)

	d.mu.Lock()
	if existing, ok := d.inflight[fk]; ok {
		existing.waiting++
		d.mu.Unlock()

		select {
		case <-existing.done:
			return existing.value, true, existing.err

		case <-time.After(d.timeout):
			// The fetch is taking too long to share; run our own.
			d.mu.Lock()
			if d.inflight[fk] == existing {
				existing.waiting--
			}
			d.mu.Unlock()
			v, err := fn()
			return v, false, err
		}
	}

	// No fetch in flight, we become the executor.
	flight := &inflightFetch{
		done:      make(chan struct{}),
		waiting:   1,
		startTime: time.Now(),
	}
	d.inflight[fk] = flight
	d.mu.Unlock()

	flight.value, flight.err = fn()

	d.mu.Lock()
	if d.inflight[fk] == flight {
		delete(d.inflight, fk)
	}
	d.mu.Unlock()
	close(flight.done)

	return flight.value, false, flight.err
}

// DedupStats describes the deduplicator's current load.
type DedupStats struct {
	InflightFetches int // unique fetches currently running
	TotalWaiters    int // callers waiting on an in-flight fetch
}

// Stats returns a snapshot of in-flight fetch counts.
func (d *Deduplicator) Stats() DedupStats {
	if d == nil {
		return DedupStats{}
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	stats := DedupStats{
		InflightFetches: len(d.inflight),
	}
	for _, q := range d.inflight {
		stats.TotalWaiters += q.waiting
	}
	return stats
}
