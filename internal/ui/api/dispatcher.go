package api

import (
	"context"
	"sync"
	"sync/atomic"
)

// Dispatcher fans change events out to active SSE subscribers in
// process. Publishing never blocks: a slow subscriber drops events and
// catches up on the next change, which is safe because every event
// means "refetch", not "apply this delta".
type Dispatcher struct {
	nextID      uint64
	mu          sync.RWMutex
	subscribers map[uint64]chan ChangeEvent
	buffer      int
}

// NewDispatcher constructs a dispatcher with the given per-subscriber
// buffer.
func NewDispatcher(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 16
	}
	return &Dispatcher{
		subscribers: make(map[uint64]chan ChangeEvent),
		buffer:      buffer,
	}
}

// Subscribe registers a listener. The channel closes when ctx ends.
func (d *Dispatcher) Subscribe(ctx context.Context) (<-chan ChangeEvent, error) {
	ch := make(chan ChangeEvent, d.buffer)
	id := atomic.AddUint64(&d.nextID, 1)

	d.mu.Lock()
	d.subscribers[id] = ch
	d.mu.Unlock()

	go func() {
		<-ctx.Done()
		d.mu.Lock()
		delete(d.subscribers, id)
		close(ch)
		d.mu.Unlock()
	}()

	return ch, nil
}

// Publish broadcasts the event to all active subscribers without
// blocking.
func (d *Dispatcher) Publish(evt ChangeEvent) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, ch := range d.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}
