package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Change event scopes. Board-scoped events mean "reload everything
// visible"; issue-scoped events name one card whose detail view
// changed.
const (
	ScopeBoard = "board"
	ScopeIssue = "issue"
)

// ChangeEvent tells stream subscribers that cached board state was
// invalidated, either by a mutation through this server or by the
// store changing on disk under the watch loop.
type ChangeEvent struct {
	Scope string    `json:"scope"`
	ID    string    `json:"id,omitempty"`
	At    time.Time `json:"at"`
}

// NewChangeEvent stamps a change event with the current time.
func NewChangeEvent(scope, id string) ChangeEvent {
	return ChangeEvent{Scope: scope, ID: id, At: time.Now().UTC()}
}

// EventSource provides a stream of change events.
type EventSource interface {
	Subscribe(ctx context.Context) (<-chan ChangeEvent, error)
}

// EventStreamOption configures the SSE handler.
type EventStreamOption func(*eventStreamConfig)

type eventStreamConfig struct {
	heartbeatInterval time.Duration
	now               func() time.Time
}

// WithHeartbeatInterval overrides the interval between heartbeat
// events. Zero disables the heartbeat.
func WithHeartbeatInterval(interval time.Duration) EventStreamOption {
	return func(cfg *eventStreamConfig) {
		cfg.heartbeatInterval = interval
	}
}

// WithNowFunc injects a custom clock, primarily for tests.
func WithNowFunc(now func() time.Time) EventStreamOption {
	return func(cfg *eventStreamConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// NewEventStreamHandler returns an HTTP handler that serves the change
// stream as Server-Sent Events.
func NewEventStreamHandler(source EventSource, opts ...EventStreamOption) http.Handler {
	cfg := eventStreamConfig{
		heartbeatInterval: 30 * time.Second,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if source == nil {
			WriteJSONError(w, http.StatusServiceUnavailable,
				"event stream unavailable", "connection")
			return
		}

		flusher, ok := w.(http.Flusher)
		if !ok {
			http.Error(w, "streaming unsupported", http.StatusInternalServerError)
			return
		}

		ctx := r.Context()
		events, err := source.Subscribe(ctx)
		if err != nil {
			WriteJSONError(w, http.StatusServiceUnavailable,
				fmt.Sprintf("subscribe failed: %v", err), "connection")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")

		var heartbeat <-chan time.Time
		if cfg.heartbeatInterval > 0 {
			ticker := time.NewTicker(cfg.heartbeatInterval)
			defer ticker.Stop()
			heartbeat = ticker.C
		}

		// Initial comment so clients can confirm the stream opened.
		fmt.Fprintf(w, ": stream online %s\n\n", cfg.now().UTC().Format(time.RFC3339))
		flusher.Flush()

		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				if err := writeSSEEvent(w, "change", evt); err != nil {
					return
				}
				flusher.Flush()
			case <-heartbeat:
				if err := writeSSEEvent(w, "heartbeat", map[string]string{
					"at": cfg.now().UTC().Format(time.RFC3339),
				}); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	})
}

func writeSSEEvent(w http.ResponseWriter, event string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return err
	}
	return nil
}
