// Package api exposes the board as a small JSON surface plus an SSE
// change stream, for `bdk serve`. Handlers translate between HTTP and
// the board's typed operations; every failure leaving this package has
// been sanitized.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/davidcforbes/beads-kanban/internal/board"
	"github.com/davidcforbes/beads-kanban/internal/sanitize"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

// Handler routes the board JSON API.
type Handler struct {
	board  *board.Board
	events *Dispatcher
}

// NewHandler builds the API handler. events may be nil, which disables
// the SSE endpoint.
func NewHandler(b *board.Board, events *Dispatcher) *Handler {
	return &Handler{board: b, events: events}
}

// Register attaches the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/board", h.handleBoard)
	mux.HandleFunc("GET /api/stats", h.handleStats)
	mux.HandleFunc("GET /api/columns/{key}", h.handleColumn)
	mux.HandleFunc("GET /api/issues/{id}", h.handleIssue)
	mux.HandleFunc("POST /api/issues", h.handleCreate)
	mux.HandleFunc("PATCH /api/issues/{id}", h.handleUpdate)
	mux.HandleFunc("POST /api/issues/{id}/comments", h.handleComment)
	if h.events != nil {
		mux.Handle("GET /api/events", NewEventStreamHandler(h.events))
	}
}

// publish notifies SSE subscribers after a successful mutation. The
// watch loop covers out-of-process changes; this covers our own.
func (h *Handler) publish(scope, id string) {
	if h.events != nil {
		h.events.Publish(NewChangeEvent(scope, id))
	}
}

func (h *Handler) handleBoard(w http.ResponseWriter, r *http.Request) {
	meta, err := h.board.Metadata(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meta)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.board.Statistics(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// columnResponse wraps a column page with the key it answers for, so
// clients polling several columns can route responses without keeping
// request state.
type columnResponse struct {
	Key types.ColumnKey `json:"key"`
	*types.ColumnPage
}

func (h *Handler) handleColumn(w http.ResponseWriter, r *http.Request) {
	key := types.ColumnKey(r.PathValue("key"))

	offset, ok := queryInt(w, r, "offset")
	if !ok {
		return
	}
	limit, ok := queryInt(w, r, "limit")
	if !ok {
		return
	}

	page, err := h.board.LoadColumnPage(r.Context(), key, offset, limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, columnResponse{Key: key, ColumnPage: page})
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	details, err := h.board.CardDetails(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

// queryInt parses an optional non-negative integer query parameter.
// Writes a 400 and returns ok=false when the value does not parse.
func queryInt(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		WriteJSONError(w, http.StatusBadRequest,
			name+" must be a non-negative integer", string(sanitize.CategoryValidation))
		return 0, false
	}
	return n, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
