package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/sanitize"
)

// errorResponse is the JSON error shape: a user-safe message plus a
// category tag for client-side mapping.
type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
}

// WriteError sanitizes err and writes it with the status its kind and
// category map to.
func WriteError(w http.ResponseWriter, err error) {
	msg, category := sanitize.Message(err)
	WriteJSONError(w, statusFor(backend.KindOf(err), category), msg, string(category))
}

// WriteJSONError writes a structured error response with the given
// status.
func WriteJSONError(w http.ResponseWriter, status int, message, category string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if category == "" {
		category = string(sanitize.CategoryGeneric)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error:    strings.TrimSpace(message),
		Category: category,
	})
}

// statusFor maps an adapter failure to an HTTP status. The not_found
// category wins over the kind: a backend "issue not found" exit is a
// 404 to an HTTP client, not a gateway failure.
func statusFor(kind backend.Kind, category sanitize.Category) int {
	if category == sanitize.CategoryNotFound {
		return http.StatusNotFound
	}
	switch kind {
	case backend.KindInvalidIdentifier, backend.KindUnsafeArgument:
		return http.StatusBadRequest
	case backend.KindReadOnly:
		return http.StatusForbidden
	case backend.KindTimeout:
		return http.StatusGatewayTimeout
	case backend.KindConnectionLost, backend.KindMetadataUnavailable:
		return http.StatusServiceUnavailable
	case backend.KindBackend, backend.KindMalformedResponse, backend.KindLoadFailed:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
