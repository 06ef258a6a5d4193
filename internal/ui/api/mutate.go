package api

import (
	"encoding/json"
	"net/http"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/sanitize"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

// createPayload mirrors the fields bd create accepts. The board
// validates content; this layer only decodes.
type createPayload struct {
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	Design             string   `json:"design"`
	AcceptanceCriteria string   `json:"acceptance_criteria"`
	Notes              string   `json:"notes"`
	Type               string   `json:"type"`
	Priority           *int     `json:"priority"`
	Assignee           string   `json:"assignee"`
	ExternalRef        string   `json:"external_ref"`
	EstimatedMinutes   *int     `json:"estimate"`
	Labels             []string `json:"labels"`
	Parent             string   `json:"parent"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var p createPayload
	if !decodeBody(w, r, &p) {
		return
	}

	issue, err := h.board.CreateCard(r.Context(), backend.CreateRequest{
		Title:              p.Title,
		Description:        p.Description,
		Design:             p.Design,
		AcceptanceCriteria: p.AcceptanceCriteria,
		Notes:              p.Notes,
		IssueType:          types.IssueType(p.Type),
		Priority:           p.Priority,
		Assignee:           p.Assignee,
		ExternalRef:        p.ExternalRef,
		EstimatedMinutes:   p.EstimatedMinutes,
		Labels:             p.Labels,
		Parent:             p.Parent,
	})
	if err != nil {
		WriteError(w, err)
		return
	}
	h.publish(ScopeBoard, "")
	writeJSON(w, http.StatusCreated, issue)
}

// updatePayload mirrors bd update. Absent fields stay nil and leave the
// issue untouched; explicit empty strings clear clearable fields.
type updatePayload struct {
	Title              *string  `json:"title"`
	Description        *string  `json:"description"`
	Design             *string  `json:"design"`
	AcceptanceCriteria *string  `json:"acceptance_criteria"`
	Notes              *string  `json:"notes"`
	Status             *string  `json:"status"`
	Priority           *int     `json:"priority"`
	Type               *string  `json:"type"`
	Assignee           *string  `json:"assignee"`
	ExternalRef        *string  `json:"external_ref"`
	EstimatedMinutes   *int     `json:"estimate"`
	Parent             *string  `json:"parent"`
	Due                *string  `json:"due"`
	Defer              *string  `json:"defer"`
	AddLabels          []string `json:"add_labels"`
	RemoveLabels       []string `json:"remove_labels"`
	SetLabels          []string `json:"set_labels"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var p updatePayload
	if !decodeBody(w, r, &p) {
		return
	}

	req := backend.UpdateRequest{
		ID:                 r.PathValue("id"),
		Title:              p.Title,
		Description:        p.Description,
		Design:             p.Design,
		AcceptanceCriteria: p.AcceptanceCriteria,
		Notes:              p.Notes,
		Priority:           p.Priority,
		Assignee:           p.Assignee,
		ExternalRef:        p.ExternalRef,
		EstimatedMinutes:   p.EstimatedMinutes,
		Parent:             p.Parent,
		DueAt:              p.Due,
		DeferUntil:         p.Defer,
		AddLabels:          p.AddLabels,
		RemoveLabels:       p.RemoveLabels,
		SetLabels:          p.SetLabels,
	}
	if p.Status != nil {
		s := types.Status(*p.Status)
		req.Status = &s
	}
	if p.Type != nil {
		t := types.IssueType(*p.Type)
		req.IssueType = &t
	}

	issue, err := h.board.UpdateFields(r.Context(), req)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.publish(ScopeBoard, "")
	if issue == nil {
		// Older backends print nothing on update; the change applied.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

type commentPayload struct {
	Text string `json:"text"`
}

func (h *Handler) handleComment(w http.ResponseWriter, r *http.Request) {
	var p commentPayload
	if !decodeBody(w, r, &p) {
		return
	}

	id := r.PathValue("id")
	comment, err := h.board.AddComment(r.Context(), id, p.Text)
	if err != nil {
		WriteError(w, err)
		return
	}
	h.publish(ScopeIssue, id)
	writeJSON(w, http.StatusCreated, comment)
}

// decodeBody parses a JSON request body. Writes a 400 and returns
// false when the body is not valid JSON for dst.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		WriteJSONError(w, http.StatusBadRequest,
			"request body is not valid JSON: "+err.Error(), string(sanitize.CategoryValidation))
		return false
	}
	return true
}
