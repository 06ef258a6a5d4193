package backend

import (
	"strconv"

	"github.com/davidcforbes/beads-kanban/internal/types"
)

// Typed argument sets for the list and mutation calls. Each knows how
// to render itself as an argv vector for the bd CLI. Pointer fields on
// UpdateRequest distinguish "leave unchanged" (nil) from "set to this
// value" (non-nil), including setting to empty where the backend treats
// empty as clear. Free text always travels as a flag value in its own
// argv element, never through a shell.

// ListRequest selects issues, typically for one board column. The
// backend has no offset flag, so callers that paginate over-fetch and
// slice locally; Limit is the raw row cap handed to bd, not a page
// size. Limit 0 keeps the backend default (50), -1 removes the cap.
type ListRequest struct {
	Status    types.Status
	IssueType types.IssueType
	Assignee  string
	Labels    []string // ANDed; use one element per label
	Limit     int
}

func (r ListRequest) args() []string {
	args := []string{"list"}
	if r.Status != "" {
		args = append(args, "--status", string(r.Status))
	}
	if r.IssueType != "" {
		args = append(args, "--type", string(r.IssueType))
	}
	if r.Assignee != "" {
		args = append(args, "--assignee", r.Assignee)
	}
	for _, l := range r.Labels {
		args = append(args, "--label", l)
	}
	switch {
	case r.Limit > 0:
		args = append(args, "--limit", strconv.Itoa(r.Limit))
	case r.Limit < 0:
		args = append(args, "--limit", "0")
	}
	return append(args, "--json")
}

// ReadyRequest selects unblocked open issues. bd ready caps output at
// 10 rows unless told otherwise, so callers should always set Limit.
type ReadyRequest struct {
	Assignee string
	Labels   []string
	Limit    int
}

func (r ReadyRequest) args() []string {
	args := []string{"ready"}
	if r.Assignee != "" {
		args = append(args, "--assignee", r.Assignee)
	}
	for _, l := range r.Labels {
		args = append(args, "--label", l)
	}
	switch {
	case r.Limit > 0:
		args = append(args, "--limit", strconv.Itoa(r.Limit))
	case r.Limit < 0:
		args = append(args, "--limit", "0")
	}
	return append(args, "--json")
}

// CreateRequest carries the fields bd create accepts. Title is the
// only required field; zero values are omitted from the argv so the
// backend applies its own defaults (type task, priority 2).
type CreateRequest struct {
	Title              string
	Description        string
	Design             string
	AcceptanceCriteria string
	Notes              string
	IssueType          types.IssueType
	Priority           *int
	Assignee           string
	ExternalRef        string
	EstimatedMinutes   *int
	Labels             []string
	Parent             string
}

func (r CreateRequest) args() []string {
	// Flag form rather than the positional title: a title is free text
	// and must never be in flag position.
	args := []string{"create", "--title", r.Title}
	if r.Description != "" {
		args = append(args, "--description", r.Description)
	}
	if r.Design != "" {
		args = append(args, "--design", r.Design)
	}
	if r.AcceptanceCriteria != "" {
		args = append(args, "--acceptance", r.AcceptanceCriteria)
	}
	if r.Notes != "" {
		args = append(args, "--notes", r.Notes)
	}
	if r.IssueType != "" {
		args = append(args, "--type", string(r.IssueType))
	}
	if r.Priority != nil {
		args = append(args, "--priority", strconv.Itoa(*r.Priority))
	}
	if r.Assignee != "" {
		args = append(args, "--assignee", r.Assignee)
	}
	if r.ExternalRef != "" {
		args = append(args, "--external-ref", r.ExternalRef)
	}
	if r.EstimatedMinutes != nil {
		args = append(args, "--estimate", strconv.Itoa(*r.EstimatedMinutes))
	}
	for _, l := range r.Labels {
		args = append(args, "--labels", l)
	}
	if r.Parent != "" {
		args = append(args, "--parent", r.Parent)
	}
	return append(args, "--json")
}

// UpdateRequest mutates one issue. Nil pointers leave the field alone.
// Parent, DueAt and DeferUntil pointing at an empty string clear the
// field; bd accepts natural-language dates ("+1d", "tomorrow",
// "2025-01-15") for the scheduling fields and parses them itself.
type UpdateRequest struct {
	ID                 string
	Title              *string
	Description        *string
	Design             *string
	AcceptanceCriteria *string
	Notes              *string
	Status             *types.Status
	Priority           *int
	IssueType          *types.IssueType
	Assignee           *string
	ExternalRef        *string
	EstimatedMinutes   *int
	Parent             *string
	DueAt              *string
	DeferUntil         *string
	AddLabels          []string
	RemoveLabels       []string
	SetLabels          []string
}

// IsZero reports whether the request would change nothing.
func (r UpdateRequest) IsZero() bool {
	return r.Title == nil && r.Description == nil && r.Design == nil &&
		r.AcceptanceCriteria == nil && r.Notes == nil && r.Status == nil &&
		r.Priority == nil && r.IssueType == nil && r.Assignee == nil &&
		r.ExternalRef == nil && r.EstimatedMinutes == nil && r.Parent == nil &&
		r.DueAt == nil && r.DeferUntil == nil &&
		len(r.AddLabels) == 0 && len(r.RemoveLabels) == 0 && len(r.SetLabels) == 0
}

func (r UpdateRequest) args() []string {
	args := []string{"update", r.ID}
	if r.Title != nil {
		args = append(args, "--title", *r.Title)
	}
	if r.Description != nil {
		args = append(args, "--description", *r.Description)
	}
	if r.Design != nil {
		args = append(args, "--design", *r.Design)
	}
	if r.AcceptanceCriteria != nil {
		args = append(args, "--acceptance", *r.AcceptanceCriteria)
	}
	if r.Notes != nil {
		args = append(args, "--notes", *r.Notes)
	}
	if r.Status != nil {
		args = append(args, "--status", string(*r.Status))
	}
	if r.Priority != nil {
		args = append(args, "--priority", strconv.Itoa(*r.Priority))
	}
	if r.IssueType != nil {
		args = append(args, "--type", string(*r.IssueType))
	}
	if r.Assignee != nil {
		args = append(args, "--assignee", *r.Assignee)
	}
	if r.ExternalRef != nil {
		args = append(args, "--external-ref", *r.ExternalRef)
	}
	if r.EstimatedMinutes != nil {
		args = append(args, "--estimate", strconv.Itoa(*r.EstimatedMinutes))
	}
	if r.Parent != nil {
		args = append(args, "--parent", *r.Parent)
	}
	if r.DueAt != nil {
		args = append(args, "--due", *r.DueAt)
	}
	if r.DeferUntil != nil {
		args = append(args, "--defer", *r.DeferUntil)
	}
	for _, l := range r.AddLabels {
		args = append(args, "--add-label", l)
	}
	for _, l := range r.RemoveLabels {
		args = append(args, "--remove-label", l)
	}
	for _, l := range r.SetLabels {
		args = append(args, "--set-labels", l)
	}
	return append(args, "--json")
}
