// Package types defines the data structures exchanged with the bd backend
// and the board projections built on top of them.
package types

import (
	"fmt"
	"time"
)

// Issue represents a trackable work item as returned by the backend.
// The backend owns every field; the adapter never mutates an Issue in
// place, it only caches read projections.
type Issue struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	Design             string        `json:"design,omitempty"`
	AcceptanceCriteria string        `json:"acceptance_criteria,omitempty"`
	Notes              string        `json:"notes,omitempty"`
	Status             Status        `json:"status,omitempty"`
	Priority           int           `json:"priority"` // No omitempty: 0 is valid (P0/critical)
	IssueType          IssueType     `json:"issue_type,omitempty"`
	Assignee           string        `json:"assignee,omitempty"`
	EstimatedMinutes   *int          `json:"estimated_minutes,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
	ClosedAt           *time.Time    `json:"closed_at,omitempty"`
	CloseReason        string        `json:"close_reason,omitempty"`
	ExternalRef        *string       `json:"external_ref,omitempty"` // e.g., "gh-9", "jira-ABC"
	DueAt              *time.Time    `json:"due_at,omitempty"`
	DeferUntil         *time.Time    `json:"defer_until,omitempty"`
	Labels             []string      `json:"labels,omitempty"`
	Dependencies       []*Dependency `json:"dependencies,omitempty"`
	Comments           []*Comment    `json:"comments,omitempty"`
}

// MaxTitleLen and friends bound field sizes before a mutation is sent.
// The backend enforces the same limits; checking here avoids a wasted
// subprocess round-trip.
const (
	MaxTitleLen       = 500
	MaxTextLen        = 10000
	MaxAssigneeLen    = 100
	MaxExternalRefLen = 200
)

// Validate checks field values against the backend's documented limits.
func (i *Issue) Validate() error {
	if len(i.Title) == 0 {
		return fmt.Errorf("title is required")
	}
	if len(i.Title) > MaxTitleLen {
		return fmt.Errorf("title must be %d characters or less (got %d)", MaxTitleLen, len(i.Title))
	}
	if len(i.Description) > MaxTextLen {
		return fmt.Errorf("description must be %d characters or less (got %d)", MaxTextLen, len(i.Description))
	}
	if len(i.Design) > MaxTextLen {
		return fmt.Errorf("design must be %d characters or less (got %d)", MaxTextLen, len(i.Design))
	}
	if len(i.AcceptanceCriteria) > MaxTextLen {
		return fmt.Errorf("acceptance criteria must be %d characters or less (got %d)", MaxTextLen, len(i.AcceptanceCriteria))
	}
	if len(i.Notes) > MaxTextLen {
		return fmt.Errorf("notes must be %d characters or less (got %d)", MaxTextLen, len(i.Notes))
	}
	if len(i.Assignee) > MaxAssigneeLen {
		return fmt.Errorf("assignee must be %d characters or less (got %d)", MaxAssigneeLen, len(i.Assignee))
	}
	if i.ExternalRef != nil && len(*i.ExternalRef) > MaxExternalRefLen {
		return fmt.Errorf("external_ref must be %d characters or less (got %d)", MaxExternalRefLen, len(*i.ExternalRef))
	}
	if i.Priority < 0 || i.Priority > 4 {
		return fmt.Errorf("priority must be between 0 and 4 (got %d)", i.Priority)
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if !i.IssueType.IsValid() {
		return fmt.Errorf("invalid issue type: %s", i.IssueType)
	}
	if i.EstimatedMinutes != nil && *i.EstimatedMinutes < 0 {
		return fmt.Errorf("estimated_minutes cannot be negative")
	}
	return nil
}

// SetDefaults fills fields the backend may omit in compact JSON output:
//   - Status: defaults to StatusOpen if empty
//   - IssueType: defaults to TypeTask if empty
//
// Priority 0 is a valid value (P0), so an omitted priority cannot be
// distinguished from an explicit P0 and is left untouched.
func (i *Issue) SetDefaults() {
	if i.Status == "" {
		i.Status = StatusOpen
	}
	if i.IssueType == "" {
		i.IssueType = TypeTask
	}
}

// Status represents the current state of an issue
type Status string

// Issue status constants
const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusBlocked    Status = "blocked"
	StatusDeferred   Status = "deferred"
	StatusClosed     Status = "closed"
	StatusTombstone  Status = "tombstone" // Soft-deleted issue; never shown on the board
	StatusPinned     Status = "pinned"    // Persistent context marker, not a work item
)

// IsValid checks if the status value is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusBlocked, StatusDeferred, StatusClosed, StatusTombstone, StatusPinned:
		return true
	}
	return false
}

// IssueType categorizes the kind of work
type IssueType string

// Issue type constants
const (
	TypeBug     IssueType = "bug"
	TypeFeature IssueType = "feature"
	TypeTask    IssueType = "task"
	TypeEpic    IssueType = "epic"
	TypeChore   IssueType = "chore"
)

// IsValid checks if the issue type value is valid
func (t IssueType) IsValid() bool {
	switch t {
	case TypeBug, TypeFeature, TypeTask, TypeEpic, TypeChore:
		return true
	}
	return false
}

// Dependency represents a relationship between issues as reported by
// the backend. The edge set may contain cycles; consumers must not
// assume a DAG.
type Dependency struct {
	IssueID     string         `json:"issue_id"`
	DependsOnID string         `json:"depends_on_id"`
	Type        DependencyType `json:"type"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
	CreatedBy   string         `json:"created_by,omitempty"`
}

// DependencyType categorizes the relationship
type DependencyType string

// Dependency type constants
const (
	// Workflow types (affect ready work calculation)
	DepBlocks      DependencyType = "blocks"
	DepParentChild DependencyType = "parent-child"

	// Association types
	DepRelated        DependencyType = "related"
	DepDiscoveredFrom DependencyType = "discovered-from"
)

// IsValid checks if the dependency type value is valid.
// Accepts any non-empty string up to 50 characters; the backend allows
// custom edge types. Use IsWellKnown to check for a built-in type.
func (d DependencyType) IsValid() bool {
	return len(d) > 0 && len(d) <= 50
}

// IsWellKnown checks if the dependency type is a built-in constant.
func (d DependencyType) IsWellKnown() bool {
	switch d {
	case DepBlocks, DepParentChild, DepRelated, DepDiscoveredFrom:
		return true
	}
	return false
}

// AffectsReadyWork returns true if this dependency type blocks work.
func (d DependencyType) AffectsReadyWork() bool {
	return d == DepBlocks || d == DepParentChild
}

// Comment represents a comment on an issue
type Comment struct {
	ID        int64     `json:"id"`
	IssueID   string    `json:"issue_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// IssueWithCounts is the `bd list --json` row shape: the issue with
// its relationship counts. Labels and dependency records arrive
// populated inline on the embedded issue.
type IssueWithCounts struct {
	*Issue
	DependencyCount int `json:"dependency_count"`
	DependentCount  int `json:"dependent_count"`
	CommentCount    int `json:"comment_count"`
}

// BlockedIssue is the `bd blocked --json` row shape: the issue plus
// the open dependencies holding it.
type BlockedIssue struct {
	Issue
	BlockedByCount int      `json:"blocked_by_count"`
	BlockedBy      []string `json:"blocked_by"`
}

// IssueWithDependencyMetadata is an issue annotated with the type of
// the edge that connected it to the issue being inspected.
type IssueWithDependencyMetadata struct {
	Issue
	DependencyType DependencyType `json:"dependency_type"`
}

// IssueDetails is the `bd show --json` element shape: the issue plus
// its labels, both directions of the dependency graph, and comments.
// Parent is derived from the parent-child edge when one exists.
type IssueDetails struct {
	Issue
	Labels       []string                       `json:"labels,omitempty"`
	Dependencies []*IssueWithDependencyMetadata `json:"dependencies,omitempty"`
	Dependents   []*IssueWithDependencyMetadata `json:"dependents,omitempty"`
	Comments     []*Comment                     `json:"comments,omitempty"`
	Parent       *string                        `json:"parent,omitempty"`
}

// Statistics mirrors the backend's `bd stats --json` payload. One call
// answers every column-count question, which is what keeps board
// metadata O(1) instead of O(issues).
type Statistics struct {
	TotalIssues      int `json:"total_issues"`
	OpenIssues       int `json:"open_issues"`
	InProgressIssues int `json:"in_progress_issues"`
	ClosedIssues     int `json:"closed_issues"`
	BlockedIssues    int `json:"blocked_issues"`
	DeferredIssues   int `json:"deferred_issues"`
	ReadyIssues      int `json:"ready_issues"`
	TombstoneIssues  int `json:"tombstone_issues"`
	PinnedIssues     int `json:"pinned_issues"`

	AverageLeadTime float64 `json:"average_lead_time_hours"`
}
