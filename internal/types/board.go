package types

// ColumnKey names a board column. The four standard columns are
// predicate views over issue status; layout profiles may add custom
// status-backed columns.
type ColumnKey string

// Standard column keys
const (
	ColumnReady      ColumnKey = "ready"
	ColumnInProgress ColumnKey = "in_progress"
	ColumnBlocked    ColumnKey = "blocked"
	ColumnClosed     ColumnKey = "closed"
)

// IsStandard checks if the key is one of the four built-in columns.
func (k ColumnKey) IsStandard() bool {
	switch k {
	case ColumnReady, ColumnInProgress, ColumnBlocked, ColumnClosed:
		return true
	}
	return false
}

// DefaultLabel returns the human-readable header for a standard column.
// Custom columns carry their own labels from the layout profile.
func (k ColumnKey) DefaultLabel() string {
	switch k {
	case ColumnReady:
		return "Ready"
	case ColumnInProgress:
		return "In Progress"
	case ColumnBlocked:
		return "Blocked"
	case ColumnClosed:
		return "Closed"
	}
	return string(k)
}

// StandardColumns returns the built-in column set in board order.
func StandardColumns() []ColumnKey {
	return []ColumnKey{ColumnReady, ColumnInProgress, ColumnBlocked, ColumnClosed}
}

// ColumnMeta describes one column header: key, label, and a count when
// one was cheaply available (-1 means unknown).
type ColumnMeta struct {
	Key   ColumnKey `json:"key"`
	Label string    `json:"label"`
	Count int       `json:"count"`
}

// BoardMeta is the board skeleton: column definitions without row data.
type BoardMeta struct {
	Columns []ColumnMeta `json:"columns"`
}

// ColumnPage is one bounded slice of a column's issue list. BlockedBy
// is populated for the blocked column only: issue ID to the open
// dependencies holding it.
type ColumnPage struct {
	Items     []*Issue            `json:"items"`
	HasMore   bool                `json:"has_more"`
	BlockedBy map[string][]string `json:"blocked_by,omitempty"`
}

// CardDetails is the lazy detail projection for a single issue: the
// full record plus its direct dependency neighborhood. Fetched on
// demand when a card is opened, never during column loading.
type CardDetails struct {
	Issue    *Issue                         `json:"issue"`
	Labels   []string                       `json:"labels,omitempty"`
	Parent   string                         `json:"parent,omitempty"`
	Children []*IssueWithDependencyMetadata `json:"children,omitempty"`
	Blockers []*IssueWithDependencyMetadata `json:"blockers,omitempty"` // this card waits on these
	Blocks   []*IssueWithDependencyMetadata `json:"blocks,omitempty"`   // these wait on this card
	Related  []*IssueWithDependencyMetadata `json:"related,omitempty"`
	Comments []*Comment                     `json:"comments,omitempty"`
}
