// Package kanban provides a minimal public API for embedding the board
// in other Go programs.
//
// Most integrations should use the bdk CLI or its HTTP API. This
// package exports only the types and constructors needed to drive a
// board programmatically: load column pages, open card details, and
// run mutations against a bd workspace.
package kanban

import (
	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/board"
	"github.com/davidcforbes/beads-kanban/internal/config"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

// Core types for working with the board
type (
	Board          = board.Board
	Options        = config.Options
	Issue          = types.Issue
	Status         = types.Status
	IssueType      = types.IssueType
	DependencyType = types.DependencyType
	ColumnKey      = types.ColumnKey
	ColumnMeta     = types.ColumnMeta
	BoardMeta      = types.BoardMeta
	ColumnPage     = types.ColumnPage
	CardDetails    = types.CardDetails
	Comment        = types.Comment
	Statistics     = types.Statistics
	CreateRequest  = backend.CreateRequest
	UpdateRequest  = backend.UpdateRequest
)

// Status constants
const (
	StatusOpen       = types.StatusOpen
	StatusInProgress = types.StatusInProgress
	StatusBlocked    = types.StatusBlocked
	StatusDeferred   = types.StatusDeferred
	StatusClosed     = types.StatusClosed
)

// IssueType constants
const (
	TypeBug     = types.TypeBug
	TypeFeature = types.TypeFeature
	TypeTask    = types.TypeTask
	TypeEpic    = types.TypeEpic
	TypeChore   = types.TypeChore
)

// DependencyType constants
const (
	DepBlocks         = types.DepBlocks
	DepRelated        = types.DepRelated
	DepParentChild    = types.DepParentChild
	DepDiscoveredFrom = types.DepDiscoveredFrom
)

// Standard column keys
const (
	ColumnReady      = types.ColumnReady
	ColumnInProgress = types.ColumnInProgress
	ColumnBlocked    = types.ColumnBlocked
	ColumnClosed     = types.ColumnClosed
)

// Open builds a board over the bd binary named in opts, showing the
// four standard columns. Zero-value fields in opts get defaults.
func Open(opts Options) *Board {
	return board.Open(opts, nil)
}

// OpenWithColumns is Open with an explicit column layout. Standard
// keys get their usual queries; a custom key names a backend status.
func OpenWithColumns(opts Options, columns []ColumnKey) *Board {
	return board.Open(opts, columns)
}

// StandardColumns returns the default column layout.
func StandardColumns() []ColumnKey {
	return types.StandardColumns()
}
