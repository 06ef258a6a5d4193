package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/board"
	"github.com/davidcforbes/beads-kanban/internal/sanitize"
	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/ui"
)

var boardWatch bool

var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Show the kanban board",
	Long: `Show the kanban board: one column per configured status, first page
of cards in each.

Examples:
  # Render the board once
  bdk board

  # Re-render whenever the workspace changes
  bdk board --watch

  # Use a named layout from .beads/kanban.toml
  bdk board --profile triage`,
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		ctx := cmd.Context()

		if boardWatch {
			if jsonOutput {
				FatalError("--watch cannot be combined with --json")
			}
			runBoardWatch(ctx, b)
			return
		}

		snap := loadBoardSnapshot(ctx, b)
		if jsonOutput {
			outputJSON(snap)
			return
		}
		fmt.Println(renderBoardSnapshot(snap))
	},
}

// boardSnapshot is one fully-loaded paint of the board. Pages and
// errors are keyed by column; a column appears in exactly one of them.
type boardSnapshot struct {
	Columns []types.ColumnMeta                    `json:"columns"`
	Pages   map[types.ColumnKey]*types.ColumnPage `json:"pages"`
	Errors  map[types.ColumnKey]string            `json:"errors,omitempty"`
}

// loadBoardSnapshot loads metadata plus the first page of every column.
// Failures stay local: a column that cannot load is reported in Errors
// and the rest of the board still renders.
func loadBoardSnapshot(ctx context.Context, b *board.Board) *boardSnapshot {
	snap := &boardSnapshot{
		Pages:  make(map[types.ColumnKey]*types.ColumnPage),
		Errors: make(map[types.ColumnKey]string),
	}

	meta, err := b.Metadata(ctx)
	if err != nil {
		// Zero-state: columns without counts beat no board at all.
		msg, _ := sanitize.Message(err)
		WarnError("column counts unavailable: %s", msg)
		meta = &types.BoardMeta{}
		for _, key := range b.Columns() {
			meta.Columns = append(meta.Columns, types.ColumnMeta{
				Key:   key,
				Label: key.DefaultLabel(),
				Count: -1,
			})
		}
	}
	snap.Columns = meta.Columns

	pageSize := b.Options().PageSize
	for _, col := range meta.Columns {
		page, err := b.LoadColumnPage(ctx, col.Key, 0, pageSize)
		if err != nil {
			msg, _ := sanitize.Message(err)
			snap.Errors[col.Key] = msg
			continue
		}
		snap.Pages[col.Key] = page
	}
	return snap
}

func renderBoardSnapshot(snap *boardSnapshot) string {
	pages := make(map[types.ColumnKey]types.ColumnPage, len(snap.Pages))
	for key, page := range snap.Pages {
		pages[key] = *page
	}

	out := ui.RenderBoard(types.BoardMeta{Columns: snap.Columns}, pages, ui.TerminalWidth(ui.DefaultBoardWidth))
	for key, msg := range snap.Errors {
		out += "\n" + ui.FailStyle.Render("✗ "+string(key)+": "+msg)
	}
	return out
}

// runBoardWatch repaints the board whenever the workspace store
// changes, until interrupted.
func runBoardWatch(ctx context.Context, b *board.Board) {
	changed := make(chan struct{}, 1)
	if err := b.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	}); err != nil {
		// Degraded freshness only: TTL expiry still repaints below.
		WarnError("watch unavailable: %v", err)
	}

	paint := func() {
		fmt.Print("\033[2J\033[H")
		fmt.Printf("bdk board  %s  (ctrl-c to quit)\n\n", time.Now().Format("15:04:05"))
		fmt.Println(renderBoardSnapshot(loadBoardSnapshot(ctx, b)))
	}
	paint()

	// Periodic repaint catches changes the watcher cannot see, at the
	// cache TTL so idle repaints stay free.
	interval := b.Options().CacheTTL
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case <-changed:
			paint()
		case <-ticker.C:
			paint()
		}
	}
}

func init() {
	boardCmd.Flags().BoolVarP(&boardWatch, "watch", "w", false, "Repaint when the workspace changes")
	rootCmd.AddCommand(boardCmd)
}
