package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/ui"
)

var (
	columnOffset int
	columnLimit  int
)

var columnCmd = &cobra.Command{
	Use:   "column <key>",
	Short: "List one page of a board column",
	Long: `List one page of a board column. Standard keys are ready,
in_progress, blocked and closed; a custom key names a backend status.

Examples:
  # First page of the ready column
  bdk column ready

  # The next fifty blocked issues
  bdk column blocked --offset 50 --limit 50`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		key := types.ColumnKey(args[0])

		page, err := b.LoadColumnPage(cmd.Context(), key, columnOffset, columnLimit)
		if err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(page)
			return
		}
		printColumnPage(key, page, columnOffset)
	},
}

func printColumnPage(key types.ColumnKey, page *types.ColumnPage, offset int) {
	if len(page.Items) == 0 {
		if offset > 0 {
			fmt.Printf("No issues in %s at offset %d\n", key, offset)
		} else {
			fmt.Printf("No issues in %s\n", key)
		}
		return
	}

	for _, issue := range page.Items {
		fmt.Println(ui.FormatShortIssue(issue))
		if waits := page.BlockedBy[issue.ID]; len(waits) > 0 {
			fmt.Printf("    %s\n", ui.RenderMuted("waiting on: "+strings.Join(waits, ", ")))
		}
	}

	if page.HasMore {
		next := offset + len(page.Items)
		fmt.Println(ui.RenderMuted(fmt.Sprintf("... more (try --offset %d)", next)))
	}
}

func init() {
	columnCmd.Flags().IntVar(&columnOffset, "offset", 0, "Rows to skip")
	columnCmd.Flags().IntVar(&columnLimit, "limit", 0, "Rows per page (default: configured page size)")
	rootCmd.AddCommand(columnCmd)
}
