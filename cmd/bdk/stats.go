package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/ui"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show workspace statistics",
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}

		stats, err := b.Statistics(cmd.Context())
		if err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(stats)
			return
		}
		printStats(stats)
	},
}

func printStats(stats *types.Statistics) {
	fmt.Printf("%s\n\n", ui.RenderAccent("Workspace"))
	fmt.Printf("  Total:       %d\n", stats.TotalIssues)
	fmt.Printf("  Ready:       %d\n", stats.ReadyIssues)
	fmt.Printf("  Open:        %d\n", stats.OpenIssues)
	fmt.Printf("  In progress: %d\n", stats.InProgressIssues)
	fmt.Printf("  Blocked:     %d\n", stats.BlockedIssues)
	fmt.Printf("  Deferred:    %d\n", stats.DeferredIssues)
	fmt.Printf("  Closed:      %d\n", stats.ClosedIssues)
	if stats.PinnedIssues > 0 {
		fmt.Printf("  Pinned:      %d\n", stats.PinnedIssues)
	}
	if stats.AverageLeadTime > 0 {
		fmt.Printf("\n  Average lead time: %.1f hours\n", stats.AverageLeadTime)
	}
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
