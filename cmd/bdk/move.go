package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/validation"
)

var moveCmd = &cobra.Command{
	Use:   "move <id> <status>",
	Short: "Move a card to another column",
	Long: `Move a card to another column by setting its status.

Examples:
  bdk move bd-42 in_progress
  bdk move bd-42 open`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		id := normalizeID(args[0])
		status, err := validation.ParseStatus(args[1])
		if err != nil {
			FatalError("%v", err)
		}

		issue, err := b.SetStatus(cmd.Context(), id, status)
		if err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(issue)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Moved %s to %s\n", green("✓"), id, status)
	},
}

func init() {
	rootCmd.AddCommand(moveCmd)
}
