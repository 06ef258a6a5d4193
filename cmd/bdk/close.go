package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var closeReason string

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close a card",
	Long: `Close a card, optionally recording why.

Examples:
  bdk close bd-42
  bdk close bd-42 --reason "fixed in 1.4.2"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		id := normalizeID(args[0])

		issue, err := b.CloseCard(cmd.Context(), id, closeReason)
		if err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(issue)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		if issue != nil {
			fmt.Printf("%s Closed %s: %s\n", green("✓"), issue.ID, issue.Title)
		} else {
			fmt.Printf("%s Closed %s\n", green("✓"), id)
		}
	},
}

func init() {
	closeCmd.Flags().StringVar(&closeReason, "reason", "", "Why the card is closing")
	rootCmd.AddCommand(closeCmd)
}
