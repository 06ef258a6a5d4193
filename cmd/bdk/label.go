package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage labels on a card",
}

var labelAddCmd = &cobra.Command{
	Use:   "add <id> <label>",
	Short: "Add a label to a card",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		id := normalizeID(args[0])

		if _, err := b.AddLabel(cmd.Context(), id, args[1]); err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"id": id, "added": args[1]})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added label %q to %s\n", green("✓"), args[1], id)
	},
}

var labelRemoveCmd = &cobra.Command{
	Use:   "remove <id> <label>",
	Short: "Remove a label from a card",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		id := normalizeID(args[0])

		if _, err := b.RemoveLabel(cmd.Context(), id, args[1]); err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"id": id, "removed": args[1]})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Removed label %q from %s\n", green("✓"), args[1], id)
	},
}

func init() {
	labelCmd.AddCommand(labelAddCmd)
	labelCmd.AddCommand(labelRemoveCmd)
	rootCmd.AddCommand(labelCmd)
}
