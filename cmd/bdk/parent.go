package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var parentCmd = &cobra.Command{
	Use:   "parent",
	Short: "Manage a card's parent",
}

var parentSetCmd = &cobra.Command{
	Use:   "set <id> <parent>",
	Short: "Make a card a child of another",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		id := normalizeID(args[0])
		parent := normalizeID(args[1])

		if _, err := b.SetParent(cmd.Context(), id, parent); err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"id": id, "parent": parent})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s %s is now a child of %s\n", green("✓"), id, parent)
	},
}

var parentRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Detach a card from its parent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		id := normalizeID(args[0])

		if _, err := b.RemoveParent(cmd.Context(), id); err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"id": id, "parent": ""})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Detached %s from its parent\n", green("✓"), id)
	},
}

func init() {
	parentCmd.AddCommand(parentSetCmd)
	parentCmd.AddCommand(parentRemoveCmd)
	rootCmd.AddCommand(parentCmd)
}
