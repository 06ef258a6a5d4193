package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/types"
)

var depType string

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependencies between cards",
}

var depAddCmd = &cobra.Command{
	Use:   "add <id> <depends-on>",
	Short: "Record that one card depends on another",
	Long: `Record that one card depends on another. A card with open blocks
dependencies shows up in the blocked column.

Examples:
  bdk dep add bd-42 bd-17
  bdk dep add bd-42 bd-17 --type discovered-from`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		from := normalizeID(args[0])
		to := normalizeID(args[1])

		if err := b.AddDependency(cmd.Context(), from, to, types.DependencyType(depType)); err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"id": from, "depends_on": to, "type": depType})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added dependency: %s depends on %s (%s)\n", green("✓"), from, to, depType)
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <id> <depends-on>",
	Short: "Remove a dependency between two cards",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		from := normalizeID(args[0])
		to := normalizeID(args[1])

		if err := b.RemoveDependency(cmd.Context(), from, to); err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(map[string]string{"id": from, "removed": to})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Removed dependency: %s no longer depends on %s\n", green("✓"), from, to)
	},
}

func init() {
	depAddCmd.Flags().StringVar(&depType, "type", string(types.DepBlocks), "Dependency type (blocks|related|parent-child|discovered-from)")
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	rootCmd.AddCommand(depCmd)
}
