package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var commentFile string

var commentCmd = &cobra.Command{
	Use:   "comment <id> [text]",
	Short: "Add a comment to a card",
	Long: `Add a comment to a card.

Examples:
  bdk comment bd-42 "Repro confirmed on main"
  bdk comment bd-42 -f notes.md`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := normalizeID(args[0])

		text := ""
		if commentFile != "" {
			data, err := os.ReadFile(commentFile) // #nosec G304 - user-provided file path is intentional
			if err != nil {
				FatalError("reading file: %v", err)
			}
			text = string(data)
		} else if len(args) < 2 {
			FatalError("comment text required (use -f to read from file)")
		} else {
			text = strings.Join(args[1:], " ")
		}

		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}

		comment, err := b.AddComment(cmd.Context(), id, text)
		if err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(comment)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Comment added to %s\n", green("✓"), id)
	},
}

func init() {
	commentCmd.Flags().StringVarP(&commentFile, "file", "f", "", "Read comment text from file")
	rootCmd.AddCommand(commentCmd)
}
