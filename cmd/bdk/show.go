package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/summarize"
	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/ui"
)

var (
	showFull      bool
	showSummarize bool
	showNoPager   bool
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show full details for one card",
	Long: `Show full details for one card: fields, text sections, dependency
neighborhood, comments.

Examples:
  # Card details (long sections elided)
  bdk show bd-42

  # Everything, no truncation
  bdk show bd-42 --full

  # Ask the configured model for a triage summary
  bdk show bd-42 --summarize`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}
		ctx := cmd.Context()
		id := normalizeID(args[0])

		details, err := b.CardDetails(ctx, id)
		if err != nil {
			exitBoardError(err)
		}

		summary := ""
		if showSummarize {
			summary = fetchSummary(cmd, b.Options().SummaryModel, details)
		}

		if jsonOutput {
			if summary != "" {
				outputJSON(struct {
					*types.CardDetails
					Summary string `json:"summary"`
				}{details, summary})
				return
			}
			outputJSON(details)
			return
		}

		out := ui.RenderCardDetails(details, ui.DetailOptions{
			Full:     showFull,
			Markdown: ui.ShouldUseColor() && !ui.IsAgentMode(),
		})
		if summary != "" {
			out += "\n" + ui.RenderAccent("Summary") + "\n" + ui.WrapText(summary, 80) + "\n"
		}
		if err := ui.ToPager(out, ui.PagerOptions{NoPager: showNoPager}); err != nil {
			fmt.Print(out)
		}
	},
}

// fetchSummary asks the configured model for a short triage summary of
// the card. A missing API key is a usage error with a hint, not a
// crash; everything the model call needs is already in details, so no
// further backend traffic happens here.
func fetchSummary(cmd *cobra.Command, model string, details *types.CardDetails) string {
	s, err := summarize.New(model)
	if err != nil {
		if errors.Is(err, summarize.ErrNoAPIKey) {
			FatalErrorWithHint("card summaries need an Anthropic API key",
				"set ANTHROPIC_API_KEY (and optionally BDK_SUMMARY_MODEL) to enable --summarize")
		}
		FatalError("%v", err)
	}

	summary, err := s.Summarize(cmd.Context(), details)
	if err != nil {
		FatalError("%v", err)
	}
	return summary
}

func init() {
	showCmd.Flags().BoolVar(&showFull, "full", false, "Show long text sections untruncated")
	showCmd.Flags().BoolVar(&showSummarize, "summarize", false, "Add a model-written summary of the card")
	showCmd.Flags().BoolVar(&showNoPager, "no-pager", false, "Never pipe output through a pager")
	rootCmd.AddCommand(showCmd)
}
