package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/types"
	"github.com/davidcforbes/beads-kanban/internal/util"
	"github.com/davidcforbes/beads-kanban/internal/validation"
)

var (
	createDescription string
	createType        string
	createPriority    string
	createAssignee    string
	createLabels      []string
	createDesign      string
	createAcceptance  string
	createNotes       string
	createExternalRef string
	createEstimate    int
	createParent      string
	createInteractive bool
)

var createCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new card",
	Long: `Create a new card on the board.

Examples:
  # Quick create
  bdk create "Fix login redirect" -t bug -p 1

  # Full form in the terminal
  bdk create --interactive

  # Create a child card
  bdk create "Write migration" --parent bd-12`,
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}

		var req backend.CreateRequest
		if createInteractive {
			var ok bool
			req, ok = runCreateForm()
			if !ok {
				fmt.Fprintln(os.Stderr, "Card creation cancelled.")
				return
			}
		} else {
			if len(args) == 0 {
				FatalError("title required (or use --interactive)")
			}
			req = createRequestFromFlags(cmd, strings.Join(args, " "))
		}

		if validation.IsTestIssueTitle(req.Title) {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s Title looks like test data.\n", yellow("⚠"))
			fmt.Fprintf(os.Stderr, "  For scratch cards, point bdk at a throwaway workspace instead.\n")
		}

		issue, err := b.CreateCard(cmd.Context(), req)
		if err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(issue)
			return
		}
		printCreatedIssue(issue)
	},
}

// createRequestFromFlags builds the create request from the non-interactive
// flag surface. Pointer fields stay nil unless the flag was given, so
// backend defaults apply.
func createRequestFromFlags(cmd *cobra.Command, title string) backend.CreateRequest {
	req := backend.CreateRequest{
		Title:              title,
		Description:        createDescription,
		Design:             createDesign,
		AcceptanceCriteria: createAcceptance,
		Notes:              createNotes,
		IssueType:          types.IssueType(util.NormalizeIssueType(createType)),
		Assignee:           createAssignee,
		ExternalRef:        createExternalRef,
		Labels:             util.NormalizeLabels(createLabels),
	}
	if cmd.Flags().Changed("priority") {
		p, err := validation.ValidatePriority(createPriority)
		if err != nil {
			FatalError("%v", err)
		}
		req.Priority = &p
	}
	if cmd.Flags().Changed("estimate") {
		e := createEstimate
		req.EstimatedMinutes = &e
	}
	if createParent != "" {
		req.Parent = normalizeID(createParent)
	}
	return req
}

// runCreateForm walks the interactive creation form. Returns ok=false
// when the user aborts.
func runCreateForm() (backend.CreateRequest, bool) {
	var (
		title       string
		description string
		issueType   string
		priorityStr string
		labelsInput string
		design      string
		acceptance  string
		confirmed   bool
	)
	// Prefill from the workspace author so self-assignment is one Enter.
	assignee := localConfig().Author

	typeOptions := []huh.Option[string]{
		huh.NewOption("Task", "task"),
		huh.NewOption("Bug", "bug"),
		huh.NewOption("Feature", "feature"),
		huh.NewOption("Epic", "epic"),
		huh.NewOption("Chore", "chore"),
	}
	priorityOptions := []huh.Option[string]{
		huh.NewOption("P0 - Critical", "0"),
		huh.NewOption("P1 - High", "1"),
		huh.NewOption("P2 - Medium (default)", "2"),
		huh.NewOption("P3 - Low", "3"),
		huh.NewOption("P4 - Backlog", "4"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("Brief summary of the card (required)").
				Placeholder("e.g., Fix race in column loader").
				Value(&title).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("title is required")
					}
					if len(s) > 500 {
						return fmt.Errorf("title must be 500 characters or less")
					}
					return nil
				}),

			huh.NewText().
				Title("Description").
				Description("Detailed context about the card").
				CharLimit(5000).
				Value(&description),

			huh.NewSelect[string]().
				Title("Type").
				Options(typeOptions...).
				Value(&issueType),

			huh.NewSelect[string]().
				Title("Priority").
				Options(priorityOptions...).
				Value(&priorityStr),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Assignee").
				Description("Who should work on this? (optional)").
				Value(&assignee),

			huh.NewInput().
				Title("Labels").
				Description("Comma-separated tags (optional)").
				Placeholder("e.g., urgent, backend").
				Value(&labelsInput),

			huh.NewText().
				Title("Design Notes").
				Description("Technical approach (optional)").
				CharLimit(5000).
				Value(&design),

			huh.NewText().
				Title("Acceptance Criteria").
				Description("How do we know this is done? (optional)").
				CharLimit(5000).
				Value(&acceptance),

			huh.NewConfirm().
				Title("Create this card?").
				Affirmative("Create").
				Negative("Cancel").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		if err == huh.ErrUserAborted {
			return backend.CreateRequest{}, false
		}
		FatalError("form error: %v", err)
	}
	if !confirmed {
		return backend.CreateRequest{}, false
	}

	req := backend.CreateRequest{
		Title:              title,
		Description:        description,
		Design:             design,
		AcceptanceCriteria: acceptance,
		IssueType:          types.IssueType(issueType),
		Assignee:           assignee,
		Labels:             util.NormalizeLabels(strings.Split(labelsInput, ",")),
	}
	if p, err := validation.ValidatePriority(priorityStr); err == nil {
		req.Priority = &p
	}
	return req, true
}

func printCreatedIssue(issue *types.Issue) {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Created card: %s\n", green("✓"), issue.ID)
	fmt.Printf("  Title:    %s\n", issue.Title)
	if issue.IssueType != "" {
		fmt.Printf("  Type:     %s\n", issue.IssueType)
	}
	fmt.Printf("  Priority: P%d\n", issue.Priority)
	fmt.Printf("  Status:   %s\n", issue.Status)
	if issue.Assignee != "" {
		fmt.Printf("  Assignee: %s\n", issue.Assignee)
	}
}

func init() {
	createCmd.Flags().StringVarP(&createDescription, "description", "d", "", "Card description")
	createCmd.Flags().StringVarP(&createType, "type", "t", "", "Issue type (bug|feature|task|epic|chore)")
	createCmd.Flags().StringVarP(&createPriority, "priority", "p", "2", "Priority 0-4 or P0-P4 (0 highest)")
	createCmd.Flags().StringVarP(&createAssignee, "assignee", "a", "", "Assignee")
	createCmd.Flags().StringSliceVarP(&createLabels, "labels", "l", nil, "Labels (comma-separated or repeated)")
	createCmd.Flags().StringVar(&createDesign, "design", "", "Design notes")
	createCmd.Flags().StringVar(&createAcceptance, "acceptance", "", "Acceptance criteria")
	createCmd.Flags().StringVar(&createNotes, "notes", "", "Freeform notes")
	createCmd.Flags().StringVar(&createExternalRef, "external-ref", "", "External tracker reference")
	createCmd.Flags().IntVar(&createEstimate, "estimate", 0, "Estimated minutes")
	createCmd.Flags().StringVar(&createParent, "parent", "", "Parent card ID")
	createCmd.Flags().BoolVarP(&createInteractive, "interactive", "i", false, "Fill in the card with a terminal form")
	rootCmd.AddCommand(createCmd)
}
