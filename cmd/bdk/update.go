package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/timeparsing"
	"github.com/davidcforbes/beads-kanban/internal/util"
	"github.com/davidcforbes/beads-kanban/internal/validation"
)

var (
	updateTitle       string
	updateDescription string
	updateDesign      string
	updateAcceptance  string
	updateNotes       string
	updateStatus      string
	updateType        string
	updatePriority    string
	updateAssignee    string
	updateExternalRef string
	updateEstimate    int
	updateDue         string
	updateDefer       string
	updateAddLabels   []string
	updateRmLabels    []string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields on a card",
	Long: `Update fields on a card. Only flags you pass change anything;
everything else is left alone.

Scheduling flags take natural language ("tomorrow", "next friday"),
compact offsets ("+2d", "1w"), or dates ("2026-09-01"). An empty value
clears the field.

Examples:
  # Reassign and bump priority
  bdk update bd-42 -a alice -p 1

  # Defer until next week
  bdk update bd-42 --defer "next monday"

  # Clear the due date
  bdk update bd-42 --due ""`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		b, err := openBoard()
		if err != nil {
			FatalError("%v", err)
		}

		req, err := updateRequestFromFlags(cmd, normalizeID(args[0]))
		if err != nil {
			FatalError("%v", err)
		}

		issue, err := b.UpdateFields(cmd.Context(), req)
		if err != nil {
			exitBoardError(err)
		}

		if jsonOutput {
			outputJSON(issue)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		if issue != nil {
			fmt.Printf("%s Updated %s: %s\n", green("✓"), issue.ID, issue.Title)
		} else {
			// Older backends print nothing on update; the change applied.
			fmt.Printf("%s Updated %s\n", green("✓"), req.ID)
		}
	},
}

// updateRequestFromFlags maps changed flags onto request pointers.
func updateRequestFromFlags(cmd *cobra.Command, id string) (backend.UpdateRequest, error) {
	req := backend.UpdateRequest{ID: id}
	flags := cmd.Flags()

	if flags.Changed("title") {
		req.Title = &updateTitle
	}
	if flags.Changed("description") {
		req.Description = &updateDescription
	}
	if flags.Changed("design") {
		req.Design = &updateDesign
	}
	if flags.Changed("acceptance") {
		req.AcceptanceCriteria = &updateAcceptance
	}
	if flags.Changed("notes") {
		req.Notes = &updateNotes
	}
	if flags.Changed("status") {
		s, err := validation.ParseStatus(updateStatus)
		if err != nil {
			return req, err
		}
		req.Status = &s
	}
	if flags.Changed("type") {
		t, err := validation.ParseIssueType(util.NormalizeIssueType(updateType))
		if err != nil {
			return req, err
		}
		req.IssueType = &t
	}
	if flags.Changed("priority") {
		p, err := validation.ValidatePriority(updatePriority)
		if err != nil {
			return req, err
		}
		req.Priority = &p
	}
	if flags.Changed("assignee") {
		req.Assignee = &updateAssignee
	}
	if flags.Changed("external-ref") {
		req.ExternalRef = &updateExternalRef
	}
	if flags.Changed("estimate") {
		e := updateEstimate
		req.EstimatedMinutes = &e
	}
	if flags.Changed("due") {
		due, err := parseSchedule(updateDue)
		if err != nil {
			return req, fmt.Errorf("--due: %w", err)
		}
		req.DueAt = &due
	}
	if flags.Changed("defer") {
		deferUntil, err := parseSchedule(updateDefer)
		if err != nil {
			return req, fmt.Errorf("--defer: %w", err)
		}
		req.DeferUntil = &deferUntil
	}
	req.AddLabels = util.NormalizeLabels(updateAddLabels)
	req.RemoveLabels = util.NormalizeLabels(updateRmLabels)

	return req, nil
}

// parseSchedule normalizes a schedule expression to an RFC 3339 stamp
// the backend takes verbatim. Empty input passes through to clear the
// field.
func parseSchedule(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	t, err := timeparsing.ParseRelativeTime(raw, time.Now())
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}

func init() {
	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVarP(&updateDescription, "description", "d", "", "New description")
	updateCmd.Flags().StringVar(&updateDesign, "design", "", "New design notes")
	updateCmd.Flags().StringVar(&updateAcceptance, "acceptance", "", "New acceptance criteria")
	updateCmd.Flags().StringVar(&updateNotes, "notes", "", "New freeform notes")
	updateCmd.Flags().StringVarP(&updateStatus, "status", "s", "", "New status")
	updateCmd.Flags().StringVarP(&updateType, "type", "t", "", "New issue type")
	updateCmd.Flags().StringVarP(&updatePriority, "priority", "p", "", "New priority (0-4 or P0-P4)")
	updateCmd.Flags().StringVarP(&updateAssignee, "assignee", "a", "", "New assignee (empty to unassign)")
	updateCmd.Flags().StringVar(&updateExternalRef, "external-ref", "", "New external reference")
	updateCmd.Flags().IntVar(&updateEstimate, "estimate", 0, "New estimate in minutes")
	updateCmd.Flags().StringVar(&updateDue, "due", "", "Due date (empty to clear)")
	updateCmd.Flags().StringVar(&updateDefer, "defer", "", "Defer until (empty to clear)")
	updateCmd.Flags().StringSliceVar(&updateAddLabels, "add-label", nil, "Label to add (repeatable)")
	updateCmd.Flags().StringSliceVar(&updateRmLabels, "remove-label", nil, "Label to remove (repeatable)")
	rootCmd.AddCommand(updateCmd)
}
