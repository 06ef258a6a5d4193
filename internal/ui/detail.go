package ui

import (
	"fmt"
	"strings"

	"github.com/davidcforbes/beads-kanban/internal/types"
)

const timestampLayout = "2006-01-02 15:04"

// DetailOptions controls card detail rendering.
type DetailOptions struct {
	Full     bool // show long text sections untruncated
	Markdown bool // render text sections through glamour
}

// RenderCardDetails formats the detail view for one card: metadata
// header, text sections, then the dependency neighborhood grouped by
// edge direction.
func RenderCardDetails(d *types.CardDetails, opts DetailOptions) string {
	if d == nil || d.Issue == nil {
		return ""
	}
	issue := d.Issue

	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", RenderAccent(issue.ID), issue.Title)
	fmt.Fprintf(&b, "Status: %s\n", issue.Status)
	if issue.CloseReason != "" {
		fmt.Fprintf(&b, "Close reason: %s\n", issue.CloseReason)
	}
	fmt.Fprintf(&b, "Priority: P%d\n", issue.Priority)
	fmt.Fprintf(&b, "Type: %s\n", issue.IssueType)
	if issue.Assignee != "" {
		fmt.Fprintf(&b, "Assignee: %s\n", issue.Assignee)
	}
	if issue.EstimatedMinutes != nil {
		fmt.Fprintf(&b, "Estimated: %d minutes\n", *issue.EstimatedMinutes)
	}
	if issue.DueAt != nil {
		fmt.Fprintf(&b, "Due: %s\n", issue.DueAt.Format(timestampLayout))
	}
	if issue.DeferUntil != nil {
		fmt.Fprintf(&b, "Deferred until: %s\n", issue.DeferUntil.Format(timestampLayout))
	}
	if issue.ExternalRef != nil && *issue.ExternalRef != "" {
		fmt.Fprintf(&b, "External ref: %s\n", *issue.ExternalRef)
	}
	fmt.Fprintf(&b, "Created: %s\n", issue.CreatedAt.Format(timestampLayout))
	fmt.Fprintf(&b, "Updated: %s\n", issue.UpdatedAt.Format(timestampLayout))
	if d.Parent != "" {
		fmt.Fprintf(&b, "Parent: %s\n", d.Parent)
	}

	writeTextSection(&b, "Description", issue.Description, opts)
	writeTextSection(&b, "Design", issue.Design, opts)
	writeTextSection(&b, "Notes", issue.Notes, opts)
	writeTextSection(&b, "Acceptance Criteria", issue.AcceptanceCriteria, opts)

	if len(d.Labels) > 0 {
		fmt.Fprintf(&b, "\nLabels: %s\n", strings.Join(d.Labels, ", "))
	}

	writeDepSection(&b, "Depends on", "→", d.Blockers)
	writeDepSection(&b, "Blocks", "←", d.Blocks)
	writeDepSection(&b, "Children", "↳", d.Children)
	writeDepSection(&b, "Related", "↔", d.Related)

	if len(d.Comments) > 0 {
		fmt.Fprintf(&b, "\nComments (%d):\n", len(d.Comments))
		for _, comment := range d.Comments {
			fmt.Fprintf(&b, "  [%s at %s]\n", comment.Author, comment.CreatedAt.Format(timestampLayout))
			for _, line := range strings.Split(comment.Text, "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}

	return b.String()
}

func writeTextSection(b *strings.Builder, name, text string, opts DetailOptions) {
	if text == "" {
		return
	}
	if opts.Markdown {
		fmt.Fprintf(b, "\n%s:\n%s", name, RenderMarkdown(text))
		return
	}
	if !opts.Full {
		text = TruncateLines(text, DefaultMaxLines, DefaultContextLines)
	}
	fmt.Fprintf(b, "\n%s:\n%s\n", name, text)
}

func writeDepSection(b *strings.Builder, name, glyph string, deps []*types.IssueWithDependencyMetadata) {
	if len(deps) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s (%d):\n", name, len(deps))
	for _, dep := range deps {
		fmt.Fprintf(b, "  %s %s: %s [P%d - %s]\n", glyph, dep.ID, dep.Title, dep.Priority, dep.Status)
	}
}

// FormatShortIssue returns a compact one-line representation of an issue
// Format: <id> [<status>] P<priority> <type>: <title>
func FormatShortIssue(issue *types.Issue) string {
	return fmt.Sprintf("%s [%s] P%d %s: %s",
		issue.ID, issue.Status, issue.Priority, issue.IssueType, issue.Title)
}
