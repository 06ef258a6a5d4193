package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/davidcforbes/beads-kanban/internal/types"
)

// Column layout bounds. Columns share the width evenly within these
// limits; a narrow terminal gets horizontal overflow rather than
// unreadable slivers.
const (
	minColumnWidth    = 24
	maxColumnWidth    = 56
	DefaultBoardWidth = 120
)

// RenderBoard renders the full board as columns side by side. Pages
// may be missing for columns that failed to load; those render a
// placeholder instead of dropping the column.
func RenderBoard(meta types.BoardMeta, pages map[types.ColumnKey]types.ColumnPage, width int) string {
	if len(meta.Columns) == 0 {
		return RenderMuted("(no columns configured)")
	}
	if width <= 0 {
		width = DefaultBoardWidth
	}

	gaps := len(meta.Columns) - 1
	colWidth := (width - gaps) / len(meta.Columns)
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}
	if colWidth > maxColumnWidth {
		colWidth = maxColumnWidth
	}

	cols := make([][]string, 0, len(meta.Columns))
	for _, col := range meta.Columns {
		page, ok := pages[col.Key]
		if !ok {
			cols = append(cols, renderUnloadedColumn(col, colWidth))
			continue
		}
		cols = append(cols, renderColumn(col, page, colWidth))
	}

	return joinColumns(cols, colWidth)
}

// renderColumn renders one column as a slice of lines: header,
// divider, cards, and a footer when more pages remain.
func renderColumn(col types.ColumnMeta, page types.ColumnPage, width int) []string {
	lines := []string{columnHeader(col), RenderMuted(strings.Repeat("─", width))}

	if len(page.Items) == 0 {
		lines = append(lines, RenderMuted("(empty)"))
		return lines
	}

	for i, issue := range page.Items {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, renderCardLines(issue, width, page.BlockedBy[issue.ID])...)
	}

	if page.HasMore {
		lines = append(lines, "", RenderMuted(IconMore+" more"))
	}
	return lines
}

func renderUnloadedColumn(col types.ColumnMeta, width int) []string {
	return []string{
		columnHeader(col),
		RenderMuted(strings.Repeat("─", width)),
		RenderMuted("(not loaded)"),
	}
}

// columnHeader renders "READY (23)", omitting the count when the
// metadata pass could not determine one.
func columnHeader(col types.ColumnMeta) string {
	label := strings.ToUpper(col.Label)
	if col.Count >= 0 {
		label = fmt.Sprintf("%s (%d)", label, col.Count)
	}
	return ColumnHeaderStyle.Render(label)
}

// renderCardLines renders one card as two lines, plus a third for
// blocked cards naming what they wait on.
func renderCardLines(issue *types.Issue, width int, blockedBy []string) []string {
	meta := CardIDStyle.Render(issue.ID) + "  " + RenderPriority(issue.Priority)
	if issue.IssueType != "" {
		meta += " " + RenderMuted(string(issue.IssueType))
	}
	if age := AgeLabel(issue.UpdatedAt); age != "" {
		meta += " " + RenderMuted(age)
	}

	lines := []string{meta, TruncateSimple(issue.Title, width)}

	if len(blockedBy) > 0 {
		waits := TruncateSimple(strings.Join(blockedBy, ", "), width-2)
		lines = append(lines, FailStyle.Render(IconBlocked)+" "+RenderMuted(waits))
	}
	return lines
}

// AgeLabel formats how long ago a timestamp was as a compact chip:
// "<1d", "3d", "2w", "5mo". Empty string for zero times.
func AgeLabel(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	days := int(time.Since(t).Hours() / 24)
	switch {
	case days < 1:
		return "<1d"
	case days < 7:
		return fmt.Sprintf("%dd", days)
	case days < 30:
		return fmt.Sprintf("%dw", days/7)
	default:
		return fmt.Sprintf("%dmo", days/30)
	}
}

// joinColumns pads every column to the same height and width, then
// joins rows with a vertical separator.
func joinColumns(cols [][]string, colWidth int) string {
	maxLines := 0
	for _, col := range cols {
		if len(col) > maxLines {
			maxLines = len(col)
		}
	}

	sep := RenderMuted("│")
	var out strings.Builder
	for row := 0; row < maxLines; row++ {
		parts := make([]string, 0, len(cols))
		for _, col := range cols {
			line := ""
			if row < len(col) {
				line = col[row]
			}
			parts = append(parts, padLine(line, colWidth))
		}
		if row > 0 {
			out.WriteString("\n")
		}
		out.WriteString(strings.Join(parts, sep))
	}
	return out.String()
}

// padLine pads a rendered line with spaces to the target display
// width. Uses lipgloss.Width so ANSI sequences do not count.
func padLine(line string, width int) string {
	gap := width - lipgloss.Width(line)
	if gap <= 0 {
		return line
	}
	return line + strings.Repeat(" ", gap)
}
