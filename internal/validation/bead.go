package validation

import (
	"fmt"
	"strings"

	"github.com/davidcforbes/beads-kanban/internal/types"
)

// ParsePriority extracts and validates a priority value from content.
// Supports both numeric (0-4) and P-prefix format (P0-P4).
// Returns the parsed priority (0-4) or -1 if invalid.
func ParsePriority(content string) int {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(strings.ToUpper(content), "P") {
		content = content[1:]
	}

	var p int
	if _, err := fmt.Sscanf(content, "%d", &p); err == nil && p >= 0 && p <= 4 {
		return p
	}
	return -1
}

// ValidatePriority parses and validates a priority string.
// Returns the parsed priority (0-4) or an error if invalid.
// Supports both numeric (0-4) and P-prefix format (P0-P4).
func ValidatePriority(priorityStr string) (int, error) {
	priority := ParsePriority(priorityStr)
	if priority == -1 {
		return -1, fmt.Errorf("invalid priority %q (expected 0-4 or P0-P4, not words like high/medium/low)", priorityStr)
	}
	return priority, nil
}

// ParseIssueType extracts and validates an issue type from content.
// Returns the validated type or an error if invalid.
func ParseIssueType(content string) (types.IssueType, error) {
	issueType := types.IssueType(strings.TrimSpace(content))
	if !issueType.IsValid() {
		return types.TypeTask, fmt.Errorf("invalid issue type: %s", content)
	}
	return issueType, nil
}

// ParseStatus validates a status string against the known set.
func ParseStatus(content string) (types.Status, error) {
	status := types.Status(strings.TrimSpace(content))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid status %q (expected open, in_progress, blocked, deferred, closed, tombstone, or pinned)", content)
	}
	return status, nil
}
