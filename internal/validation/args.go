package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/davidcforbes/beads-kanban/internal/backend"
	"github.com/davidcforbes/beads-kanban/internal/types"
)

// Argument validation for everything that ends up in a bd argv vector.
// Identifiers and identifier-like tokens (labels, column keys, custom
// dependency types) are held to a strict shape; free text is length-
// capped and control-character checked but otherwise passed through,
// since it always travels as a flag value and never reaches a shell.
// Every check runs before a subprocess is spawned, never after.

// issueIDPattern accepts the two ID shapes the backend hands out:
// prefix-suffix (bd-42, bd-a3f8e9) and namespace.prefix-suffix
// (myrepo.bd-42), with optional hierarchical child segments (bd-a3f.1).
var issueIDPattern = regexp.MustCompile(`^(?:[A-Za-z0-9][A-Za-z0-9_-]*\.)?[A-Za-z][A-Za-z0-9_]*-[A-Za-z0-9]+(?:\.[0-9]+)*$`)

// tokenPattern is the shape for identifier-like arguments: labels,
// custom column keys, custom dependency types.
var tokenPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:/-]*$`)

// unsafeChars are rejected in every identifier-like argument. The
// backend is spawned with an argv vector, so none of these reach a
// shell; rejecting them anyway keeps a pasted ID from smuggling flags
// or query text into the backend.
const unsafeChars = ";&|`$<>(){}\n\r"

const maxIDLen = 100

func invalid(format string, args ...any) error {
	return &backend.Error{Kind: backend.KindInvalidIdentifier, Detail: fmt.Sprintf(format, args...)}
}

func unsafe(format string, args ...any) error {
	return &backend.Error{Kind: backend.KindUnsafeArgument, Detail: fmt.Sprintf(format, args...)}
}

// IssueID rejects anything that is not a well-formed bd issue ID.
// Unsafe content (flag-looking, shell metacharacters, whitespace) is
// reported as such before the shape check runs.
func IssueID(id string) error {
	if id == "" {
		return invalid("issue ID is required")
	}
	if len(id) > maxIDLen {
		return invalid("issue ID must be %d characters or less (got %d)", maxIDLen, len(id))
	}
	if strings.HasPrefix(id, "-") {
		return unsafe("issue ID %q must not start with a dash", id)
	}
	if strings.ContainsAny(id, unsafeChars) || strings.ContainsAny(id, " \t") {
		return unsafe("issue ID %q contains unsafe characters", id)
	}
	if !issueIDPattern.MatchString(id) {
		return invalid("invalid issue ID %q (expected prefix-suffix, e.g. bd-a3f8e9 or myrepo.bd-42)", id)
	}
	return nil
}

// IssueIDs validates every ID, failing on the first bad one. Dependency
// edges go through this so neither half is sent when either is bad.
func IssueIDs(ids ...string) error {
	for _, id := range ids {
		if err := IssueID(id); err != nil {
			return err
		}
	}
	return nil
}

// Label rejects labels that would confuse the backend's comma-joined
// label flags or look like flags themselves.
func Label(label string) error {
	if label == "" {
		return invalid("label is required")
	}
	if len(label) > maxIDLen {
		return invalid("label must be %d characters or less (got %d)", maxIDLen, len(label))
	}
	if strings.HasPrefix(label, "-") {
		return unsafe("label %q must not start with a dash", label)
	}
	if strings.ContainsAny(label, unsafeChars) || strings.ContainsAny(label, ", \t") {
		return unsafe("label %q contains unsafe characters", label)
	}
	if !tokenPattern.MatchString(label) {
		return invalid("invalid label %q (letters, digits, and ._:/- only)", label)
	}
	return nil
}

// Labels validates a label set.
func Labels(labels []string) error {
	for _, l := range labels {
		if err := Label(l); err != nil {
			return err
		}
	}
	return nil
}

// Assignee caps length and rejects flag-looking or metacharacter-laden
// values. Spaces are fine; handles and emails both pass.
func Assignee(s string) error {
	if s == "" {
		return nil
	}
	if len(s) > types.MaxAssigneeLen {
		return invalid("assignee must be %d characters or less (got %d)", types.MaxAssigneeLen, len(s))
	}
	if strings.HasPrefix(s, "-") {
		return unsafe("assignee %q must not start with a dash", s)
	}
	if strings.ContainsAny(s, unsafeChars) {
		return unsafe("assignee %q contains unsafe characters", s)
	}
	return controlChars("assignee", s)
}

// Title enforces the 1..500 single-line contract. The backend keeps
// only the first line of a multi-line title, so a newline here is a
// caller bug worth failing loudly on.
func Title(s string) error {
	if strings.TrimSpace(s) == "" {
		return invalid("title is required")
	}
	if len(s) > types.MaxTitleLen {
		return invalid("title must be %d characters or less (got %d)", types.MaxTitleLen, len(s))
	}
	if strings.ContainsAny(s, "\n\r") {
		return unsafe("title must be a single line")
	}
	return controlChars("title", s)
}

// FreeText checks a multi-line text field (description, design, notes,
// acceptance criteria, comment text) against its length cap. Newlines
// and tabs are legitimate here; other control characters are not.
func FreeText(field, s string, max int) error {
	if len(s) > max {
		return invalid("%s must be %d characters or less (got %d)", field, max, len(s))
	}
	return controlChars(field, s)
}

func controlChars(field, s string) error {
	for _, r := range s {
		if r < 0x20 && r != '\n' && r != '\t' && r != '\r' {
			return unsafe("%s contains control characters", field)
		}
	}
	return nil
}

// CommentText is FreeText for comments, which must also be non-empty.
func CommentText(s string) error {
	if strings.TrimSpace(s) == "" {
		return invalid("comment text is required")
	}
	return FreeText("comment", s, types.MaxTextLen)
}

// ExternalRef holds cross-tracker refs like "gh-9" or "jira-ABC" to
// the identifier rules. Empty clears the field and always passes.
func ExternalRef(s string) error {
	if s == "" {
		return nil
	}
	if len(s) > types.MaxExternalRefLen {
		return invalid("external ref must be %d characters or less (got %d)", types.MaxExternalRefLen, len(s))
	}
	if strings.HasPrefix(s, "-") {
		return unsafe("external ref %q must not start with a dash", s)
	}
	if strings.ContainsAny(s, unsafeChars) {
		return unsafe("external ref %q contains unsafe characters", s)
	}
	return controlChars("external ref", s)
}

// Schedule checks a due/defer value: single line, short, not
// flag-shaped. The backend parses the actual date grammar itself, so
// "+6h", "next monday", and RFC3339 all pass through; empty clears.
func Schedule(field, s string) error {
	if s == "" {
		return nil
	}
	if len(s) > maxIDLen {
		return invalid("%s must be %d characters or less (got %d)", field, maxIDLen, len(s))
	}
	if strings.HasPrefix(s, "-") {
		return unsafe("%s %q must not start with a dash", field, s)
	}
	if strings.ContainsAny(s, unsafeChars) {
		return unsafe("%s %q contains unsafe characters", field, s)
	}
	return controlChars(field, s)
}

// Status rejects unknown statuses before they reach a --status flag.
func Status(s types.Status) error {
	if !s.IsValid() {
		return invalid("invalid status %q (expected open, in_progress, blocked, deferred, closed, tombstone, or pinned)", string(s))
	}
	return nil
}

// IssueType rejects unknown issue types.
func IssueType(t types.IssueType) error {
	if !t.IsValid() {
		return invalid("invalid issue type %q (expected task, bug, feature, epic, or chore)", string(t))
	}
	return nil
}

// DependencyType allows the well-known types plus custom tokens.
func DependencyType(t types.DependencyType) error {
	if !t.IsValid() {
		return invalid("invalid dependency type %q", string(t))
	}
	if strings.HasPrefix(string(t), "-") {
		return unsafe("dependency type %q must not start with a dash", string(t))
	}
	if !tokenPattern.MatchString(string(t)) {
		return unsafe("dependency type %q contains unsafe characters", string(t))
	}
	return nil
}

// ColumnKey accepts the standard columns and layout-defined tokens.
func ColumnKey(k types.ColumnKey) error {
	if k.IsStandard() {
		return nil
	}
	if k == "" {
		return invalid("column key is required")
	}
	if !tokenPattern.MatchString(string(k)) {
		return invalid("invalid column key %q", string(k))
	}
	return nil
}

// Limit rejects negative page sizes. Zero means "use the default".
func Limit(n int) error {
	if n < 0 {
		return invalid("limit cannot be negative (got %d)", n)
	}
	return nil
}

// Offset rejects negative pagination offsets.
func Offset(n int) error {
	if n < 0 {
		return invalid("offset cannot be negative (got %d)", n)
	}
	return nil
}

// Priority rejects values outside 0..4.
func Priority(p int) error {
	if p < 0 || p > 4 {
		return invalid("priority must be between 0 and 4 (got %d)", p)
	}
	return nil
}

// EstimatedMinutes rejects negative estimates.
func EstimatedMinutes(m int) error {
	if m < 0 {
		return invalid("estimated minutes cannot be negative (got %d)", m)
	}
	return nil
}
