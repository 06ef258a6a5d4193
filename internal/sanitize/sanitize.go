// Package sanitize turns raw backend failures into text safe to put in
// front of a user. Raw stderr from bd can carry absolute paths, stack
// frames, and SQLite internals; everything surfaced by the board goes
// through here first. Validation failures are the one exception: their
// messages are authored in this codebase and pass through verbatim.
package sanitize

import (
	"errors"
	"regexp"
	"strings"

	"github.com/davidcforbes/beads-kanban/internal/backend"
)

// Category tags a sanitized failure for UI messaging.
type Category string

// Failure categories
const (
	CategoryNotFound   Category = "not_found"
	CategoryPermission Category = "permission"
	CategoryBusy       Category = "busy"
	CategoryConnection Category = "connection"
	CategoryTimeout    Category = "timeout"
	CategoryValidation Category = "validation"
	CategoryGeneric    Category = "generic"
)

// Path scrubbing patterns, applied in order. Windows drive and UNC
// paths first, then unix well-known roots, then any remaining token
// that names a file by extension.
var (
	windowsPathPattern = regexp.MustCompile(`(?:[A-Za-z]:[\\/]|\\\\)[^\s"',;]*`)
	unixPathPattern    = regexp.MustCompile(`/(?:home|usr|etc|var|tmp|opt|root|private|proc|srv|mnt|snap|Users|Library|Applications|Volumes)(?:/[^\s"',;]*)?`)
	filePattern        = regexp.MustCompile(`[^\s"',;\[\]]+\.(?:go|db|db-wal|db-shm|sqlite|sqlite3|json|jsonl|yaml|yml|toml|sock|log|txt|md)\b`)
	stackLinePattern   = regexp.MustCompile(`(?m)^[ \t]+at .*$`)
)

// knownFailures maps backend stderr markers to actionable messages.
// Ordered: specific markers before broad ones.
var knownFailures = []struct {
	marker   string
	message  string
	category Category
}{
	{"no beads database found", "No beads database was found. Run bd init in the project root.", CategoryNotFound},
	{"enoent", "A file the backend needs was not found.", CategoryNotFound},
	{"no such file or directory", "A file the backend needs was not found.", CategoryNotFound},
	{"eacces", "Permission denied accessing the beads data.", CategoryPermission},
	{"permission denied", "Permission denied accessing the beads data.", CategoryPermission},
	{"database is locked", "The backend is busy. Try again in a moment.", CategoryBusy},
	{"sqlite_busy", "The backend is busy. Try again in a moment.", CategoryBusy},
	{"resource temporarily unavailable", "The backend is busy. Try again in a moment.", CategoryBusy},
	{"connection refused", "Lost contact with the backend. Refresh the board.", CategoryConnection},
	{"broken pipe", "Lost contact with the backend. Refresh the board.", CategoryConnection},
	{"connection reset", "Lost contact with the backend. Refresh the board.", CategoryConnection},
	{"not found", "That issue was not found. It may have been deleted; refresh the board.", CategoryNotFound},
}

const genericMessage = "Something went wrong talking to the beads backend."

// Scrub removes absolute paths, file tokens, and stack-trace lines
// from raw diagnostic text.
func Scrub(raw string) string {
	s := windowsPathPattern.ReplaceAllString(raw, "[PATH]")
	s = unixPathPattern.ReplaceAllString(s, "[PATH]")
	s = filePattern.ReplaceAllString(s, "[FILE]")
	s = stackLinePattern.ReplaceAllString(s, "")
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		kept = append(kept, strings.TrimRight(line, " \t"))
	}
	return strings.TrimSpace(strings.Join(kept, "\n"))
}

// Message converts any adapter error into a user-safe message and a
// category tag. It never returns raw backend text that has not been
// scrubbed.
func Message(err error) (string, Category) {
	if err == nil {
		return "", CategoryGeneric
	}

	var be *backend.Error
	if errors.As(err, &be) {
		switch {
		case be.IsValidation():
			// Authored locally, already safe. Show as written.
			return be.Detail, CategoryValidation
		case be.Kind == backend.KindTimeout:
			return "The backend did not respond in time. Refresh the board before retrying.", CategoryTimeout
		case be.Kind == backend.KindConnectionLost:
			return "Could not start the bd backend. Check that bd is installed and on your PATH.", CategoryConnection
		case be.Kind == backend.KindMalformedResponse:
			return "The backend returned data the board could not read.", CategoryGeneric
		case be.Kind == backend.KindLoadFailed, be.Kind == backend.KindMetadataUnavailable:
			if be.Err != nil {
				return Message(be.Err)
			}
			return genericMessage, CategoryGeneric
		}
	}

	scrubbed := Scrub(backend.RawText(err))
	lowered := strings.ToLower(scrubbed)
	for _, kf := range knownFailures {
		if strings.Contains(lowered, kf.marker) {
			return kf.message, kf.category
		}
	}
	if scrubbed == "" {
		return genericMessage, CategoryGeneric
	}
	return scrubbed, CategoryGeneric
}
