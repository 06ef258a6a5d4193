package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/davidcforbes/beads-kanban/internal/backend"
)

func TestScrubPaths(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		gone    []string // substrings that must not survive
		present []string // substrings that must survive
	}{
		{
			name:    "unix home path",
			raw:     "Error: cannot open /home/alice/projects/secret/.beads/beads.db",
			gone:    []string{"/home/alice", "secret"},
			present: []string{"Error: cannot open"},
		},
		{
			name:    "usr path",
			raw:     "panic at /usr/local/lib/bd/runtime",
			gone:    []string{"/usr/local"},
			present: []string{"panic at"},
		},
		{
			name:    "windows drive path",
			raw:     `open C:\Users\bob\AppData\beads.db: access denied`,
			gone:    []string{`C:\Users\bob`},
			present: []string{"access denied"},
		},
		{
			name: "unc path",
			raw:  `cannot reach \\fileserver\share\beads.db`,
			gone: []string{`\\fileserver`},
		},
		{
			name:    "bare file token",
			raw:     "while reading issues.jsonl the parser failed",
			gone:    []string{"issues.jsonl"},
			present: []string{"the parser failed", "[FILE]"},
		},
		{
			name:    "macos users path",
			raw:     "no config at /Users/carol/.beads/config.yaml",
			gone:    []string{"/Users/carol"},
			present: []string{"no config at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Scrub(tt.raw)
			for _, s := range tt.gone {
				if strings.Contains(got, s) {
					t.Errorf("Scrub(%q) = %q, still contains %q", tt.raw, got, s)
				}
			}
			for _, s := range tt.present {
				if !strings.Contains(got, s) {
					t.Errorf("Scrub(%q) = %q, lost %q", tt.raw, got, s)
				}
			}
		})
	}
}

func TestScrubStackLines(t *testing.T) {
	raw := "TypeError: cannot read field\n    at processColumn (internal)\n    at async loadPage\nplain trailing line"
	got := Scrub(raw)
	if strings.Contains(got, "at processColumn") || strings.Contains(got, "at async") {
		t.Errorf("stack frames survived: %q", got)
	}
	if !strings.Contains(got, "plain trailing line") {
		t.Errorf("non-stack line lost: %q", got)
	}
}

func TestMessageKnownFailures(t *testing.T) {
	tests := []struct {
		stderr   string
		category Category
	}{
		{"Error: no beads database found", CategoryNotFound},
		{"open config: no such file or directory", CategoryNotFound},
		{"ENOENT: missing file", CategoryNotFound},
		{"mkdir: permission denied", CategoryPermission},
		{"EACCES on socket", CategoryPermission},
		{"sqlite: database is locked", CategoryBusy},
		{"dial unix: connection refused", CategoryConnection},
		{"write: broken pipe", CategoryConnection},
		{"Error: issue not found: bd-999", CategoryNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.stderr, func(t *testing.T) {
			err := &backend.Error{Kind: backend.KindBackend, Op: "list", Stderr: tt.stderr}
			msg, cat := Message(err)
			if cat != tt.category {
				t.Errorf("category = %q, want %q (msg %q)", cat, tt.category, msg)
			}
			if msg == "" || strings.Contains(msg, tt.stderr) {
				t.Errorf("message not mapped: %q", msg)
			}
		})
	}
}

func TestMessageValidationPassesVerbatim(t *testing.T) {
	err := &backend.Error{
		Kind:   backend.KindInvalidIdentifier,
		Detail: `invalid issue ID "x;y" (expected prefix-suffix, e.g. bd-a3f8e9 or myrepo.bd-42)`,
	}
	msg, cat := Message(err)
	if cat != CategoryValidation {
		t.Errorf("category = %q", cat)
	}
	if msg != err.Detail {
		t.Errorf("validation message rewritten: %q", msg)
	}
}

func TestMessageKinds(t *testing.T) {
	if msg, cat := Message(&backend.Error{Kind: backend.KindTimeout, Op: "update"}); cat != CategoryTimeout || !strings.Contains(msg, "Refresh") {
		t.Errorf("timeout → (%q, %q)", msg, cat)
	}
	if msg, cat := Message(&backend.Error{Kind: backend.KindConnectionLost, Op: "list"}); cat != CategoryConnection || !strings.Contains(msg, "PATH") {
		t.Errorf("connection lost → (%q, %q)", msg, cat)
	}
	if msg, cat := Message(&backend.Error{Kind: backend.KindMalformedResponse, Op: "list", Detail: "/home/x/dump"}); cat != CategoryGeneric || strings.Contains(msg, "/home") {
		t.Errorf("malformed → (%q, %q)", msg, cat)
	}
}

func TestMessageUnwrapsLoadFailures(t *testing.T) {
	cause := &backend.Error{Kind: backend.KindBackend, Op: "list", Stderr: "sqlite: database is locked"}
	wrapped := &backend.Error{Kind: backend.KindLoadFailed, Op: "list", Err: cause}
	msg, cat := Message(wrapped)
	if cat != CategoryBusy {
		t.Errorf("category = %q (msg %q)", cat, msg)
	}
}

func TestMessageFallbacks(t *testing.T) {
	msg, cat := Message(errors.New("   "))
	if cat != CategoryGeneric || msg != genericMessage {
		t.Errorf("blank error → (%q, %q)", msg, cat)
	}

	msg, cat = Message(errors.New("backend exploded in a novel way"))
	if cat != CategoryGeneric || msg != "backend exploded in a novel way" {
		t.Errorf("unknown error → (%q, %q)", msg, cat)
	}

	msg, cat = Message(nil)
	if msg != "" || cat != CategoryGeneric {
		t.Errorf("nil error → (%q, %q)", msg, cat)
	}
}

// Scrubbed output never contains a well-known absolute path, whatever
// surrounds it in the raw text.
func TestScrubPathProperty(t *testing.T) {
	roots := []string{"/home", "/usr", "/etc", "/var", "/tmp", "/Users"}
	rapid.Check(t, func(t *rapid.T) {
		root := rapid.SampledFrom(roots).Draw(t, "root")
		segment := rapid.StringMatching(`[a-zA-Z0-9_.-]{1,12}`).Draw(t, "segment")
		prefix := rapid.StringMatching(`[ -~]{0,20}`).Draw(t, "prefix")
		path := fmt.Sprintf("%s/%s/beads.db", root, segment)
		raw := fmt.Sprintf("%s open %s: failed", prefix, path)

		got := Scrub(raw)
		if strings.Contains(got, path) {
			t.Fatalf("Scrub(%q) = %q, path survived", raw, got)
		}
	})
}
