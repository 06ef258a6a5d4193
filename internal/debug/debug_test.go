package debug

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// setFlags overrides the package flags for one test and restores them on
// cleanup. Tests touching these globals must not run in parallel.
func setFlags(t *testing.T, debug, verbose, quiet bool) {
	t.Helper()
	oldEnabled, oldVerbose, oldQuiet := enabled, verboseMode, quietMode
	t.Cleanup(func() {
		enabled, verboseMode, quietMode = oldEnabled, oldVerbose, oldQuiet
	})
	enabled, verboseMode, quietMode = debug, verbose, quiet
}

// captureStream redirects *stream (os.Stdout or os.Stderr) into a pipe
// and returns everything written during fn.
func captureStream(t *testing.T, stream **os.File, fn func()) string {
	t.Helper()
	old := *stream
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe: %v", err)
	}
	*stream = w
	defer func() { *stream = old }()

	fn()

	w.Close()
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestEnabled(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		verbose bool
		want    bool
	}{
		{"both off", false, false, false},
		{"debug env", true, false, true},
		{"verbose flag", false, true, true},
		{"both on", true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.debug, tt.verbose, false)
			if got := Enabled(); got != tt.want {
				t.Errorf("Enabled() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetVerbose(t *testing.T) {
	setFlags(t, false, false, false)

	SetVerbose(true)
	if !Enabled() {
		t.Error("Enabled() = false after SetVerbose(true)")
	}

	SetVerbose(false)
	if Enabled() {
		t.Error("Enabled() = true after SetVerbose(false)")
	}
}

func TestSetQuiet(t *testing.T) {
	setFlags(t, false, false, false)

	if IsQuiet() {
		t.Error("IsQuiet() = true before SetQuiet")
	}

	SetQuiet(true)
	if !IsQuiet() {
		t.Error("IsQuiet() = false after SetQuiet(true)")
	}

	SetQuiet(false)
	if IsQuiet() {
		t.Error("IsQuiet() = true after SetQuiet(false)")
	}
}

func TestLogf(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		verbose bool
		want    string
	}{
		{"debug env", true, false, "watch fired for issues.jsonl\n"},
		{"verbose flag", false, true, "watch fired for issues.jsonl\n"},
		{"silent by default", false, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.debug, tt.verbose, false)
			got := captureStream(t, &os.Stderr, func() {
				Logf("watch fired for %s\n", "issues.jsonl")
			})
			if got != tt.want {
				t.Errorf("Logf stderr = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintf(t *testing.T) {
	tests := []struct {
		name  string
		debug bool
		want  string
	}{
		{"enabled", true, "cache hit for column ready\n"},
		{"disabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, tt.debug, false, false)
			got := captureStream(t, &os.Stdout, func() {
				Printf("cache hit for column %s\n", "ready")
			})
			if got != tt.want {
				t.Errorf("Printf stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintNormal(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"normal mode", false, "moved bd-3 to closed\n"},
		{"quiet mode", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, false, false, tt.quiet)
			got := captureStream(t, &os.Stdout, func() {
				PrintNormal("moved %s to %s\n", "bd-3", "closed")
			})
			if got != tt.want {
				t.Errorf("PrintNormal stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrintlnNormal(t *testing.T) {
	tests := []struct {
		name  string
		quiet bool
		want  string
	}{
		{"normal mode", false, "board refreshed\n"},
		{"quiet mode", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFlags(t, false, false, tt.quiet)
			got := captureStream(t, &os.Stdout, func() {
				PrintlnNormal("board", "refreshed")
			})
			if got != tt.want {
				t.Errorf("PrintlnNormal stdout = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLogMutation(t *testing.T) {
	dir := t.TempDir()
	beadsDir := filepath.Join(dir, ".beads")
	if err := os.MkdirAll(beadsDir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BEADS_DIR", beadsDir)
	t.Setenv("BD_ACTOR", "tester")

	LogMutation("move", "bd-42", "in_progress -> closed")
	LogMutation("comment", "", "added note")

	data, err := os.ReadFile(filepath.Join(beadsDir, "kanban-events.log"))
	if err != nil {
		t.Fatalf("reading event log: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2", len(lines))
	}

	first := strings.Split(lines[0], "|")
	if len(first) != 5 {
		t.Fatalf("got %d fields, want 5: %q", len(first), lines[0])
	}
	if _, err := time.Parse(time.RFC3339, first[0]); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", first[0], err)
	}
	if first[1] != "move" || first[2] != "bd-42" || first[3] != "tester" || first[4] != "in_progress -> closed" {
		t.Errorf("unexpected fields: %q", lines[0])
	}

	second := strings.Split(lines[1], "|")
	if second[2] != "none" {
		t.Errorf("empty issue ID should log as none, got %q", second[2])
	}
}

func TestLogMutationAsExplicitActor(t *testing.T) {
	dir := t.TempDir()
	beadsDir := filepath.Join(dir, ".beads")
	if err := os.MkdirAll(beadsDir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BEADS_DIR", beadsDir)
	t.Setenv("BD_ACTOR", "env-actor")

	LogMutationAs("close", "bd-7", "alice", "duplicate")

	data, err := os.ReadFile(filepath.Join(beadsDir, "kanban-events.log"))
	if err != nil {
		t.Fatalf("reading event log: %v", err)
	}
	fields := strings.Split(strings.TrimSpace(string(data)), "|")
	if fields[3] != "alice" {
		t.Errorf("explicit actor should win over BD_ACTOR, got %q", fields[3])
	}
}

func TestLogMutationActorFallback(t *testing.T) {
	dir := t.TempDir()
	beadsDir := filepath.Join(dir, ".beads")
	if err := os.MkdirAll(beadsDir, 0755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("BEADS_DIR", beadsDir)
	t.Setenv("BD_ACTOR", "")
	t.Setenv("USER", "fallback-user")

	LogMutation("update", "bd-9", "priority 2 -> 1")

	data, err := os.ReadFile(filepath.Join(beadsDir, "kanban-events.log"))
	if err != nil {
		t.Fatalf("reading event log: %v", err)
	}
	fields := strings.Split(strings.TrimSpace(string(data)), "|")
	if fields[3] != "fallback-user" {
		t.Errorf("actor should fall back to $USER, got %q", fields[3])
	}
}

func TestLogMutationNoWorkspace(t *testing.T) {
	t.Setenv("BEADS_DIR", "")
	t.Chdir(t.TempDir())

	// Should not panic or create files outside a workspace.
	LogMutation("move", "bd-1", "details")
}
