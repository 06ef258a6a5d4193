package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/davidcforbes/beads-kanban/internal/workspace"
)

var (
	enabled     = os.Getenv("BDK_DEBUG") != ""
	verboseMode = false
	quietMode   = false
	logMutex    sync.Mutex
)

func Enabled() bool {
	return enabled || verboseMode
}

// SetVerbose enables verbose/debug output
func SetVerbose(verbose bool) {
	verboseMode = verbose
}

// SetQuiet enables quiet mode (suppress non-essential output)
func SetQuiet(quiet bool) {
	quietMode = quiet
}

// IsQuiet returns true if quiet mode is enabled
func IsQuiet() bool {
	return quietMode
}

func Logf(format string, args ...any) {
	if enabled || verboseMode {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}

func Printf(format string, args ...any) {
	if enabled || verboseMode {
		fmt.Printf(format, args...)
	}
}

// PrintNormal prints output unless quiet mode is enabled
// Use this for normal informational output that should be suppressed in quiet mode
func PrintNormal(format string, args ...any) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}

// PrintlnNormal prints a line unless quiet mode is enabled
func PrintlnNormal(args ...any) {
	if !quietMode {
		fmt.Println(args...)
	}
}

// LogMutation appends a board mutation to .beads/kanban-events.log
// Format: TIMESTAMP|ACTION|ISSUE_ID|ACTOR|DETAILS
func LogMutation(action, issueID, details string) {
	LogMutationAs(action, issueID, "", details)
}

// LogMutationAs records a mutation with an explicit actor
func LogMutationAs(action, issueID, actor, details string) {
	beadsDir := workspace.FindBeadsDir()
	if beadsDir == "" {
		// Silent fail if not in a workspace
		return
	}

	logPath := filepath.Join(beadsDir, "kanban-events.log")

	if issueID == "" {
		issueID = "none"
	}
	if actor == "" {
		actor = os.Getenv("BD_ACTOR")
		if actor == "" {
			actor = os.Getenv("USER")
			if actor == "" {
				actor = "unknown"
			}
		}
	}

	timestamp := time.Now().UTC().Format(time.RFC3339)
	entry := fmt.Sprintf("%s|%s|%s|%s|%s\n",
		timestamp, action, issueID, actor, details)

	// Thread-safe write
	logMutex.Lock()
	defer logMutex.Unlock()

	// Append to log file
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		// Silent fail - don't interrupt mutations if logging fails
		return
	}
	defer file.Close()

	file.WriteString(entry)
}
