package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/davidcforbes/beads-kanban/internal/sanitize"
)

// outputJSON outputs data as pretty-printed JSON to stdout.
func outputJSON(v interface{}) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// outputJSONError outputs an error object to stderr and exits with
// code 1. The category mirrors the HTTP surface so scripted callers
// can branch the same way in both places.
func outputJSONError(message, category string) {
	errObj := map[string]string{"error": message}
	if category != "" {
		errObj["category"] = category
	}
	encoder := json.NewEncoder(os.Stderr)
	encoder.SetIndent("", "  ")
	_ = encoder.Encode(errObj)
	os.Exit(1)
}

// FatalError writes an error message to stderr and exits with code 1.
// Use this for failures detected before any backend call: bad flags,
// unparseable input, missing arguments.
func FatalError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// FatalErrorWithHint writes an error message with a hint to stderr and
// exits.
func FatalErrorWithHint(message, hint string) {
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
	fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	os.Exit(1)
}

// WarnError writes a warning to stderr and returns. For optional
// operations whose failure should not stop the command.
func WarnError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
}

// exitBoardError surfaces a board/backend failure and exits with code
// 1. Everything routes through the sanitizer: validation messages pass
// verbatim, backend stderr gets scrubbed to a stable message.
func exitBoardError(err error) {
	msg, category := sanitize.Message(err)
	if jsonOutput {
		outputJSONError(msg, string(category))
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	os.Exit(1)
}
