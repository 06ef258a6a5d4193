package ui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// PagerOptions controls pager behavior for long card output.
type PagerOptions struct {
	// NoPager prints directly regardless of content length.
	NoPager bool
}

// shouldUsePager gates the pager: off when asked (flag or
// BDK_NO_PAGER), off for agents, off when stdout is piped.
func shouldUsePager(opts PagerOptions) bool {
	if opts.NoPager || os.Getenv("BDK_NO_PAGER") != "" {
		return false
	}
	if IsAgentMode() {
		return false
	}
	return IsTerminal()
}

// pagerCommand resolves the pager: BDK_PAGER, then PAGER, then less.
func pagerCommand() string {
	if pager := os.Getenv("BDK_PAGER"); pager != "" {
		return pager
	}
	if pager := os.Getenv("PAGER"); pager != "" {
		return pager
	}
	return "less"
}

// ToPager sends content through the user's pager when it would scroll
// off screen, and prints it directly otherwise.
func ToPager(content string, opts PagerOptions) error {
	if !shouldUsePager(opts) {
		fmt.Print(content)
		return nil
	}

	// Short output skips the pager: one line is reserved for the prompt.
	if rows := TerminalHeight(0); rows > 0 && lineCount(content) <= rows-1 {
		fmt.Print(content)
		return nil
	}

	// The command may carry arguments, e.g. "less -R".
	parts := strings.Fields(pagerCommand())
	if len(parts) == 0 {
		fmt.Print(content)
		return nil
	}

	cmd := exec.Command(parts[0], parts[1:]...) // #nosec G204 - pager command is user-configurable by design
	cmd.Stdin = strings.NewReader(content)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	// Default less to -R (keep ANSI colors), -F (quit if it fits),
	// -X (no screen clear on exit) unless the user set their own.
	cmd.Env = os.Environ()
	if os.Getenv("LESS") == "" {
		cmd.Env = append(cmd.Env, "LESS=-RFX")
	}

	return cmd.Run()
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return strings.Count(content, "\n") + 1
}
