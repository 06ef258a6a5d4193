// Package ui provides terminal styling for board CLI output.
package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAgentMode reports whether output is being consumed by an automated
// agent rather than a human. Agents get plain text: no colors, no
// rendered markdown, no pager. Set BDK_AGENT=1 to enable.
func IsAgentMode() bool {
	return os.Getenv("BDK_AGENT") != ""
}

// ShouldUseColor determines whether to emit ANSI color codes.
// Precedence follows the informal standard: NO_COLOR always wins,
// CLICOLOR_FORCE can force color into pipes, CLICOLOR=0 opts out,
// otherwise color is tied to stdout being a terminal.
func ShouldUseColor() bool {
	if termenv.EnvNoColor() {
		return false
	}
	if force := os.Getenv("CLICOLOR_FORCE"); force != "" && force != "0" {
		return true
	}
	return IsTerminal()
}

// ShouldUseEmoji reports whether glyphs beyond ASCII are safe to print.
// BDK_NO_EMOJI opts out; otherwise tied to stdout being a terminal.
func ShouldUseEmoji() bool {
	if os.Getenv("BDK_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}

// TerminalWidth returns the stdout width in columns, or fallback when
// stdout is not a terminal or the size cannot be read.
func TerminalWidth(fallback int) int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return fallback
}

// TerminalHeight returns the stdout height in rows, or fallback when
// stdout is not a terminal or the size cannot be read.
func TerminalHeight(fallback int) int {
	if _, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && h > 0 {
		return h
	}
	return fallback
}
