package ui

import (
	"charm.land/glamour/v2"
)

// markdownWrapCap keeps rendered prose readable on wide terminals.
const markdownWrapCap = 100

// RenderMarkdown renders a card body through glamour. Falls back to
// the raw text in agent mode, when color is off, or when rendering
// fails. Wrap width follows the terminal, capped at markdownWrapCap.
func RenderMarkdown(markdown string) string {
	if IsAgentMode() || !ShouldUseColor() {
		return markdown
	}

	wrapWidth := TerminalWidth(80)
	if wrapWidth > markdownWrapCap {
		wrapWidth = markdownWrapCap
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
