package ui

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Truncation defaults for card body fields.
const (
	DefaultMaxLines     = 15 // lines shown before a body is elided
	DefaultContextLines = 5  // lines kept at each end when eliding
)

// TruncateLines elides the middle of long text, keeping contextLines
// at each end with a hidden-line marker between. Text at or under
// maxLines comes back unchanged.
func TruncateLines(text string, maxLines, contextLines int) string {
	if text == "" {
		return text
	}

	lines := strings.Split(text, "\n")
	total := len(lines)
	if total <= maxLines {
		return text
	}

	if contextLines < 1 {
		contextLines = DefaultContextLines
	}
	// Not enough room for head+marker+tail: hard cut at maxLines.
	if maxLines < contextLines*2+3 {
		return strings.Join(lines[:maxLines], "\n") + "\n..."
	}

	hidden := total - contextLines*2
	rule := RenderMuted(strings.Repeat("─", 40))

	var out strings.Builder
	out.WriteString(strings.Join(lines[:contextLines], "\n"))
	out.WriteString("\n")
	out.WriteString(rule)
	out.WriteString("\n")
	out.WriteString(RenderMuted("... (" + strconv.Itoa(hidden) + " lines hidden, use --full to see all) ..."))
	out.WriteString("\n")
	out.WriteString(rule)
	out.WriteString("\n")
	out.WriteString(strings.Join(lines[total-contextLines:], "\n"))
	return out.String()
}

// TruncateSimple cuts text to maxLen runes with a "..." suffix.
func TruncateSimple(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(text)
	return string(runes[:maxLen-3]) + "..."
}

// WrapText wraps at word boundaries to fit maxWidth, preserving the
// line breaks already present.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}

	var out strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(wrapLine(line, maxWidth))
	}
	return out.String()
}

// wrapLine rewraps one line. A word longer than maxWidth stays whole
// on its own line rather than being split mid-word.
func wrapLine(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}

	var out strings.Builder
	width := 0
	for _, word := range strings.Fields(line) {
		wordLen := utf8.RuneCountInString(word)
		switch {
		case width == 0:
			out.WriteString(word)
			width = wordLen
		case width+1+wordLen <= maxWidth:
			out.WriteString(" ")
			out.WriteString(word)
			width += 1 + wordLen
		default:
			out.WriteString("\n")
			out.WriteString(word)
			width = wordLen
		}
	}
	return out.String()
}

// ShouldTruncate reports whether text exceeds either threshold. Zero
// disables a threshold.
func ShouldTruncate(text string, maxLines, maxChars int) bool {
	if maxChars > 0 && utf8.RuneCountInString(text) > maxChars {
		return true
	}
	if maxLines > 0 && strings.Count(text, "\n")+1 > maxLines {
		return true
	}
	return false
}
