// Package ui provides terminal styling for board CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	// Semantic status colors (Ayu theme - adaptive light/dark)
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99", // ayu light muted
		Dark:  "#6c7680", // ayu dark muted
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6", // ayu light bright blue
		Dark:  "#59c2ff", // ayu dark bright blue
	}
)

// Status styles - consistent across all commands
var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// Board styles
var (
	// ColumnHeaderStyle renders column titles: "READY (23)"
	ColumnHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)

	// ColumnBoxStyle frames one board column
	ColumnBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	// CardIDStyle renders issue IDs on cards
	CardIDStyle = lipgloss.NewStyle().Foreground(ColorAccent)
)

// Status icons - consistent semantic indicators
const (
	IconPass    = "✓"
	IconWarn    = "⚠"
	IconFail    = "✗"
	IconInfo    = "ℹ"
	IconBlocked = "⊘"
	IconMore    = "…"
)

// priorityStyles maps priority 0-4 to a display style. P0 screams,
// P1 warns, the rest fade out.
var priorityStyles = []lipgloss.Style{
	lipgloss.NewStyle().Bold(true).Foreground(ColorFail),
	WarnStyle,
	AccentStyle,
	MutedStyle,
	MutedStyle,
}

// RenderPriority renders "P0".."P4" with severity coloring.
// Out-of-range priorities render unstyled.
func RenderPriority(p int) string {
	label := fmt.Sprintf("P%d", p)
	if p < 0 || p >= len(priorityStyles) {
		return label
	}
	return priorityStyles[p].Render(label)
}

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderHeader renders a section header in uppercase with accent color
func RenderHeader(s string) string {
	return ColumnHeaderStyle.Render(strings.ToUpper(s))
}

// RenderPassIcon renders the pass icon with styling
func RenderPassIcon() string {
	return PassStyle.Render(IconPass)
}

// RenderWarnIcon renders the warning icon with styling
func RenderWarnIcon() string {
	return WarnStyle.Render(IconWarn)
}

// RenderFailIcon renders the fail icon with styling
func RenderFailIcon() string {
	return FailStyle.Render(IconFail)
}
