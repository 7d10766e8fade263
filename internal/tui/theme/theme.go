// Package theme provides the Lip Gloss color palette and reusable styles
// for the airsplit TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import "github.com/charmbracelet/lipgloss"

// Timer state colors.
var (
	ColorNotRunning  = lipgloss.Color("#9ca3af")
	ColorRunning     = lipgloss.Color("#22c55e")
	ColorPaused      = lipgloss.Color("#d97706")
	ColorEnded       = lipgloss.Color("#3b82f6")
	ColorUnavailable = lipgloss.Color("#dc2626")
	ColorDefault     = lipgloss.Color("#9ca3af")
)

// Event colors.
var (
	ColorStart = lipgloss.Color("#22c55e")
	ColorSplit = lipgloss.Color("#06b6d4")
	ColorReset = lipgloss.Color("#a855f7")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorHealthy = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
)

// TimerColor returns the Lip Gloss color for a timer state name.
func TimerColor(state string) lipgloss.Color {
	switch state {
	case "not_running":
		return ColorNotRunning
	case "running":
		return ColorRunning
	case "paused":
		return ColorPaused
	case "ended":
		return ColorEnded
	case "unavailable":
		return ColorUnavailable
	default:
		return ColorDefault
	}
}

// EventColor returns the Lip Gloss color for an event type.
func EventColor(typ string) lipgloss.Color {
	switch typ {
	case "start":
		return ColorStart
	case "split":
		return ColorSplit
	case "reset":
		return ColorReset
	default:
		return ColorDefault
	}
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)

	StyleDimmed = lipgloss.NewStyle().
		Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(ColorBright)
)

// TimerGlyph returns a Unicode glyph representing a timer state.
func TimerGlyph(state string) string {
	switch state {
	case "running":
		return "▶"
	case "paused":
		return "❚❚"
	case "ended":
		return "✓"
	case "unavailable":
		return "✗"
	case "not_running":
		return "○"
	default:
		return "·"
	}
}
