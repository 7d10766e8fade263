// Package splits renders the split list: one row per enabled act with the
// run time at which it was completed.
package splits

import (
	"fmt"
	"strings"
	"time"

	"github.com/airsplit/airsplit/internal/tui/client"
	"github.com/airsplit/airsplit/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

// Row is one planned split.
type Row struct {
	Key   string
	Label string
}

// Model holds the split list state.
type Model struct {
	Rows  []Row
	Timer client.Timer
	Width int
}

// New creates an empty split list.
func New() Model {
	return Model{}
}

// SetSettings builds the planned rows from the daemon's settings, keeping
// enabled act toggles in display order.
func (m *Model) SetSettings(settings []client.Setting) {
	m.Rows = m.Rows[:0]
	for _, s := range settings {
		if !s.Enabled || !IsZoneKey(s.Key) {
			continue
		}
		m.Rows = append(m.Rows, Row{Key: s.Key, Label: s.Label})
	}
}

// IsZoneKey reports whether a settings key is a split toggle rather than a
// start or reset option.
func IsZoneKey(key string) bool {
	return key != "reset" && !strings.HasPrefix(key, "start_")
}

// View renders the split list.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}
	nameW := width - 28
	if nameW < 12 {
		nameW = 12
	}

	segs := m.Timer.Segments
	rows := m.Rows
	if len(rows) < len(segs) {
		// Settings not loaded yet, or changed under a running attempt.
		rows = make([]Row, len(segs))
		for i, s := range segs {
			rows[i] = Row{Label: s.Name}
		}
	}

	lines := []string{theme.StyleHeader.Render("SPLITS")}
	if len(rows) == 0 {
		lines = append(lines, theme.StyleDimmed.Render("  No splits enabled"))
	}

	active := m.Timer.State == client.TimerRunning || m.Timer.State == client.TimerPaused
	var prev time.Duration
	for i, r := range rows {
		name := r.Label
		if len(name) > nameW {
			name = name[:nameW-3] + "..."
		}

		prefix := "  "
		var timeStr, deltaStr string
		switch {
		case i < len(segs):
			timeStr = FormatDuration(segs[i].Time)
			deltaStr = "+" + FormatDuration(segs[i].Time-prev)
			prev = segs[i].Time
		case i == len(segs) && active:
			prefix = "> "
			timeStr = FormatDuration(m.Timer.Elapsed)
		default:
			timeStr = "-"
		}

		line := fmt.Sprintf("%s%-*s %11s %11s", prefix, nameW, name, deltaStr, timeStr)
		switch {
		case i < len(segs):
			line = lipgloss.NewStyle().Foreground(theme.ColorSplit).Render(line)
		case prefix != "  ":
			line = theme.StyleSelected.Render(line)
		default:
			line = theme.StyleDimmed.Render(line)
		}
		lines = append(lines, line)
	}

	clock := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.TimerColor(string(m.Timer.State))).
		Width(width - 4).
		Align(lipgloss.Right).
		Render(FormatDuration(m.Timer.Elapsed))
	lines = append(lines, "", clock)

	return theme.StyleBorder.Width(width - 2).Render(strings.Join(lines, "\n"))
}

// FormatDuration renders d as h:mm:ss.cc, dropping the hour when zero.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		return "-" + FormatDuration(-d)
	}
	cs := int64(d / (10 * time.Millisecond))
	h := cs / 360000
	m := cs / 6000 % 60
	s := cs / 100 % 60
	cs %= 100
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%02d", h, m, s, cs)
	}
	return fmt.Sprintf("%d:%02d.%02d", m, s, cs)
}
