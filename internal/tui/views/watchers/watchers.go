// Package watchers renders the raw game values the daemon derived on its
// last tick.
package watchers

import (
	"fmt"
	"strings"

	"github.com/airsplit/airsplit/internal/tui/client"
	"github.com/airsplit/airsplit/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the watcher panel state.
type Model struct {
	Status *client.Status
	Labels map[string]string // zone key -> display name
	Width  int
}

// New creates an empty watcher panel.
func New() Model {
	return Model{Labels: make(map[string]string)}
}

// SetSettings records display names for zone keys.
func (m *Model) SetSettings(settings []client.Setting) {
	for _, s := range settings {
		m.Labels[s.Key] = s.Label
	}
}

func (m Model) zoneName(key string) string {
	if l, ok := m.Labels[key]; ok {
		return l
	}
	return key
}

// View renders the watcher panel.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	lines := []string{theme.StyleHeader.Render("WATCHERS")}
	st := m.Status
	switch {
	case st == nil || !st.Attached:
		lines = append(lines, theme.StyleDimmed.Render("  Not attached"))
	case st.Base == 0:
		lines = append(lines, theme.StyleDimmed.Render("  Waiting for the game's RAM region"))
	case !st.Watchers.Ready:
		lines = append(lines, theme.StyleDimmed.Render("  No samples yet"))
	default:
		w := st.Watchers
		rows := [][2]string{
			{"zone", m.zoneName(w.Zone)},
			{"previous", m.zoneName(w.PrevZone)},
			{"state", fmt.Sprintf("0x%02x", w.State)},
			{"end of level", flag(w.EndOfLevel)},
			{"game ending", flag(w.GameEnding)},
			{"time bonus", fmt.Sprintf("%d", w.TimeBonus)},
			{"save select", fmt.Sprintf("%d", w.SaveSelect)},
			{"zone select", fmt.Sprintf("%d", w.ZoneSelect)},
			{"save slot", fmt.Sprintf("%d", w.SaveSlot)},
			{"base", fmt.Sprintf("%#x", st.Base)},
		}
		for _, r := range rows {
			lines = append(lines, fmt.Sprintf("  %s %s", theme.StyleDimmed.Width(14).Render(r[0]), r[1]))
		}
	}

	if st != nil && st.ReadFailures > 0 {
		color := theme.ColorDimmed
		if st.Health == client.HealthDegraded {
			color = theme.ColorWarning
		}
		lines = append(lines, lipgloss.NewStyle().Foreground(color).
			Render(fmt.Sprintf("  %d failed reads", st.ReadFailures)))
	}

	return theme.StyleBorder.Width(width - 2).Render(strings.Join(lines, "\n"))
}

func flag(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
