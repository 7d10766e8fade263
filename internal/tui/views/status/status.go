package status

import (
	"fmt"

	"github.com/airsplit/airsplit/internal/tui/client"
	"github.com/airsplit/airsplit/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

// Model holds the status bar state.
type Model struct {
	Connected bool
	Status    *client.Status
	Width     int
}

// New creates a status bar model.
func New() Model {
	return Model{}
}

// View renders the status bar.
func (m Model) View() string {
	width := m.Width
	if width < 40 {
		width = 40
	}

	var connStr string
	if m.Connected {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorHealthy).Render("● Connected")
	} else {
		connStr = lipgloss.NewStyle().Foreground(theme.ColorDanger).Render("○ Connecting...")
	}

	sep := lipgloss.NewStyle().Foreground(theme.ColorBorder).Render(" | ")
	content := connStr

	if st := m.Status; st != nil {
		var game string
		if st.Attached {
			game = lipgloss.NewStyle().Foreground(theme.ColorHealthy).
				Render(fmt.Sprintf("%s (pid %d)", st.Process, st.PID))
		} else {
			game = theme.StyleDimmed.Render("waiting for game")
		}

		state := string(st.Timer.State)
		timerStr := lipgloss.NewStyle().Foreground(theme.TimerColor(state)).
			Render(theme.TimerGlyph(state) + " " + state)

		var color lipgloss.Color
		switch st.Health {
		case client.HealthHealthy:
			color = theme.ColorHealthy
		case client.HealthDegraded:
			color = theme.ColorWarning
		default:
			color = theme.ColorDimmed
		}
		health := lipgloss.NewStyle().Foreground(color).
			Render(fmt.Sprintf("memory: %s", st.Health))

		content += sep + game + sep + timerStr + sep + health
	}

	bar := lipgloss.NewStyle().
		Width(width).
		Padding(0, 1).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorBorder).
		Render(content)

	return bar
}
