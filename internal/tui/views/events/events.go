// Package events provides a scrollable log of timer events and connection
// notices.
package events

import (
	"fmt"
	"strings"
	"time"

	"github.com/airsplit/airsplit/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

const maxEntries = 200

// Entry is a single log line.
type Entry struct {
	Time    time.Time
	Kind    string // "start", "split", "reset", "ws", "err"
	Message string
}

// Model holds the event log state.
type Model struct {
	Entries []Entry
	Offset  int // scroll offset (from bottom)
}

// New creates an empty event log.
func New() Model {
	return Model{}
}

// Add appends an entry stamped now.
func (m *Model) Add(kind, message string) {
	m.AddAt(time.Now(), kind, message)
}

// AddAt appends an entry and caps the buffer.
func (m *Model) AddAt(at time.Time, kind, message string) {
	m.Entries = append(m.Entries, Entry{
		Time:    at,
		Kind:    kind,
		Message: message,
	})
	if len(m.Entries) > maxEntries {
		m.Entries = m.Entries[len(m.Entries)-maxEntries:]
	}
	m.Offset = 0
}

// ScrollUp moves the viewport up.
func (m *Model) ScrollUp(n int) {
	m.Offset += n
	max := len(m.Entries) - 1
	if max < 0 {
		max = 0
	}
	if m.Offset > max {
		m.Offset = max
	}
}

// ScrollDown moves the viewport down.
func (m *Model) ScrollDown(n int) {
	m.Offset -= n
	if m.Offset < 0 {
		m.Offset = 0
	}
}

// View renders the most recent entries that fit in height lines.
func (m Model) View(width, height int) string {
	innerW := width - 4
	if innerW < 20 {
		innerW = 20
	}
	visibleLines := height - 3
	if visibleLines < 3 {
		visibleLines = 3
	}

	title := theme.StyleHeader.Render("EVENTS")
	if len(m.Entries) == 0 {
		body := theme.StyleDimmed.Render("  Nothing yet.")
		return theme.StyleBorder.Width(width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, title, body))
	}

	end := len(m.Entries) - m.Offset
	start := end - visibleLines
	if start < 0 {
		start = 0
	}
	if end < 0 {
		end = 0
	}

	var lines []string
	for i := start; i < end; i++ {
		e := m.Entries[i]
		tsStr := theme.StyleDimmed.Render(e.Time.Format("15:04:05"))
		kindStr := lipgloss.NewStyle().Foreground(kindToColor(e.Kind)).Width(6).Render(e.Kind)
		msgStr := e.Message
		if len(msgStr) > innerW-16 && innerW > 19 {
			msgStr = msgStr[:innerW-19] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", tsStr, kindStr, msgStr))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(lines, "\n"))
	if m.Offset > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, content,
			theme.StyleDimmed.Render(fmt.Sprintf(" ↓ %d more", m.Offset)))
	}
	return theme.StyleBorder.Width(width - 2).Render(content)
}

func kindToColor(kind string) lipgloss.Color {
	switch kind {
	case "start", "split", "reset":
		return theme.EventColor(kind)
	case "err":
		return theme.ColorDanger
	case "ws":
		return theme.ColorDimmed
	default:
		return theme.ColorDefault
	}
}
