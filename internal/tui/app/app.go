package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/airsplit/airsplit/internal/tui/client"
	"github.com/airsplit/airsplit/internal/tui/theme"
	"github.com/airsplit/airsplit/internal/tui/views/events"
	"github.com/airsplit/airsplit/internal/tui/views/splits"
	"github.com/airsplit/airsplit/internal/tui/views/status"
	"github.com/airsplit/airsplit/internal/tui/views/watchers"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// settingsMsg carries the result of GET /api/settings.
type settingsMsg struct {
	settings []client.Setting
	err      error
}

// actionMsg carries the result of a manual timer action.
type actionMsg struct {
	action string
	err    error
}

// Model is the root Bubble Tea model.
type Model struct {
	ws     *client.WSClient
	http   *client.HTTPClient
	ctx    context.Context
	cancel context.CancelFunc

	keys   KeyMap
	width  int
	height int

	status      *client.Status
	attachments int       // attachment count the settings were loaded for
	lastEventAt time.Time // newest event already in the log

	// Sub-views.
	statusBar    status.Model
	splits       splits.Model
	watchers     watchers.Model
	events       events.Model
	showWatchers bool

	// Connection state.
	connected bool
}

// New creates the root model.
func New(ws *client.WSClient, http *client.HTTPClient) Model {
	ctx, cancel := context.WithCancel(context.Background())
	return Model{
		ws:        ws,
		http:      http,
		ctx:       ctx,
		cancel:    cancel,
		keys:      DefaultKeyMap(),
		statusBar: status.New(),
		splits:    splits.New(),
		watchers:  watchers.New(),
		events:    events.New(),
	}
}

// Init starts the WebSocket connection.
func (m Model) Init() tea.Cmd {
	return m.ws.Listen(m.ctx)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.statusBar.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case client.WSConnectedMsg:
		m.connected = true
		m.statusBar.Connected = true
		m.events.Add("ws", "connected")
		return m, tea.Batch(m.ws.ReadLoop(m.ctx), m.fetchSettings())

	case client.WSDisconnectedMsg:
		m.connected = false
		m.statusBar.Connected = false
		if msg.Err != nil {
			m.events.Add("ws", fmt.Sprintf("disconnected: %v", msg.Err))
		}
		return m, m.ws.Listen(m.ctx)

	case client.WSSnapshotMsg:
		cmd := m.setStatus(msg.Payload.Status)
		for _, ev := range msg.Payload.Events {
			m.addEvent(ev)
		}
		return m, tea.Batch(m.ws.ReadLoop(m.ctx), cmd)

	case client.WSStatusMsg:
		cmd := m.setStatus(msg.Payload.Status)
		return m, tea.Batch(m.ws.ReadLoop(m.ctx), cmd)

	case client.WSEventMsg:
		m.addEvent(msg.Payload.Event)
		return m, m.ws.ReadLoop(m.ctx)

	case client.WSErrorMsg:
		m.events.Add("err", msg.Payload.Message)
		return m, m.ws.ReadLoop(m.ctx)

	case settingsMsg:
		if msg.err != nil {
			m.events.Add("err", fmt.Sprintf("settings: %v", msg.err))
			return m, nil
		}
		m.splits.SetSettings(msg.settings)
		m.watchers.SetSettings(msg.settings)
		return m, nil

	case actionMsg:
		if errors.Is(msg.err, client.ErrHostControlled) {
			m.events.Add("err", msg.action+": the timer is controlled by its host")
		} else if msg.err != nil {
			m.events.Add("err", fmt.Sprintf("%s: %v", msg.action, msg.err))
		}
		return m, nil
	}

	return m, nil
}

// setStatus records st and returns a settings reload when the daemon has
// attached to a new process, since settings are snapshotted per attachment.
func (m *Model) setStatus(st *client.Status) tea.Cmd {
	if st == nil {
		return nil
	}
	m.status = st
	m.statusBar.Status = st
	m.splits.Timer = st.Timer
	m.watchers.Status = st
	if st.Attachments != m.attachments {
		m.attachments = st.Attachments
		return m.fetchSettings()
	}
	return nil
}

// addEvent appends ev unless a periodic snapshot already delivered it.
func (m *Model) addEvent(ev client.Event) {
	if !ev.At.After(m.lastEventAt) {
		return
	}
	m.lastEventAt = ev.At
	msg := m.watchers.Labels[ev.Zone]
	if msg == "" {
		msg = ev.Zone
	}
	m.events.AddAt(ev.At, ev.Type, msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		m.events.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.events.ScrollDown(1)
		return m, nil

	case key.Matches(msg, m.keys.Watchers):
		m.showWatchers = !m.showWatchers
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.fetchSettings()

	case key.Matches(msg, m.keys.Start):
		return m, m.timerAction("start")

	case key.Matches(msg, m.keys.Split):
		return m, m.timerAction("split")

	case key.Matches(msg, m.keys.Reset):
		return m, m.timerAction("reset")

	case key.Matches(msg, m.keys.Pause):
		if m.status != nil && m.status.Timer.State == client.TimerPaused {
			return m, m.timerAction("resume")
		}
		return m, m.timerAction("pause")
	}

	return m, nil
}

func (m Model) fetchSettings() tea.Cmd {
	h := m.http
	return func() tea.Msg {
		settings, err := h.GetSettings()
		return settingsMsg{settings: settings, err: err}
	}
}

func (m Model) timerAction(action string) tea.Cmd {
	h := m.http
	return func() tea.Msg {
		return actionMsg{action: action, err: h.TimerAction(action)}
	}
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Initializing..."
	}

	if !m.connected {
		return m.renderDisconnected()
	}

	m.splits.Width = m.width
	m.watchers.Width = m.width

	sections := []string{
		m.statusBar.View(),
		m.splits.View(),
	}
	if m.showWatchers {
		sections = append(sections, m.watchers.View())
	}

	used := lipgloss.Height(lipgloss.JoinVertical(lipgloss.Left, sections...)) + 1
	sections = append(sections,
		m.events.View(m.width, m.height-used),
		theme.StyleDimmed.Render("  s:start  space:split  r:reset  p:pause  w:watchers  j/k:scroll  q:quit"),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderDisconnected() string {
	box := lipgloss.NewStyle().
		Padding(1, 4).
		BorderStyle(lipgloss.DoubleBorder()).
		BorderForeground(theme.ColorDanger).
		Render(lipgloss.JoinVertical(lipgloss.Center,
			lipgloss.NewStyle().Bold(true).Foreground(theme.ColorDanger).Render("DISCONNECTED"),
			theme.StyleDimmed.Render("Reconnecting to the airsplit daemon..."),
		))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
