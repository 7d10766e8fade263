// Package client provides WebSocket and HTTP clients for the airsplit daemon.
// Types mirror the daemon wire protocol without importing daemon packages.
package client

import (
	"encoding/json"
	"time"
)

// MessageType identifies the kind of WebSocket message.
type MessageType string

const (
	MsgSnapshot MessageType = "snapshot"
	MsgStatus   MessageType = "status"
	MsgEvent    MessageType = "event"
	MsgError    MessageType = "error"
)

// WSMessage is the envelope for all WebSocket messages.
type WSMessage struct {
	Type    MessageType     `json:"type"`
	Seq     uint64          `json:"seq"`
	Payload json.RawMessage `json:"payload"`
}

// TimerState mirrors the daemon's timer state names.
type TimerState string

const (
	TimerNotRunning  TimerState = "not_running"
	TimerRunning     TimerState = "running"
	TimerPaused      TimerState = "paused"
	TimerEnded       TimerState = "ended"
	TimerUnavailable TimerState = "unavailable"
)

// Health mirrors the daemon's memory read health.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthDegraded Health = "degraded"
)

// Segment is one completed split.
type Segment struct {
	Name string        `json:"name"`
	Time time.Duration `json:"time"`
}

// Timer is the daemon's view of the timer.
type Timer struct {
	State    TimerState    `json:"state"`
	Elapsed  time.Duration `json:"elapsed"`
	Segments []Segment     `json:"segments,omitempty"`
}

// Watchers holds the latest derived game values. Zones are keys such as
// "ice_cap_1"; use the settings list to resolve display names.
type Watchers struct {
	Ready      bool   `json:"ready"`
	Zone       string `json:"zone"`
	PrevZone   string `json:"prevZone"`
	State      uint8  `json:"state"`
	EndOfLevel bool   `json:"endOfLevel"`
	GameEnding bool   `json:"gameEnding"`
	TimeBonus  uint16 `json:"timeBonus"`
	SaveSelect uint8  `json:"saveSelect"`
	ZoneSelect uint8  `json:"zoneSelect"`
	SaveSlot   uint8  `json:"saveSlot"`
}

// Status mirrors run.Status.
type Status struct {
	Attached     bool      `json:"attached"`
	Process      string    `json:"process,omitempty"`
	PID          int       `json:"pid,omitempty"`
	Base         uint64    `json:"base,omitempty"`
	Watchers     Watchers  `json:"watchers"`
	Timer        Timer     `json:"timer"`
	Health       Health    `json:"health"`
	ReadFailures int       `json:"readFailures"`
	Attachments  int       `json:"attachments"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Event is one start, split or reset taken by the daemon.
type Event struct {
	Type string    `json:"type"`
	Zone string    `json:"zone"`
	At   time.Time `json:"at"`
}

// SnapshotPayload is sent once on connect and periodically after.
type SnapshotPayload struct {
	Status *Status `json:"status"`
	Events []Event `json:"events"`
}

// StatusPayload carries the latest per-tick status.
type StatusPayload struct {
	Status *Status `json:"status"`
}

// EventPayload wraps one timer event.
type EventPayload struct {
	Event Event `json:"event"`
}

// ErrorPayload carries a daemon-side problem report.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Setting is one entry of GET /api/settings.
type Setting struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
	Enabled bool   `json:"enabled"`
}
