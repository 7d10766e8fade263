// Package run holds the externally visible state of the splitter: the
// latest status snapshot and the recent timing events.
package run

import (
	"encoding/json"
	"time"

	"github.com/airsplit/airsplit/internal/autosplit"
	"github.com/airsplit/airsplit/internal/timer"
)

// EventType classifies timer actions taken by the splitter.
type EventType int

const (
	EventStart EventType = iota
	EventSplit
	EventReset
)

var eventNames = map[EventType]string{
	EventStart: "start",
	EventSplit: "split",
	EventReset: "reset",
}

var eventFromName = map[string]EventType{
	"start": EventStart,
	"split": EventSplit,
	"reset": EventReset,
}

func (e EventType) String() string {
	if s, ok := eventNames[e]; ok {
		return s
	}
	return "unknown"
}

func (e EventType) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.String())
}

func (e *EventType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if v, ok := eventFromName[s]; ok {
		*e = v
	}
	return nil
}

// Event is one timer action. Zone is the act that was completed for a
// split, and the current act otherwise.
type Event struct {
	Type EventType      `json:"type"`
	Zone autosplit.Zone `json:"zone"`
	At   time.Time      `json:"at"`
}

// Health summarizes memory read reliability.
type Health string

const (
	HealthHealthy  Health = "healthy"
	HealthDegraded Health = "degraded"
)

// Status is the per-tick snapshot published to clients.
type Status struct {
	Attached     bool               `json:"attached"`
	Process      string             `json:"process,omitempty"`
	PID          int                `json:"pid,omitempty"`
	Base         uint64             `json:"base,omitempty"`
	Watchers     autosplit.Snapshot `json:"watchers"`
	Timer        timer.Snapshot     `json:"timer"`
	Health       Health             `json:"health"`
	ReadFailures int                `json:"readFailures"`
	Attachments  int                `json:"attachments"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// Clone returns a copy that shares no slices with s.
func (s *Status) Clone() *Status {
	c := *s
	if s.Timer.Segments != nil {
		c.Timer.Segments = append([]timer.Segment(nil), s.Timer.Segments...)
	}
	return &c
}
