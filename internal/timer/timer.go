// Package timer holds the host timer primitives the splitter drives, with an
// in-process implementation and a LiveSplit Server client.
package timer

import (
	"encoding/json"
	"time"
)

// State is the timer phase as seen by the splitter.
type State int

const (
	NotRunning State = iota
	Running
	Paused
	Ended
	// Unavailable means the backend could not be asked, for example
	// because LiveSplit is not listening.
	Unavailable
)

var stateNames = map[State]string{
	NotRunning:  "not_running",
	Running:     "running",
	Paused:      "paused",
	Ended:       "ended",
	Unavailable: "unavailable",
}

var stateFromName = map[string]State{
	"not_running": NotRunning,
	"running":     Running,
	"paused":      Paused,
	"ended":       Ended,
	"unavailable": Unavailable,
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *State) UnmarshalJSON(data []byte) error {
	var n string
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if v, ok := stateFromName[n]; ok {
		*s = v
	}
	return nil
}

// Active reports whether reset and split should be evaluated.
func (s State) Active() bool {
	return s == Running || s == Paused
}

// Timer is what the splitter needs from the host. The action methods never
// fail from the caller's point of view; backends log their own errors.
type Timer interface {
	State() State
	Start()
	Split()
	Reset()
}

// NamedSplitter is implemented by timers that label their segments.
type NamedSplitter interface {
	SplitNamed(name string)
}

// Finisher is implemented by timers that must be told which split ends the
// run. Hosts that keep their own split list end the run themselves.
type Finisher interface {
	Finish(name string)
}

// Segment is one completed split.
type Segment struct {
	Name string        `json:"name"`
	Time time.Duration `json:"time"` // elapsed run time at the split
}

// Snapshot is a point-in-time view of a timer, for display.
type Snapshot struct {
	State    State         `json:"state"`
	Elapsed  time.Duration `json:"elapsed"`
	Segments []Segment     `json:"segments,omitempty"`
}

// Snapshotter is implemented by timers that can report elapsed time and
// segments.
type Snapshotter interface {
	Snapshot() Snapshot
}
