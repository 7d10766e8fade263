package timer

import (
	"sync"
	"time"
)

// Attempt summarizes a run when the local timer is reset.
type Attempt struct {
	StartedAt time.Time     `json:"startedAt"`
	Segments  []Segment     `json:"segments"`
	Finished  bool          `json:"finished"`
	Final     time.Duration `json:"final,omitempty"`
}

// Local is an in-process timer. A run ends when its final segment is
// recorded with Finish.
type Local struct {
	mu        sync.Mutex
	now       func() time.Time
	state     State
	startedAt time.Time
	pausedAt  time.Time
	pausedFor time.Duration
	final     time.Duration
	segments  []Segment
	onAttempt func(Attempt)
}

// NewLocal returns a stopped timer.
func NewLocal() *Local {
	return &Local{now: time.Now}
}

// SetClock replaces the time source. Tests only.
func (l *Local) SetClock(now func() time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.now = now
}

// OnAttempt registers a hook called after every reset of a started run.
func (l *Local) OnAttempt(fn func(Attempt)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onAttempt = fn
}

func (l *Local) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

func (l *Local) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != NotRunning {
		return
	}
	l.state = Running
	l.startedAt = l.now()
	l.pausedFor = 0
	l.final = 0
	l.segments = nil
}

func (l *Local) Split() {
	l.SplitNamed("")
}

// SplitNamed records a segment labelled name. It is ignored unless running.
func (l *Local) SplitNamed(name string) {
	l.split(name, false)
}

// Finish records the run's last segment and ends the run.
func (l *Local) Finish(name string) {
	l.split(name, true)
}

func (l *Local) split(name string, last bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Running {
		return
	}
	at := l.elapsedLocked()
	l.segments = append(l.segments, Segment{Name: name, Time: at})
	if last {
		l.final = at
		l.state = Ended
	}
}

func (l *Local) Pause() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Running {
		return
	}
	l.pausedAt = l.now()
	l.state = Paused
}

func (l *Local) Resume() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Paused {
		return
	}
	l.pausedFor += l.now().Sub(l.pausedAt)
	l.state = Running
}

func (l *Local) Reset() {
	l.mu.Lock()
	if l.state == NotRunning {
		l.mu.Unlock()
		return
	}
	attempt := Attempt{
		StartedAt: l.startedAt,
		Segments:  l.segments,
		Finished:  l.state == Ended,
		Final:     l.final,
	}
	l.state = NotRunning
	l.segments = nil
	l.final = 0
	hook := l.onAttempt
	l.mu.Unlock()

	// called unlocked so the hook may query the timer
	if hook != nil {
		hook(attempt)
	}
}

// Elapsed returns the run time excluding pauses.
func (l *Local) Elapsed() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.elapsedLocked()
}

func (l *Local) elapsedLocked() time.Duration {
	switch l.state {
	case Running:
		return l.now().Sub(l.startedAt) - l.pausedFor
	case Paused:
		return l.pausedAt.Sub(l.startedAt) - l.pausedFor
	case Ended:
		return l.final
	default:
		return 0
	}
}

func (l *Local) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	segs := make([]Segment, len(l.segments))
	copy(segs, l.segments)
	return Snapshot{
		State:    l.state,
		Elapsed:  l.elapsedLocked(),
		Segments: segs,
	}
}
