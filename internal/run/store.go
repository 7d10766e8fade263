package run

import "sync"

// DefaultEventCapacity bounds the recent-event history.
const DefaultEventCapacity = 64

type Store struct {
	mu     sync.RWMutex
	status Status
	events []Event // ring, oldest first once full
	next   int
	full   bool
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultEventCapacity
	}
	return &Store{
		status: Status{Health: HealthHealthy},
		events: make([]Event, capacity),
	}
}

// Status returns a copy of the latest status.
func (s *Store) Status() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status.Clone()
}

func (s *Store) SetStatus(st *Status) {
	c := st.Clone()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = *c
}

func (s *Store) AddEvent(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[s.next] = ev
	s.next = (s.next + 1) % len(s.events)
	if s.next == 0 {
		s.full = true
	}
}

// Events returns the retained events, oldest first.
func (s *Store) Events() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.full {
		return append([]Event(nil), s.events[:s.next]...)
	}
	out := make([]Event, 0, len(s.events))
	out = append(out, s.events[s.next:]...)
	return append(out, s.events[:s.next]...)
}
