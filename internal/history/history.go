// Package history persists attempt statistics for the local timer.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/airsplit/airsplit/internal/timer"
)

const (
	// historyVersion is bumped when the schema changes.
	historyVersion = 1

	historyFileName = "history.json"
	appDirName      = "airsplit"
)

// Stats is the persistent attempt record, stored in
// ~/.local/state/airsplit/history.json (respecting XDG_STATE_HOME).
type Stats struct {
	Version int `json:"version"`

	Attempts  int `json:"attempts"`
	Completed int `json:"completed"`

	// Best is the fastest finished run; zero until one exists.
	Best         time.Duration   `json:"best"`
	BestSegments []timer.Segment `json:"bestSegments,omitempty"`

	LastRun *Run `json:"lastRun,omitempty"`

	LastUpdated time.Time `json:"lastUpdated"`
}

// Run is one recorded attempt.
type Run struct {
	StartedAt time.Time       `json:"startedAt"`
	Finished  bool            `json:"finished"`
	Final     time.Duration   `json:"final,omitempty"`
	Segments  []timer.Segment `json:"segments"`
}

// Store handles loading and saving Stats to disk.
type Store struct {
	dir string

	mu sync.Mutex // serializes Record
}

// NewStore creates a Store rooted at dir. Pass an empty string to use the
// default XDG state path.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = defaultDir()
	}
	return &Store{dir: dir}
}

// Path returns the full path to the history file.
func (s *Store) Path() string {
	return filepath.Join(s.dir, historyFileName)
}

// Load reads stats from disk. A missing file yields empty stats.
func (s *Store) Load() (*Stats, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &Stats{Version: historyVersion}, nil
		}
		return nil, fmt.Errorf("reading history: %w", err)
	}

	var st Stats
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing history: %w", err)
	}
	return &st, nil
}

// Save writes stats using an atomic temp-file-then-rename.
func (s *Store) Save(st *Stats) error {
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}

	st.Version = historyVersion
	st.LastUpdated = time.Now().UTC()

	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.Path()); err != nil {
		return fmt.Errorf("renaming history file: %w", err)
	}
	committed = true

	return nil
}

// Record folds a finished or abandoned attempt into the stored stats.
// Attempts that never recorded a segment and never finished still count.
func (s *Store) Record(a timer.Attempt) (*Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.Load()
	if err != nil {
		return nil, err
	}
	st.apply(a)
	if err := s.Save(st); err != nil {
		return nil, err
	}
	return st, nil
}

func (st *Stats) apply(a timer.Attempt) {
	st.Attempts++
	segs := append([]timer.Segment(nil), a.Segments...)
	st.LastRun = &Run{
		StartedAt: a.StartedAt,
		Finished:  a.Finished,
		Final:     a.Final,
		Segments:  segs,
	}
	if !a.Finished {
		return
	}
	st.Completed++
	if st.Best == 0 || a.Final < st.Best {
		st.Best = a.Final
		st.BestSegments = segs
	}
}

// defaultDir returns ~/.local/state/airsplit, respecting XDG_STATE_HOME.
func defaultDir() string {
	if base := os.Getenv("XDG_STATE_HOME"); base != "" {
		return filepath.Join(base, appDirName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	return filepath.Join(home, ".local", "state", appDirName)
}
