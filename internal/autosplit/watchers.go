package autosplit

import "github.com/airsplit/airsplit/internal/watch"

// Watchers is the full set of observed quantities for one attachment.
// Derive writes every field once per tick; the predicates only read.
type Watchers struct {
	Zone       watch.Watcher[Zone]
	State      watch.Watcher[uint8] // filtered: StateInGame never stored
	EndOfLevel watch.Watcher[bool]
	GameEnding watch.Watcher[bool]
	TimeBonus  watch.Watcher[uint16]
	SaveSelect watch.Watcher[uint8]
	ZoneSelect watch.Watcher[uint8]
	SaveSlot   watch.Watcher[uint8]
}

// NewWatchers returns an empty set.
func NewWatchers() *Watchers {
	return &Watchers{}
}

// Reset returns every watcher to the empty state.
func (w *Watchers) Reset() {
	*w = Watchers{}
}

// Snapshot is a display copy of the current samples.
type Snapshot struct {
	Ready      bool   `json:"ready"`
	Zone       Zone   `json:"zone"`
	PrevZone   Zone   `json:"prevZone"`
	State      uint8  `json:"state"`
	EndOfLevel bool   `json:"endOfLevel"`
	GameEnding bool   `json:"gameEnding"`
	TimeBonus  uint16 `json:"timeBonus"`
	SaveSelect uint8  `json:"saveSelect"`
	ZoneSelect uint8  `json:"zoneSelect"`
	SaveSlot   uint8  `json:"saveSlot"`
}

// Snapshot copies the current samples. Ready is false until every watcher
// holds a previous/current pair.
func (w *Watchers) Snapshot() Snapshot {
	var s Snapshot
	s.Zone, _ = w.Zone.Current()
	s.PrevZone = s.Zone
	if p, ok := w.Zone.Pair(); ok {
		s.PrevZone = p.Old
	}
	s.State, _ = w.State.Current()
	s.EndOfLevel, _ = w.EndOfLevel.Current()
	s.GameEnding, _ = w.GameEnding.Current()
	s.TimeBonus, _ = w.TimeBonus.Current()
	s.SaveSelect, _ = w.SaveSelect.Current()
	s.ZoneSelect, _ = w.ZoneSelect.Current()
	s.SaveSlot, _ = w.SaveSlot.Current()
	_, s.Ready = w.SaveSlot.Pair()
	return s
}
