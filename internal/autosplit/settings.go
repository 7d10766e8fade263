package autosplit

// Toggle keys that are not tied to a zone.
const (
	KeyStartNoSave      = "start_nosave"
	KeyStartCleanSave   = "start_clean_save"
	KeyStartNoCleanSave = "start_no_clean_save"
	KeyStartNewGamePlus = "start_new_game_plus"
	KeyReset            = "reset"
)

// Toggle describes one boolean option exposed to the user.
type Toggle struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// Settings is the run configuration. It is read-only while attached.
type Settings struct {
	StartNoSave      bool
	StartCleanSave   bool
	StartNoCleanSave bool
	StartNewGamePlus bool
	Reset            bool
	Splits           map[Zone]bool
}

// Toggles returns every option in display order: start variants, reset,
// then one split toggle per act.
func Toggles() []Toggle {
	ts := []Toggle{
		{KeyStartNoSave, "START: Auto start (No save)", true},
		{KeyStartCleanSave, "START: Auto start (Clean save)", true},
		{KeyStartNoCleanSave, "START: Auto start (Angel Island Zone - No clean save)", true},
		{KeyStartNewGamePlus, "START: Auto start (New Game+)", true},
		{KeyReset, "RESET: Auto reset", true},
	}
	for _, z := range Zones() {
		ts = append(ts, Toggle{Key: z.String(), Label: z.Label(), Default: true})
	}
	return ts
}

// DefaultSettings enables everything.
func DefaultSettings() Settings {
	return SettingsFromMap(nil)
}

// SettingsFromMap builds Settings from key/value pairs. Missing keys take
// their default and unknown keys are ignored.
func SettingsFromMap(values map[string]bool) Settings {
	get := func(t Toggle) bool {
		if v, ok := values[t.Key]; ok {
			return v
		}
		return t.Default
	}

	s := Settings{Splits: make(map[Zone]bool, Ending)}
	for _, t := range Toggles() {
		v := get(t)
		switch t.Key {
		case KeyStartNoSave:
			s.StartNoSave = v
		case KeyStartCleanSave:
			s.StartCleanSave = v
		case KeyStartNoCleanSave:
			s.StartNoCleanSave = v
		case KeyStartNewGamePlus:
			s.StartNewGamePlus = v
		case KeyReset:
			s.Reset = v
		default:
			if z, ok := ParseZone(t.Key); ok {
				s.Splits[z] = v
			}
		}
	}
	return s
}

// Map is the inverse of SettingsFromMap.
func (s Settings) Map() map[string]bool {
	m := map[string]bool{
		KeyStartNoSave:      s.StartNoSave,
		KeyStartCleanSave:   s.StartCleanSave,
		KeyStartNoCleanSave: s.StartNoCleanSave,
		KeyStartNewGamePlus: s.StartNewGamePlus,
		KeyReset:            s.Reset,
	}
	for _, z := range Zones() {
		m[z.String()] = s.Splits[z]
	}
	return m
}

// SplitEnabled reports the toggle for z. Zones without a toggle, such as
// Ending, are never enabled.
func (s Settings) SplitEnabled(z Zone) bool {
	return s.Splits[z]
}

// SplitCount is the number of enabled per-zone splits.
func (s Settings) SplitCount() int {
	n := 0
	for _, z := range Zones() {
		if s.Splits[z] {
			n++
		}
	}
	return n
}
