package autosplit

// ShouldStart fires on the save select to loading transition, choosing the
// start toggle by which kind of save the run was started from.
func ShouldStart(w *Watchers, s Settings) bool {
	state, ok := w.State.Pair()
	if !ok || state.Old != StateSaveSelect || state.Current != StateLoading {
		return false
	}

	saveSelect, ok := w.SaveSelect.Pair()
	if !ok {
		return false
	}
	if saveSelect.Current == 0 {
		return s.StartNoSave
	}
	if !validSlot(saveSelect.Current) {
		return false
	}

	zoneSelect, ok := w.ZoneSelect.Pair()
	if !ok || zoneSelect.Current != 0 {
		return false
	}
	slot, ok := w.SaveSlot.Pair()
	if !ok {
		return false
	}
	switch slot.Old {
	case SlotInProgress:
		return s.StartNoCleanSave
	case SlotNewGame:
		return s.StartCleanSave
	default:
		return s.StartNewGamePlus
	}
}

// ShouldReset fires when a no-save game is loaded again, or when the
// selected save slot is wiped back to a new game.
func ShouldReset(w *Watchers, s Settings) bool {
	saveSelect, ok := w.SaveSelect.Pair()
	if !ok {
		return false
	}

	switch {
	case saveSelect.Current == 0:
		state, ok := w.State.Pair()
		if ok && state.Old == StateSaveSelect && state.Current == StateLoading {
			return s.Reset
		}
	case validSlot(saveSelect.Current) && !saveSelect.Changed():
		slot, ok := w.SaveSlot.Pair()
		if ok && slot.Old != SlotNewGame && slot.Current == SlotNewGame {
			return s.Reset
		}
	}
	return false
}

// ShouldSplit fires when an act is completed. Rules are checked in order
// and the first that applies decides.
func ShouldSplit(w *Watchers, s Settings) bool {
	zone, ok := w.Zone.Pair()
	if !ok || zone.Current == AngelIslandAct1 {
		return false
	}
	ending, ok := w.GameEnding.Pair()
	if !ok {
		return false
	}

	// Knuckles' ending is reached from Sky Sanctuary without an act change.
	if s.SplitEnabled(SkySanctuary) && zone.Current == SkySanctuary && !ending.Old && ending.Current {
		return true
	}

	bonus, ok := w.TimeBonus.Pair()
	if !ok {
		return false
	}
	endOfLevel, ok := w.EndOfLevel.Pair()
	if !ok {
		return false
	}

	// Death Egg Act 2 ends when the time bonus finishes counting down.
	if s.SplitEnabled(DeathEggAct2) && zone.Old == DeathEggAct2 && bonus.Old != 0 && bonus.Current == 0 && endOfLevel.Current {
		return true
	}

	if !zone.Changed() {
		return false
	}
	// Leaving Angel Island Act 1 also happens on a reset to the menu; only
	// a finished level counts.
	if zone.Old == AngelIslandAct1 {
		return s.SplitEnabled(AngelIslandAct1) && endOfLevel.Old
	}
	return s.SplitEnabled(zone.Old)
}

// EndsRun reports whether the current tick finishes the game: the Doomsday
// to ending transition, or Knuckles' ending in Sky Sanctuary. It does not
// consult settings; callers pair it with ShouldSplit.
func EndsRun(w *Watchers) bool {
	zone, ok := w.Zone.Pair()
	if !ok {
		return false
	}
	if zone.Old == Doomsday && zone.Current == Ending {
		return true
	}
	ending, ok := w.GameEnding.Pair()
	return ok && zone.Current == SkySanctuary && !ending.Old && ending.Current
}
