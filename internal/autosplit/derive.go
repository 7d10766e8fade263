package autosplit

import "github.com/airsplit/airsplit/internal/memory"

// sampler reads relative to the RAM base and substitutes zero for any read
// that fails, counting the failures.
type sampler struct {
	r      memory.Reader
	base   uint64
	failed int
}

func (s *sampler) u8(off uint64) uint8 {
	v, err := memory.ReadUint8(s.r, s.base+off)
	if err != nil {
		s.failed++
		return 0
	}
	return v
}

func (s *sampler) u16be(off uint64) uint16 {
	v, err := memory.ReadUint16BE(s.r, s.base+off)
	if err != nil {
		s.failed++
		return 0
	}
	return v
}

// Derive performs one polling pass: it reads the raw fields at base, applies
// the filtering rules and pushes one sample into every watcher. It returns
// the number of reads that failed and were replaced by zero.
func Derive(r memory.Reader, base uint64, w *Watchers) int {
	s := &sampler{r: r, base: base}

	saveSelect := s.u8(OffsetSaveSelect)
	rawState := s.u8(OffsetState)
	inGame := rawState == StateInGame
	slotSelected := validSlot(saveSelect)

	// Slot data is only meaningful on the menus; in game the slot bytes are
	// rewritten continuously.
	var slotStatus uint8
	refreshSlot := !inGame && slotSelected
	if refreshSlot {
		slotStatus = s.u8(SaveSlotOffset(saveSelect))
	}

	var zoneSelect uint8
	if slotSelected {
		zoneSelect = s.u8(ZoneSelectOffset(saveSelect))
	}

	// Code 0 is also the main menu. Without the level-started flag the old
	// zone is kept so a split can still fire after returning to the menu.
	code := CompositeCode(s.u8(OffsetAct), s.u8(OffsetZone))
	zone, known := LookupZone(code)
	if code == 0 {
		zone, known = AngelIslandAct1, s.u8(OffsetLevelStarted) != 0
	}

	endOfLevel := s.u8(OffsetEndOfLevel) != 0
	gameEnding := s.u8(OffsetGameEnding) != 0
	timeBonus := s.u16be(OffsetTimeBonus)

	w.Zone.UpdateIf(known, zone, AngelIslandAct1)
	w.State.UpdateIf(!inGame, rawState, 0)
	w.EndOfLevel.Update(endOfLevel)
	w.GameEnding.Update(gameEnding)
	w.TimeBonus.Update(timeBonus)
	w.SaveSelect.Update(saveSelect)
	w.ZoneSelect.UpdateIf(slotSelected, zoneSelect, 0)
	w.SaveSlot.UpdateIf(refreshSlot, slotStatus, 0)

	return s.failed
}
