package autosplit

import (
	"testing"

	"github.com/airsplit/airsplit/internal/memory"
)

const testRegionStart = 0x10000000

// testGame is a writable RAM image laid out like the real process.
type testGame struct {
	buf  *memory.Buffer
	base uint64
}

func newTestGame() *testGame {
	return &testGame{
		buf:  memory.NewBuffer(1, "Sonic3AIR.exe", testRegionStart, RegionSize),
		base: testRegionStart + RAMOffset,
	}
}

func (g *testGame) put(off uint64, v uint8) { g.buf.Put8(g.base+off, v) }

func (g *testGame) setZone(act, zone uint8) {
	g.put(OffsetAct, act)
	g.put(OffsetZone, zone)
}

func (g *testGame) setState(s uint8)      { g.put(OffsetState, s) }
func (g *testGame) setSaveSelect(s uint8) { g.put(OffsetSaveSelect, s) }
func (g *testGame) setSlot(slot, v uint8) { g.put(SaveSlotOffset(slot), v) }

func (g *testGame) setZoneSelect(slot, v uint8) { g.put(ZoneSelectOffset(slot), v) }

func (g *testGame) setTimeBonus(v uint16) { g.buf.Put16BE(g.base+OffsetTimeBonus, v) }

func (g *testGame) setFlag(off uint64, on bool) {
	var v uint8
	if on {
		v = 1
	}
	g.put(off, v)
}

func (g *testGame) derive(w *Watchers) int {
	return Derive(g.buf, g.base, w)
}

func currentZone(t *testing.T, w *Watchers) Zone {
	t.Helper()
	z, ok := w.Zone.Current()
	if !ok {
		t.Fatal("zone watcher is empty")
	}
	return z
}

func TestDeriveZoneTable(t *testing.T) {
	tests := []struct {
		act, zone uint8
		want      Zone
	}{
		{1, 0, AngelIslandAct2},
		{0, 1, HydrocityAct1},
		{1, 4, FlyingBatteryAct2},
		{0, 5, IceCapAct1},
		{1, 9, LavaReefAct2},
		{0, 22, LavaReefAct2},
		{1, 22, HiddenPalace},
		{0, 10, SkySanctuary},
		{1, 10, SkySanctuary},
		{1, 11, DeathEggAct2},
		{0, 23, DeathEggAct2},
		{0, 12, Doomsday},
		{1, 13, Ending},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			g := newTestGame()
			w := NewWatchers()
			g.setZone(tt.act, tt.zone)
			g.derive(w)
			if got := currentZone(t, w); got != tt.want {
				t.Errorf("act=%d zone=%d: got %v, want %v", tt.act, tt.zone, got, tt.want)
			}
		})
	}
}

func TestDeriveCodeZeroNeedsLevelStarted(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	g.setZone(1, 1) // Hydrocity Act 2
	g.derive(w)

	// Back at the main menu: code 0 without the level-started flag.
	g.setZone(0, 0)
	g.setFlag(OffsetLevelStarted, false)
	g.derive(w)
	if got := currentZone(t, w); got != HydrocityAct2 {
		t.Errorf("code 0 without level start: got %v, want previous zone %v", got, HydrocityAct2)
	}

	g.setFlag(OffsetLevelStarted, true)
	g.derive(w)
	if got := currentZone(t, w); got != AngelIslandAct1 {
		t.Errorf("code 0 with level start: got %v, want %v", got, AngelIslandAct1)
	}
}

func TestDeriveUnknownCodeKeepsZone(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	g.setZone(0, 6)
	g.derive(w)
	g.setZone(7, 7) // 77 is not a known code
	g.derive(w)

	if got := currentZone(t, w); got != LaunchBaseAct1 {
		t.Errorf("got %v, want %v", got, LaunchBaseAct1)
	}
}

func TestDeriveFirstTickDefaultsToAngelIsland(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()
	g.derive(w) // code 0, no level start, nothing to retain

	if got := currentZone(t, w); got != AngelIslandAct1 {
		t.Errorf("got %v, want %v", got, AngelIslandAct1)
	}
}

func TestDeriveZoneIsIdempotent(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()
	g.setZone(1, 7)

	for i := 0; i < 5; i++ {
		g.derive(w)
	}
	p, ok := w.Zone.Pair()
	if !ok {
		t.Fatal("zone pair missing")
	}
	if p.Changed() || p.Current != MushroomHillAct2 {
		t.Errorf("Pair() = %+v, want settled on %v", p, MushroomHillAct2)
	}
}

func TestDeriveFiltersInGameState(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	g.setState(StateLoading)
	g.derive(w)
	g.setState(StateInGame)
	g.derive(w)

	if s, _ := w.State.Current(); s != StateLoading {
		t.Errorf("filtered state = %#x, want %#x", s, StateLoading)
	}

	g.setState(StateSaveSelect)
	g.derive(w)
	if s, _ := w.State.Current(); s != StateSaveSelect {
		t.Errorf("filtered state = %#x, want %#x", s, StateSaveSelect)
	}
}

func TestDeriveInGameOnFirstTick(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()
	g.setState(StateInGame)
	g.derive(w)

	if s, ok := w.State.Current(); !ok || s != 0 {
		t.Errorf("filtered state = %#x, %v, want 0, true", s, ok)
	}
}

func TestDeriveSaveSlot(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	g.setSaveSelect(3)
	g.setSlot(3, SlotNewGame)
	g.setSlot(2, 0x01)
	g.setZoneSelect(3, 4)
	g.setState(StateSaveSelect)
	g.derive(w)

	if v, _ := w.SaveSlot.Current(); v != SlotNewGame {
		t.Errorf("save slot = %#x, want %#x", v, SlotNewGame)
	}
	if v, _ := w.ZoneSelect.Current(); v != 4 {
		t.Errorf("zone select = %d, want 4", v)
	}

	// In game the slot status is frozen but zone select keeps tracking.
	g.setState(StateInGame)
	g.setSlot(3, SlotInProgress)
	g.setZoneSelect(3, 0)
	g.derive(w)

	if v, _ := w.SaveSlot.Current(); v != SlotNewGame {
		t.Errorf("save slot in game = %#x, want retained %#x", v, SlotNewGame)
	}
	if v, _ := w.ZoneSelect.Current(); v != 0 {
		t.Errorf("zone select in game = %d, want 0", v)
	}
}

func TestDeriveSlotOutOfRangeRetains(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	g.setSaveSelect(1)
	g.setSlot(1, 0x02)
	g.setZoneSelect(1, 7)
	g.derive(w)

	g.setSaveSelect(9)
	g.derive(w)

	if v, _ := w.SaveSlot.Current(); v != 0x02 {
		t.Errorf("save slot = %#x, want retained 0x02", v)
	}
	if v, _ := w.ZoneSelect.Current(); v != 7 {
		t.Errorf("zone select = %d, want retained 7", v)
	}
	if v, _ := w.SaveSelect.Current(); v != 9 {
		t.Errorf("save select = %d, want 9", v)
	}
}

func TestDeriveFlagsAndTimeBonus(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	g.setFlag(OffsetEndOfLevel, true)
	g.put(OffsetGameEnding, 0x40)
	g.setTimeBonus(0x1388)
	g.derive(w)

	if v, _ := w.EndOfLevel.Current(); !v {
		t.Error("end of level = false, want true")
	}
	if v, _ := w.GameEnding.Current(); !v {
		t.Error("game ending = false, want true for any non-zero byte")
	}
	if v, _ := w.TimeBonus.Current(); v != 5000 {
		t.Errorf("time bonus = %d, want 5000", v)
	}
}

func TestDeriveReadFailureBecomesZero(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	g.setTimeBonus(300)
	g.derive(w)

	g.buf.FailAt(g.base+OffsetTimeBonus, true)
	if failed := g.derive(w); failed != 1 {
		t.Errorf("failed reads = %d, want 1", failed)
	}
	if v, _ := w.TimeBonus.Current(); v != 0 {
		t.Errorf("time bonus after failed read = %d, want 0", v)
	}

	g.buf.FailAt(g.base+OffsetTimeBonus, false)
	if failed := g.derive(w); failed != 0 {
		t.Errorf("failed reads after recovery = %d, want 0", failed)
	}
	if v, _ := w.TimeBonus.Current(); v != 300 {
		t.Errorf("time bonus after recovery = %d, want 300", v)
	}
}

func TestDeriveUnmappedBase(t *testing.T) {
	g := newTestGame()
	w := NewWatchers()

	// Nothing is readable: every read fails and every watcher still advances.
	failed := Derive(g.buf, 0, w)
	if failed == 0 {
		t.Error("expected failed reads against an unmapped base")
	}
	if _, ok := w.SaveSlot.Current(); !ok {
		t.Error("watchers should be populated even when reads fail")
	}
}
