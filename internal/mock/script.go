package mock

import (
	"fmt"

	"github.com/airsplit/airsplit/internal/autosplit"
)

// Frame counts at 60 Hz.
const (
	menuFrames    = 120
	loadingFrames = 30
	actFrames     = 300
	clearFrames   = 60
	tallyFrames   = 90
)

type actCode struct{ act, zone uint8 }

// route lists the raw bytes of every act entered after Angel Island Act 1,
// in run order, ending with the ending sequence.
var route = []actCode{
	{1, 0},           // Angel Island 2
	{0, 1}, {1, 1},   // Hydrocity
	{0, 2}, {1, 2},   // Marble Garden
	{0, 3}, {1, 3},   // Carnival Night
	{0, 5}, {1, 5},   // Ice Cap
	{0, 6}, {1, 6},   // Launch Base
	{0, 7}, {1, 7},   // Mushroom Hill
	{0, 4}, {1, 4},   // Flying Battery
	{0, 8}, {1, 8},   // Sandopolis
	{0, 9}, {1, 9},   // Lava Reef
	{1, 22},          // Hidden Palace
	{0, 10},          // Sky Sanctuary
	{0, 11}, {1, 11}, // Death Egg
	{0, 12},          // Doomsday
	{1, 13},          // Ending
}

func zoneName(c actCode) string {
	if z, ok := autosplit.LookupZone(autosplit.CompositeCode(c.act, c.zone)); ok {
		return z.Label()
	}
	return fmt.Sprintf("code %d", autosplit.CompositeCode(c.act, c.zone))
}

// NoSaveRun plays a full no-save run from the save select menu through the
// ending and back to the menu. Every act is cleared with the end-of-level
// flag raised before the act changes. Death Egg Act 2 also counts its time
// bonus down to zero before Doomsday loads.
func NoSaveRun() []Step {
	steps := []Step{
		{Name: "save select", Frames: menuFrames, Apply: func(g *Game) {
			g.SetState(autosplit.StateSaveSelect)
			g.SetSaveSelect(0)
			g.SetZone(0, 0)
			g.SetLevelStarted(false)
			g.SetEndOfLevel(false)
			g.SetGameEnding(false)
			g.SetTimeBonus(0)
		}},
		{Name: "loading", Frames: loadingFrames, Apply: func(g *Game) {
			g.SetState(autosplit.StateLoading)
		}},
		{Name: autosplit.AngelIslandAct1.Label(), Frames: actFrames, Apply: func(g *Game) {
			g.SetState(autosplit.StateInGame)
			g.SetLevelStarted(true)
		}},
	}

	prev := autosplit.AngelIslandAct1.Label()
	for _, c := range route {
		steps = append(steps, Step{Name: "clear " + prev, Frames: clearFrames, Apply: func(g *Game) {
			g.SetEndOfLevel(true)
		}})
		if prev == autosplit.DeathEggAct2.Label() {
			steps = append(steps,
				Step{Name: "time bonus", Frames: tallyFrames, Apply: func(g *Game) {
					g.SetTimeBonus(5000)
				}},
				Step{Name: "tally done", Frames: clearFrames, Apply: func(g *Game) {
					g.SetTimeBonus(0)
				}},
			)
		}
		steps = append(steps, Step{Name: zoneName(c), Frames: actFrames, Apply: func(g *Game) {
			g.SetEndOfLevel(false)
			g.SetZone(c.act, c.zone)
		}})
		prev = zoneName(c)
	}

	return steps
}
