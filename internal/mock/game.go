// Package mock simulates the game process so the splitter can run without
// Sonic 3 A.I.R. installed.
package mock

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/airsplit/airsplit/internal/autosplit"
	"github.com/airsplit/airsplit/internal/memory"
)

const (
	mockPID         = 4242
	mockRegionStart = 0x20000000
)

// Step is one scripted phase. Apply runs on the first frame and the step is
// held for Frames frames.
type Step struct {
	Name   string
	Frames int
	Apply  func(g *Game)
}

// Game is an in-memory RAM image laid out like the real process, advanced
// frame by frame through a script.
type Game struct {
	*memory.Buffer
	base uint64

	mu     sync.Mutex
	script []Step
	pos    int
	held   int
}

// NewGame returns a game at the save select menu running script. A nil
// script plays NoSaveRun.
func NewGame(script []Step) *Game {
	if script == nil {
		script = NoSaveRun()
	}
	g := &Game{
		Buffer: memory.NewBuffer(mockPID, autosplit.ProcessNames[0], mockRegionStart, autosplit.RegionSize),
		base:   mockRegionStart + autosplit.RAMOffset,
		script: script,
	}
	g.SetState(autosplit.StateSaveSelect)
	return g
}

// Base returns the address the splitter should resolve as the RAM base.
func (g *Game) Base() uint64 { return g.base }

// Close is a no-op: the simulated process outlives any one attachment.
func (g *Game) Close() error { return nil }

func (g *Game) put(off uint64, v uint8) { g.Put8(g.base+off, v) }

func (g *Game) putFlag(off uint64, on bool) {
	var v uint8
	if on {
		v = 1
	}
	g.put(off, v)
}

func (g *Game) SetState(s uint8) { g.put(autosplit.OffsetState, s) }
func (g *Game) SetSaveSelect(slot uint8) { g.put(autosplit.OffsetSaveSelect, slot) }
func (g *Game) SetSlotStatus(slot, v uint8) { g.put(autosplit.SaveSlotOffset(slot), v) }
func (g *Game) SetZoneSelect(slot, v uint8) { g.put(autosplit.ZoneSelectOffset(slot), v) }
func (g *Game) SetLevelStarted(on bool) { g.putFlag(autosplit.OffsetLevelStarted, on) }
func (g *Game) SetEndOfLevel(on bool) { g.putFlag(autosplit.OffsetEndOfLevel, on) }
func (g *Game) SetGameEnding(on bool) { g.putFlag(autosplit.OffsetGameEnding, on) }
func (g *Game) SetTimeBonus(v uint16) { g.Put16BE(g.base+autosplit.OffsetTimeBonus, v) }

// SetZone writes the raw act and zone bytes.
func (g *Game) SetZone(act, zone uint8) {
	g.put(autosplit.OffsetAct, act)
	g.put(autosplit.OffsetZone, zone)
}

// Advance plays one frame of the script, wrapping at the end.
func (g *Game) Advance() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.script) == 0 {
		return
	}
	step := g.script[g.pos]
	if g.held == 0 && step.Apply != nil {
		step.Apply(g)
	}
	g.held++
	if g.held >= max(1, step.Frames) {
		g.held = 0
		g.pos = (g.pos + 1) % len(g.script)
	}
}

// StepName returns the name of the step being played.
func (g *Game) StepName() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.script) == 0 {
		return ""
	}
	return g.script[g.pos].Name
}

// Start advances the game every interval until ctx is done.
func (g *Game) Start(ctx context.Context, interval time.Duration) {
	go g.run(ctx, interval)
}

func (g *Game) run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := ""
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.Advance()
			if name := g.StepName(); name != last {
				log.Printf("[mock] %s", name)
				last = name
			}
		}
	}
}

// Finder always finds the simulated game while it is alive.
type Finder struct {
	Game *Game
}

func (f Finder) Find(ctx context.Context, names []string) (memory.Process, error) {
	if f.Game == nil || !f.Game.Alive() {
		return nil, memory.ErrProcessNotFound
	}
	return f.Game, nil
}
