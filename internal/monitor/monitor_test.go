package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/airsplit/airsplit/internal/autosplit"
	"github.com/airsplit/airsplit/internal/config"
	"github.com/airsplit/airsplit/internal/memory"
	"github.com/airsplit/airsplit/internal/metrics"
	"github.com/airsplit/airsplit/internal/mock"
	"github.com/airsplit/airsplit/internal/run"
	"github.com/airsplit/airsplit/internal/timer"
)

// fakeObserver records what the monitor publishes.
type fakeObserver struct {
	mu       sync.Mutex
	statuses int
	events   []run.Event
	errors   []string
}

func (o *fakeObserver) QueueStatus(*run.Status) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses++
}

func (o *fakeObserver) PublishEvent(ev run.Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, ev)
}

func (o *fakeObserver) PublishError(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors = append(o.errors, msg)
}

func (o *fakeObserver) eventTypes() []run.EventType {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]run.EventType, len(o.events))
	for i, ev := range o.events {
		out[i] = ev.Type
	}
	return out
}

// fakeTimer is a host timer with a settable state.
type fakeTimer struct {
	state timer.State
	calls []string
}

func (f *fakeTimer) State() timer.State { return f.state }

func (f *fakeTimer) Start() {
	f.calls = append(f.calls, "start")
	f.state = timer.Running
}

func (f *fakeTimer) Split() { f.calls = append(f.calls, "split") }

func (f *fakeTimer) Reset() {
	f.calls = append(f.calls, "reset")
	f.state = timer.NotRunning
}

func defaultTestConfig() *config.Config {
	cfg := config.Default()
	cfg.Monitor.PollInterval = 5 * time.Millisecond
	cfg.Monitor.AttachRetry = 5 * time.Millisecond
	cfg.Monitor.AttachMaxDelay = 20 * time.Millisecond
	cfg.Monitor.HealthThreshold = 2
	return cfg
}

func newTestMonitor(t *testing.T, tm timer.Timer, finder memory.Finder) (*Monitor, *fakeObserver, *run.Store) {
	t.Helper()
	obs := &fakeObserver{}
	store := run.NewStore(0)
	m := NewMonitor(defaultTestConfig(), finder, tm, store, obs, metrics.New(nil))
	return m, obs, store
}

func equalTypes(got []run.EventType, want ...run.EventType) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestTickResetPreemptsSplitThenStarts(t *testing.T) {
	tm := timer.NewLocal()
	m, obs, _ := newTestMonitor(t, tm, nil)
	g := mock.NewGame([]mock.Step{})
	cfg := m.config()
	a := m.attach(cfg, g)

	g.SetSaveSelect(0)
	g.SetState(autosplit.StateSaveSelect)
	g.SetZone(0, 1) // Hydrocity 1
	m.tick(cfg, a)

	tm.Start()
	g.SetState(autosplit.StateLoading)
	g.SetZone(1, 1) // Hydrocity 2: a split candidate in the same tick
	m.tick(cfg, a)

	if got := obs.eventTypes(); !equalTypes(got, run.EventReset, run.EventStart) {
		t.Fatalf("events = %v, want [reset start]", got)
	}
	snap := tm.Snapshot()
	if snap.State != timer.Running || len(snap.Segments) != 0 {
		t.Errorf("timer = %+v, want a fresh running attempt", snap)
	}
}

func TestTickSplitNamesCompletedAct(t *testing.T) {
	tm := timer.NewLocal()
	m, obs, store := newTestMonitor(t, tm, nil)
	g := mock.NewGame([]mock.Step{})
	cfg := m.config()
	a := m.attach(cfg, g)

	g.SetState(autosplit.StateInGame)
	g.SetZone(0, 1)
	m.tick(cfg, a)
	tm.Start()
	g.SetZone(1, 1)
	m.tick(cfg, a)

	snap := tm.Snapshot()
	if len(snap.Segments) != 1 || snap.Segments[0].Name != autosplit.HydrocityAct1.Label() {
		t.Fatalf("segments = %+v", snap.Segments)
	}
	events := store.Events()
	if len(events) != 1 || events[0].Type != run.EventSplit || events[0].Zone != autosplit.HydrocityAct1 {
		t.Errorf("store events = %+v", events)
	}
	if len(obs.errors) != 0 {
		t.Errorf("unexpected errors: %v", obs.errors)
	}

	st := store.Status()
	if !st.Attached || st.Base != g.Base() || st.Watchers.Zone != autosplit.HydrocityAct2 {
		t.Errorf("status = %+v", st)
	}
}

func TestTickInactiveTimerDoesNotSplit(t *testing.T) {
	for _, state := range []timer.State{timer.NotRunning, timer.Ended, timer.Unavailable} {
		t.Run(state.String(), func(t *testing.T) {
			tm := &fakeTimer{state: state}
			m, _, _ := newTestMonitor(t, tm, nil)
			g := mock.NewGame([]mock.Step{})
			cfg := m.config()
			a := m.attach(cfg, g)

			g.SetState(autosplit.StateInGame)
			g.SetZone(0, 1)
			m.tick(cfg, a)
			g.SetZone(1, 1)
			m.tick(cfg, a)

			if len(tm.calls) != 0 {
				t.Errorf("timer calls = %v, want none", tm.calls)
			}
		})
	}
}

func TestTickPublishesTimerUnavailableOnce(t *testing.T) {
	tm := &fakeTimer{state: timer.Unavailable}
	m, obs, _ := newTestMonitor(t, tm, nil)
	g := mock.NewGame([]mock.Step{})
	cfg := m.config()
	a := m.attach(cfg, g)

	m.tick(cfg, a)
	m.tick(cfg, a)
	tm.state = timer.NotRunning
	m.tick(cfg, a)
	tm.state = timer.Unavailable
	m.tick(cfg, a)

	if len(obs.errors) != 2 {
		t.Errorf("errors = %v, want one per transition into unavailable", obs.errors)
	}
}

func TestTickWaitsForRegion(t *testing.T) {
	tm := &fakeTimer{}
	m, _, store := newTestMonitor(t, tm, nil)
	proc := memory.NewBuffer(7, "Sonic3AIR.exe", 0x1000, 0x1000)
	cfg := m.config()
	a := m.attach(cfg, proc)

	m.tick(cfg, a)
	st := store.Status()
	if !st.Attached || st.Base != 0 {
		t.Errorf("status = %+v, want attached without base", st)
	}
	if st.Watchers.Ready {
		t.Error("watchers should be empty before the region is found")
	}
}

func TestTickDegradedHealth(t *testing.T) {
	tm := &fakeTimer{}
	m, obs, store := newTestMonitor(t, tm, nil)
	g := mock.NewGame([]mock.Step{})
	cfg := m.config()
	a := m.attach(cfg, g)

	g.FailAt(g.Base()+autosplit.OffsetState, true)
	m.tick(cfg, a)
	m.tick(cfg, a)

	st := store.Status()
	if st.Health != run.HealthDegraded || st.ReadFailures != 2 {
		t.Errorf("status health = %q, failures = %d; want degraded, 2", st.Health, st.ReadFailures)
	}
	if len(obs.errors) != 1 {
		t.Errorf("errors = %v, want one degraded notice", obs.errors)
	}

	g.FailAt(g.Base()+autosplit.OffsetState, false)
	m.tick(cfg, a)
	if got := store.Status().Health; got != run.HealthHealthy {
		t.Errorf("health after recovery = %q", got)
	}
}

func TestSettingsSnapshotPerAttachment(t *testing.T) {
	m, _, _ := newTestMonitor(t, &fakeTimer{}, nil)
	if !m.Settings().Reset {
		t.Fatal("default settings should enable reset")
	}

	a := m.attach(m.config(), mock.NewGame([]mock.Step{}))

	cfg := defaultTestConfig()
	cfg.Splits[autosplit.KeyReset] = false
	m.SetConfig(cfg)
	if !m.Settings().Reset {
		t.Error("SetConfig should not change the active attachment's settings")
	}

	m.detach(a)
	if m.Settings().Reset {
		t.Error("after detach, Settings should reflect the new config")
	}
}

func TestTickFinishesRunOnlyOnLastSplit(t *testing.T) {
	tm := timer.NewLocal()
	m, obs, _ := newTestMonitor(t, tm, nil)
	cfg := defaultTestConfig()
	for _, z := range autosplit.Zones() {
		cfg.Splits[z.String()] = z == autosplit.DeathEggAct2 || z == autosplit.Doomsday
	}
	m.SetConfig(cfg)
	g := mock.NewGame([]mock.Step{})
	a := m.attach(m.config(), g)

	g.SetState(autosplit.StateInGame)
	g.SetZone(1, 11) // Death Egg 2, boss beaten
	g.SetEndOfLevel(true)
	g.SetTimeBonus(5)
	m.tick(cfg, a)
	tm.Start()

	g.SetTimeBonus(0)
	m.tick(cfg, a)
	if tm.State() != timer.Running {
		t.Fatalf("state after the time bonus split = %v, want running", tm.State())
	}

	g.SetEndOfLevel(false)
	g.SetZone(0, 12) // Doomsday
	m.tick(cfg, a)
	if tm.State() != timer.Running {
		t.Fatalf("state after entering Doomsday = %v, want running", tm.State())
	}

	g.SetZone(1, 13) // Ending
	m.tick(cfg, a)

	snap := tm.Snapshot()
	if snap.State != timer.Ended {
		t.Fatalf("state = %v, want ended", snap.State)
	}
	want := []string{autosplit.DeathEggAct2.Label(), autosplit.DeathEggAct2.Label(), autosplit.Doomsday.Label()}
	if len(snap.Segments) != len(want) {
		t.Fatalf("segments = %+v, want %v", snap.Segments, want)
	}
	for i, name := range want {
		if snap.Segments[i].Name != name {
			t.Errorf("segment %d = %q, want %q", i, snap.Segments[i].Name, name)
		}
	}
	if got := obs.eventTypes(); !equalTypes(got, run.EventSplit, run.EventSplit, run.EventSplit) {
		t.Errorf("events = %v, want three splits", got)
	}
}

func TestTickSkySanctuaryEndingFinishesRun(t *testing.T) {
	tm := timer.NewLocal()
	m, _, _ := newTestMonitor(t, tm, nil)
	g := mock.NewGame([]mock.Step{})
	cfg := m.config()
	a := m.attach(cfg, g)

	g.SetState(autosplit.StateInGame)
	g.SetZone(0, 10) // Sky Sanctuary
	m.tick(cfg, a)
	tm.Start()
	g.SetGameEnding(true)
	m.tick(cfg, a)

	snap := tm.Snapshot()
	if snap.State != timer.Ended || len(snap.Segments) != 1 || snap.Segments[0].Name != autosplit.SkySanctuary.Label() {
		t.Errorf("timer = %+v, want ended after the Sky Sanctuary split", snap)
	}
}

// seqFinder hands out processes in order, one per Find call, and reports
// not found once they are used up.
type seqFinder struct {
	mu    sync.Mutex
	procs []memory.Process
}

func (f *seqFinder) Find(ctx context.Context, names []string) (memory.Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.procs) == 0 {
		return nil, memory.ErrProcessNotFound
	}
	p := f.procs[0]
	f.procs = f.procs[1:]
	return p, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestStartReattachUsesFreshWatchers(t *testing.T) {
	first := mock.NewGame([]mock.Step{})
	first.SetState(autosplit.StateInGame)
	first.SetZone(0, 1) // Hydrocity 1

	second := memory.NewBuffer(99, "Sonic3AIR.exe", 0x30000000, autosplit.RegionSize)
	secondBase := uint64(0x30000000 + autosplit.RAMOffset)
	second.Put8(secondBase+autosplit.OffsetState, autosplit.StateInGame)
	second.Put8(secondBase+autosplit.OffsetAct, 1)
	second.Put8(secondBase+autosplit.OffsetZone, 2) // Marble Garden 2

	tm := timer.NewLocal()
	tm.Start()
	finder := &seqFinder{procs: []memory.Process{first, second}}
	m, obs, store := newTestMonitor(t, tm, finder)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(done)
	}()

	waitFor(t, "first attachment", func() bool {
		st := store.Status()
		return st.Attached && st.PID == first.PID() && st.Watchers.Ready
	})

	first.Exit()

	waitFor(t, "second attachment", func() bool {
		st := store.Status()
		return st.Attached && st.PID == 99 && st.Watchers.Ready
	})

	st := store.Status()
	if st.Attachments != 2 {
		t.Errorf("attachments = %d, want 2", st.Attachments)
	}
	if st.Watchers.PrevZone != autosplit.MarbleGardenAct2 {
		t.Errorf("PrevZone = %v, want samples from the new process only", st.Watchers.PrevZone)
	}
	if got := obs.eventTypes(); len(got) != 0 {
		t.Errorf("events = %v, a zone change across attachments must not split", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if store.Status().Attached {
		t.Error("status should be detached after shutdown")
	}
}
