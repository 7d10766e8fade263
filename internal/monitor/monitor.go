// Package monitor attaches to the game and runs the splitter's per-tick loop:
// derive the watcher state from memory, then decide on reset, split and
// start in that order.
package monitor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/airsplit/airsplit/internal/autosplit"
	"github.com/airsplit/airsplit/internal/config"
	"github.com/airsplit/airsplit/internal/memory"
	"github.com/airsplit/airsplit/internal/metrics"
	"github.com/airsplit/airsplit/internal/run"
	"github.com/airsplit/airsplit/internal/timer"
)

// Observer receives what the monitor publishes. ws.Broadcaster implements
// it.
type Observer interface {
	QueueStatus(st *run.Status)
	PublishEvent(ev run.Event)
	PublishError(message string)
}

// attachment is the per-process state. A fresh one, with empty watchers, is
// built on every attach.
type attachment struct {
	proc     memory.Process
	base     uint64 // zero until the RAM region has been found
	watchers *autosplit.Watchers
	settings autosplit.Settings
	health   *readHealth
}

type Monitor struct {
	mu          sync.RWMutex // protects cfg, active
	cfg         *config.Config
	active      *attachment
	finder      memory.Finder
	timer       timer.Timer
	store       *run.Store
	observer    Observer
	metrics     *metrics.Metrics
	attachments int
	lastTimer   timer.State
	now         func() time.Time
}

func NewMonitor(cfg *config.Config, finder memory.Finder, t timer.Timer, store *run.Store, observer Observer, m *metrics.Metrics) *Monitor {
	return &Monitor{
		cfg:       cfg,
		finder:    finder,
		timer:     t,
		store:     store,
		observer:  observer,
		metrics:   m,
		lastTimer: timer.NotRunning,
		now:       time.Now,
	}
}

// SetConfig replaces the monitor's config. Settings, process names and
// timings take effect on the next attachment; the current attachment keeps
// the settings it was started with.
func (m *Monitor) SetConfig(cfg *config.Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cfg = cfg
}

// Settings returns the settings of the current attachment, or those the
// next attachment will use.
func (m *Monitor) Settings() autosplit.Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active != nil {
		return m.active.settings
	}
	return m.cfg.Settings()
}

func (m *Monitor) config() *config.Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cfg
}

// Start searches for the game with exponential backoff, runs the tick loop
// while attached, and searches again when the process goes away. It returns
// when ctx is done.
func (m *Monitor) Start(ctx context.Context) {
	log.Printf("[monitor] started")
	defer log.Printf("[monitor] stopped")

	m.publishStatus(nil, m.timer.State())

	var delay time.Duration
	lastErr := ""
	for {
		cfg := m.config()
		if delay == 0 {
			delay = cfg.Monitor.AttachRetry
		}

		proc, err := m.finder.Find(ctx, cfg.Monitor.ProcessNames)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if msg := err.Error(); msg != lastErr {
				if errors.Is(err, memory.ErrProcessNotFound) {
					log.Printf("[monitor] waiting for %v", cfg.Monitor.ProcessNames)
				} else {
					log.Printf("[monitor] attach failed: %v", err)
				}
				lastErr = msg
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
			delay = min(delay*2, cfg.Monitor.AttachMaxDelay)
			continue
		}

		delay = 0
		lastErr = ""
		m.runAttached(ctx, cfg, proc)
		if ctx.Err() != nil {
			return
		}
	}
}

func (m *Monitor) attach(cfg *config.Config, proc memory.Process) *attachment {
	a := &attachment{
		proc:     proc,
		watchers: autosplit.NewWatchers(),
		settings: cfg.Settings(),
		health:   newReadHealth(),
	}

	m.mu.Lock()
	m.active = a
	m.attachments++
	m.mu.Unlock()

	m.metrics.SetAttached(true)
	log.Printf("[monitor] attached to %s (pid %d)", proc.Name(), proc.PID())
	return a
}

func (m *Monitor) detach(a *attachment) {
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()

	if err := a.proc.Close(); err != nil {
		log.Printf("[monitor] close pid %d: %v", a.proc.PID(), err)
	}
	m.metrics.SetAttached(false)
	log.Printf("[monitor] detached from pid %d", a.proc.PID())
	m.publishStatus(nil, m.timer.State())
}

// runAttached ticks until the process exits or ctx is done.
func (m *Monitor) runAttached(ctx context.Context, cfg *config.Config, proc memory.Process) {
	a := m.attach(cfg, proc)
	defer m.detach(a)

	ticker := time.NewTicker(cfg.Monitor.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !proc.Alive() {
				log.Printf("[monitor] pid %d exited", proc.PID())
				return
			}
			m.tick(cfg, a)
		}
	}
}

// findBase locates the RAM region. It is retried every tick until found
// because the game allocates it some time after launch.
func (m *Monitor) findBase(a *attachment) bool {
	if a.base != 0 {
		return true
	}
	region, err := memory.FindRegion(a.proc, autosplit.RegionSize)
	if err != nil {
		return false
	}
	a.base = region.Start + autosplit.RAMOffset
	log.Printf("[monitor] RAM base at %#x", a.base)
	return true
}

// tick is one scheduler pass. Reset pre-empts split, and start is checked
// against the timer state as it is after either.
func (m *Monitor) tick(cfg *config.Config, a *attachment) {
	started := m.now()
	if !m.findBase(a) {
		m.publishStatus(a, m.timer.State())
		return
	}

	failed := autosplit.Derive(a.proc, a.base, a.watchers)
	a.health.record(failed)

	w, s := a.watchers, a.settings
	state := m.timer.State()
	if state.Active() {
		if autosplit.ShouldReset(w, s) {
			m.timer.Reset()
			m.emit(run.EventReset, currentZone(w))
		} else if autosplit.ShouldSplit(w, s) {
			m.split(w)
		}
	}
	state = m.timer.State()
	if state == timer.NotRunning && autosplit.ShouldStart(w, s) {
		m.timer.Start()
		m.emit(run.EventStart, currentZone(w))
		state = m.timer.State()
	}

	m.metrics.ObserveTick(m.now().Sub(started), failed)

	if state == timer.Unavailable && m.lastTimer != timer.Unavailable {
		m.observer.PublishError("timer backend unavailable")
	}
	m.lastTimer = state

	if status, _, changed := a.health.snapshotAndEmit(cfg.Monitor.HealthThreshold); changed {
		log.Printf("[monitor] memory reads %s", status)
		if status == run.HealthDegraded {
			m.observer.PublishError("memory reads failing")
		}
	}

	m.publishStatus(a, state)
}

// split issues one split for the act just completed. Timers that need to be
// told when the run is over get the final split through Finish.
func (m *Monitor) split(w *autosplit.Watchers) {
	completed := previousZone(w)
	name := completed.Label()
	f, finisher := m.timer.(timer.Finisher)
	ns, named := m.timer.(timer.NamedSplitter)
	switch {
	case finisher && autosplit.EndsRun(w):
		f.Finish(name)
	case named:
		ns.SplitNamed(name)
	default:
		m.timer.Split()
	}
	m.emit(run.EventSplit, completed)
}

func (m *Monitor) emit(typ run.EventType, zone autosplit.Zone) {
	ev := run.Event{Type: typ, Zone: zone, At: m.now()}
	log.Printf("[monitor] %s at %s", typ, zone.Label())
	m.metrics.IncTimerAction(typ.String())
	m.store.AddEvent(ev)
	m.observer.PublishEvent(ev)
}

// publishStatus stores and queues the status for a (nil when detached).
// state is the timer state already queried this tick.
func (m *Monitor) publishStatus(a *attachment, state timer.State) {
	m.mu.RLock()
	attachments := m.attachments
	threshold := m.cfg.Monitor.HealthThreshold
	m.mu.RUnlock()

	st := &run.Status{
		Health:      run.HealthHealthy,
		Attachments: attachments,
		UpdatedAt:   m.now(),
	}
	if snap, ok := m.timer.(timer.Snapshotter); ok {
		st.Timer = snap.Snapshot()
	} else {
		st.Timer = timer.Snapshot{State: state}
	}
	if a != nil {
		st.Attached = true
		st.Process = a.proc.Name()
		st.PID = a.proc.PID()
		st.Base = a.base
		st.Watchers = a.watchers.Snapshot()
		st.Health = a.health.status(threshold)
		st.ReadFailures = a.health.total()
	}

	m.store.SetStatus(st)
	m.observer.QueueStatus(st)
}

func currentZone(w *autosplit.Watchers) autosplit.Zone {
	z, _ := w.Zone.Current()
	return z
}

func previousZone(w *autosplit.Watchers) autosplit.Zone {
	if p, ok := w.Zone.Pair(); ok {
		return p.Old
	}
	return currentZone(w)
}
