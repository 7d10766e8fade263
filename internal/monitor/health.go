package monitor

import (
	"sync"

	"github.com/airsplit/airsplit/internal/run"
)

// readHealth tracks memory read failures for one attachment. A tick with
// any failed read counts as a failing tick; the attachment is degraded
// after threshold consecutive failing ticks.
// Fields are protected by mu because tick() writes them from the monitor
// goroutine while Status readers may snapshot them.
type readHealth struct {
	mu                  sync.Mutex
	consecutiveFailures int
	totalFailures       int
	lastEmittedStatus   run.Health
}

func newReadHealth() *readHealth {
	return &readHealth{lastEmittedStatus: run.HealthHealthy}
}

// record folds one tick's failed read count in.
func (h *readHealth) record(failed int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if failed == 0 {
		h.consecutiveFailures = 0
		return
	}
	h.consecutiveFailures++
	h.totalFailures += failed
}

// statusLocked computes health status. Caller must hold h.mu.
func (h *readHealth) statusLocked(threshold int) run.Health {
	if threshold > 0 && h.consecutiveFailures >= threshold {
		return run.HealthDegraded
	}
	return run.HealthHealthy
}

func (h *readHealth) status(threshold int) run.Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.statusLocked(threshold)
}

func (h *readHealth) total() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.totalFailures
}

// snapshotAndEmit returns the status, the total failed reads, and whether
// the status changed since the last call that reported a change.
func (h *readHealth) snapshotAndEmit(threshold int) (status run.Health, totalFailures int, changed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	status = h.statusLocked(threshold)
	changed = status != h.lastEmittedStatus
	if changed {
		h.lastEmittedStatus = status
	}
	return status, h.totalFailures, changed
}
