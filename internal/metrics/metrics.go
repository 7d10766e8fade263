// Package metrics exposes splitter counters in Prometheus format. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "airsplit"

type Metrics struct {
	reg          *prom.Registry
	ticks        prom.Counter
	readFailures prom.Counter
	attachments  prom.Counter
	attached     prom.Gauge
	timerActions *prom.CounterVec
	tickDuration prom.Histogram
}

// New registers the collectors on reg, or on a fresh registry when reg is
// nil.
func New(reg *prom.Registry) *Metrics {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	m := &Metrics{
		reg: reg,
		ticks: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Scheduler ticks evaluated while attached",
		}),
		readFailures: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "read_failures_total",
			Help:      "Individual memory reads that failed",
		}),
		attachments: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_total",
			Help:      "Successful attachments to the game process",
		}),
		attached: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "attached",
			Help:      "1 while attached to the game process",
		}),
		timerActions: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "timer_actions_total",
			Help:      "Timer actions issued, by action",
		}, []string{"action"}),
		tickDuration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Time spent deriving and deciding per tick",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025},
		}),
	}
	reg.MustRegister(m.ticks, m.readFailures, m.attachments, m.attached, m.timerActions, m.tickDuration)
	return m
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prom.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

func (m *Metrics) ObserveTick(d time.Duration, failedReads int) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
	if failedReads > 0 {
		m.readFailures.Add(float64(failedReads))
	}
}

func (m *Metrics) SetAttached(attached bool) {
	if m == nil {
		return
	}
	if attached {
		m.attachments.Inc()
		m.attached.Set(1)
		return
	}
	m.attached.Set(0)
}

// IncTimerAction counts a start, split or reset.
func (m *Metrics) IncTimerAction(action string) {
	if m == nil {
		return
	}
	m.timerActions.WithLabelValues(action).Inc()
}

// Handler serves the registry. A nil *Metrics serves an empty registry.
func (m *Metrics) Handler() http.Handler {
	reg := m.Registry()
	if reg == nil {
		reg = prom.NewRegistry()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
