// Package metrics provides Prometheus metrics for the scheduling engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts dialog transitions, planner calls and schedule
// commits. A nil *Metrics is safe to call; all methods no-op.
type Metrics struct {
	transitions    *prometheus.CounterVec
	plannerLatency prometheus.Histogram
	plannerErrors  prometheus.Counter
	commits        *prometheus.CounterVec
	commitEvents   prometheus.Counter
}

// New registers the engine metrics on the given registry.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "initio",
			Subsystem: "scheduling",
			Name:      "transitions_total",
			Help:      "Dialog state transitions by origin and destination state.",
		}, []string{"from", "to"}),
		plannerLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "initio",
			Subsystem: "scheduling",
			Name:      "planner_latency_seconds",
			Help:      "Latency of schedule planner calls.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}),
		plannerErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "initio",
			Subsystem: "scheduling",
			Name:      "planner_errors_total",
			Help:      "Planner calls that failed or timed out.",
		}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "initio",
			Subsystem: "scheduling",
			Name:      "commits_total",
			Help:      "Schedule commits by result.",
		}, []string{"result"}),
		commitEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "initio",
			Subsystem: "scheduling",
			Name:      "commit_events_created_total",
			Help:      "Calendar events created by schedule commits.",
		}),
	}
	reg.MustRegister(m.transitions, m.plannerLatency, m.plannerErrors, m.commits, m.commitEvents)
	return m
}

func (m *Metrics) Transition(from, to string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) PlannerCall(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.plannerLatency.Observe(d.Seconds())
	if err != nil {
		m.plannerErrors.Inc()
	}
}

func (m *Metrics) Commit(result string, created int) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
	m.commitEvents.Add(float64(created))
}
