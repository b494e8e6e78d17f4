package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	actionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cliagent",
			Subsystem: "dispatch",
			Name:      "actions_total",
			Help:      "Number of dispatched actions by canonical name and result.",
		}, []string{"action", "status"},
	)
	extractions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cliagent",
			Subsystem: "extract",
			Name:      "extractions_total",
			Help:      "Number of model responses scanned for actions, by outcome.",
		}, []string{"outcome"},
	)
	processStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cliagent",
			Subsystem: "process",
			Name:      "starts_total",
			Help:      "Number of successfully spawned commands.",
		},
	)
	processKills = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cliagent",
			Subsystem: "process",
			Name:      "kills_total",
			Help:      "Number of explicit terminations.",
		},
	)
	trackedProcesses = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "cliagent",
			Subsystem: "process",
			Name:      "tracked",
			Help:      "Processes currently tracked by the supervisor.",
		},
	)
	turnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "cliagent",
			Subsystem: "agent",
			Name:      "turn_duration_seconds",
			Help:      "Wall time of one model turn including action execution.",
			Buckets:   prometheus.DefBuckets,
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{actionsTotal, extractions, processStarts, processKills, trackedProcesses, turnDuration}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler serving Prometheus metrics for the
// DefaultGatherer. The caller wires the route.
func Handler() http.Handler { return promhttp.Handler() }

// Lightweight helpers used by internal packages. They no-op until
// Register has been called.

func IncAction(action, status string) {
	if regOK.Load() {
		actionsTotal.WithLabelValues(action, status).Inc()
	}
}

func IncExtraction(outcome string) {
	if regOK.Load() {
		extractions.WithLabelValues(outcome).Inc()
	}
}

func IncProcessStart() {
	if regOK.Load() {
		processStarts.Inc()
	}
}

func IncProcessKill() {
	if regOK.Load() {
		processKills.Inc()
	}
}

func SetTrackedProcesses(n int) {
	if regOK.Load() {
		trackedProcesses.Set(float64(n))
	}
}

func ObserveTurnDuration(seconds float64) {
	if regOK.Load() {
		turnDuration.Observe(seconds)
	}
}
