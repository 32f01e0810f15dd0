package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all the available internal metrics
type Metrics struct {
	// SubmissionsDiscoveredTotal is the number of new submission events
	// found by discovery passes.
	//
	// Labels: project
	SubmissionsDiscoveredTotal *prometheus.CounterVec

	// SubmissionsRejectedTotal is the number of submissions rejected by
	// admission control for exceeding the project size limit.
	//
	// Labels: project
	SubmissionsRejectedTotal *prometheus.CounterVec

	// ActionsRunTotal is the number of grading actions which reached a
	// terminal state.
	//
	// Labels: project, status (completed / killed / failed)
	ActionsRunTotal *prometheus.CounterVec

	// ActionDurationsSeconds is how long grading actions ran for.
	//
	// Labels: project
	ActionDurationsSeconds *prometheus.HistogramVec
}

// NewMetrics creates a Metrics struct with all the Prometheus metrics recorders initialized
func NewMetrics() Metrics {
	metrics := Metrics{
		SubmissionsDiscoveredTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "submit_monitor",
			Subsystem: "discovery",
			Name:      "submissions_discovered_total",
			Help:      "Total number of new submission events discovered",
		}, []string{"project"}),
		SubmissionsRejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "submit_monitor",
			Subsystem: "discovery",
			Name:      "submissions_rejected_total",
			Help:      "Total number of submissions rejected for exceeding the size limit",
		}, []string{"project"}),
		ActionsRunTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "submit_monitor",
			Subsystem: "supervisor",
			Name:      "actions_run_total",
			Help:      "Total number of grading actions which reached a terminal state",
		}, []string{"project", "status"}),
		ActionDurationsSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "submit_monitor",
			Subsystem: "supervisor",
			Name:      "action_durations_seconds",
			Help:      "Duration, in seconds, of grading action runs",
		}, []string{"project"}),
	}

	prometheus.MustRegister(metrics.SubmissionsDiscoveredTotal)
	prometheus.MustRegister(metrics.SubmissionsRejectedTotal)
	prometheus.MustRegister(metrics.ActionsRunTotal)
	prometheus.MustRegister(metrics.ActionDurationsSeconds)

	return metrics
}

// StartTimer starts a Timer. Calling .Finish() on the returned timer records
// the elapsed time in seconds.
func (m Metrics) StartTimer() Timer {
	return Timer{
		startTime: time.Now(),
	}
}
