// Package metrics provides observability for the application module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks application intake volume and the submit critical path.
type Metrics struct {
	ApplicationsSubmitted prometheus.Counter
	ApplicationsDeleted   prometheus.Counter
	SubmitDuration        prometheus.Histogram
}

// New creates and registers all application module metrics.
func New() *Metrics {
	return &Metrics{
		ApplicationsSubmitted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_applications_submitted_total",
			Help: "Total number of loan applications submitted",
		}),
		ApplicationsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_applications_deleted_total",
			Help: "Total number of loan applications deleted",
		}),
		SubmitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanmatch_submit_duration_seconds",
			Help:    "Duration of application submission including persistence and matching",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

// ObserveSubmit records one completed submission.
func (m *Metrics) ObserveSubmit(start time.Time) {
	if m == nil {
		return
	}
	m.ApplicationsSubmitted.Inc()
	m.SubmitDuration.Observe(time.Since(start).Seconds())
}

// IncrementDeleted records one application deletion.
func (m *Metrics) IncrementDeleted() {
	if m != nil {
		m.ApplicationsDeleted.Inc()
	}
}
