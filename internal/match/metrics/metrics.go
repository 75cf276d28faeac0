// Package metrics provides observability for the matching engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks evaluation volume and latency.
type Metrics struct {
	EvaluationsTotal   prometheus.Counter
	ProgramsEvaluated  prometheus.Counter
	EligiblePrograms   prometheus.Counter
	EvaluationDuration prometheus.Histogram
}

// New creates and registers all matching engine metrics.
func New() *Metrics {
	return &Metrics{
		EvaluationsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_evaluations_total",
			Help: "Total number of application evaluation runs",
		}),
		ProgramsEvaluated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_programs_evaluated_total",
			Help: "Total number of lender programs evaluated",
		}),
		EligiblePrograms: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_eligible_programs_total",
			Help: "Total number of program evaluations that came back eligible",
		}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "loanmatch_evaluation_duration_seconds",
			Help:    "Duration of full application evaluation runs",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
	}
}

// ObserveEvaluation records one full evaluation run.
func (m *Metrics) ObserveEvaluation(start time.Time, programs, eligible int) {
	if m == nil {
		return
	}
	m.EvaluationsTotal.Inc()
	m.ProgramsEvaluated.Add(float64(programs))
	m.EligiblePrograms.Add(float64(eligible))
	m.EvaluationDuration.Observe(time.Since(start).Seconds())
}
