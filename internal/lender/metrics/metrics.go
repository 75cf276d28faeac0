// Package metrics provides observability for the lender catalog module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics tracks catalog mutations and cache effectiveness.
type Metrics struct {
	LendersCreated  prometheus.Counter
	ProgramsCreated prometheus.Counter
	CatalogHits     prometheus.Counter
	CatalogMisses   prometheus.Counter
}

// New creates and registers all lender module metrics.
func New() *Metrics {
	return &Metrics{
		LendersCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_lenders_created_total",
			Help: "Total number of lenders created",
		}),
		ProgramsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_programs_created_total",
			Help: "Total number of lender programs created",
		}),
		CatalogHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_catalog_cache_hits_total",
			Help: "Active catalog reads served from cache",
		}),
		CatalogMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "loanmatch_catalog_cache_misses_total",
			Help: "Active catalog reads that fell through to the store",
		}),
	}
}

func (m *Metrics) IncrementLendersCreated() {
	if m != nil {
		m.LendersCreated.Inc()
	}
}

func (m *Metrics) IncrementProgramsCreated() {
	if m != nil {
		m.ProgramsCreated.Inc()
	}
}

func (m *Metrics) ObserveCatalogRead(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CatalogHits.Inc()
	} else {
		m.CatalogMisses.Inc()
	}
}
