package match

import (
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"loanmatch/internal/application/models"
	"loanmatch/internal/match/metrics"
)

// Engine computes per-program eligibility verdicts. It holds no state between
// invocations: each run reads one immutable catalog snapshot and one
// application value, so concurrent calls never interfere.
type Engine struct {
	metrics *metrics.Metrics
}

// NewEngine constructs the matching engine. metrics may be nil in tests.
func NewEngine(m *metrics.Metrics) *Engine {
	return &Engine{metrics: m}
}

// EvaluateApplication screens the application against every program of every
// lender in the snapshot and returns one MatchResult per (lender, program)
// pair, in lender-then-program order. Programs are evaluated concurrently and
// reassembled into that canonical order, since result and reason ordering are
// observable contracts.
func (e *Engine) EvaluateApplication(app models.Application, catalog []Lender, now time.Time) []MatchResult {
	start := time.Now()
	attrs := ResolveAttributes(app, now)

	type pair struct {
		lender  *Lender
		program *Program
	}
	var pairs []pair
	for li := range catalog {
		for pi := range catalog[li].Programs {
			pairs = append(pairs, pair{lender: &catalog[li], program: &catalog[li].Programs[pi]})
		}
	}

	results := make([]MatchResult, len(pairs))
	g := new(errgroup.Group)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range pairs {
		g.Go(func() error {
			verdict := EvaluateProgram(*p.program, app.LoanRequest.Amount, attrs)
			results[i] = MatchResult{
				ID:               uuid.New(),
				LoanRequestID:    app.LoanRequest.ID,
				LenderID:         p.lender.ID,
				ProgramID:        p.program.ID,
				Eligible:         verdict.Eligible,
				FitScore:         verdict.FitScore,
				RejectionReasons: verdict.RejectionReasons,
				CreatedAt:        now,
			}
			return nil
		})
	}
	_ = g.Wait() // evaluation never errors; the group only bounds fan-out

	eligible := 0
	for i := range results {
		if results[i].Eligible {
			eligible++
		}
	}
	e.metrics.ObserveEvaluation(start, len(results), eligible)
	return results
}
