package match

import (
	"time"

	"github.com/google/uuid"
)

// Criterion is one declarative rule attached to a program: resolved
// attribute, operator, comparison target. Criteria are interpreted by the
// fixed operator dispatch in CheckRule, never executed as code.
type Criterion struct {
	AttributeKey string
	Operator     string
	Target       Value
}

// Program is a lender's financing offer as seen by the engine: optional loan
// amount bounds plus criteria in attachment order.
type Program struct {
	ID        uuid.UUID
	Name      string
	MinAmount *float64
	MaxAmount *float64
	Criteria  []Criterion
}

// Lender is one active lender in a catalog snapshot.
type Lender struct {
	ID       uuid.UUID
	Name     string
	Programs []Program
}

// MatchResult is the per-program verdict for one evaluation run. Results are
// created fresh each run and never mutated afterwards.
type MatchResult struct {
	ID               uuid.UUID `json:"id"`
	LoanRequestID    uuid.UUID `json:"loan_request_id"`
	LenderID         uuid.UUID `json:"lender_id"`
	ProgramID        uuid.UUID `json:"program_id"`
	Eligible         bool      `json:"eligible"`
	FitScore         int       `json:"fit_score"`
	RejectionReasons []string  `json:"rejection_reasons"`
	CreatedAt        time.Time `json:"created_at"`
}
