// Package models defines the lender catalog records: lenders, their finance
// programs, and the declarative policy criteria attached to each program.
package models

import (
	"time"

	"github.com/google/uuid"

	"loanmatch/internal/match"
)

// Lender is an organization offering one or more finance programs. Inactive
// lenders stay in the catalog but are excluded from matching.
type Lender struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	Programs  []Program `json:"programs"`
}

// Program is a lender's financing offer with optional loan-amount bounds and
// an ordered criteria list.
type Program struct {
	ID            uuid.UUID   `json:"id"`
	LenderID      uuid.UUID   `json:"lender_id"`
	Name          string      `json:"name"`
	MinLoanAmount *float64    `json:"min_loan_amount,omitempty"`
	MaxLoanAmount *float64    `json:"max_loan_amount,omitempty"`
	CreatedAt     time.Time   `json:"created_at"`
	Criteria      []Criterion `json:"policies"`
}

// Criterion is one stored policy rule. Position records attachment order,
// which determines rejection-reason ordering and is immutable once evaluated.
type Criterion struct {
	ID           uuid.UUID   `json:"id"`
	ProgramID    uuid.UUID   `json:"program_id"`
	Position     int         `json:"-"`
	AttributeKey string      `json:"criteria_type"`
	Operator     string      `json:"operator"`
	Value        match.Value `json:"value"`
}

// Snapshot converts a stored lender into the engine's catalog shape.
func (l Lender) Snapshot() match.Lender {
	snap := match.Lender{ID: l.ID, Name: l.Name, Programs: make([]match.Program, 0, len(l.Programs))}
	for _, p := range l.Programs {
		program := match.Program{
			ID:        p.ID,
			Name:      p.Name,
			MinAmount: p.MinLoanAmount,
			MaxAmount: p.MaxLoanAmount,
			Criteria:  make([]match.Criterion, 0, len(p.Criteria)),
		}
		for _, c := range p.Criteria {
			program.Criteria = append(program.Criteria, match.Criterion{
				AttributeKey: c.AttributeKey,
				Operator:     c.Operator,
				Target:       c.Value,
			})
		}
		snap.Programs = append(snap.Programs, program)
	}
	return snap
}
