// Package store persists match results keyed by loan request.
package store

import (
	"context"

	"github.com/google/uuid"

	"loanmatch/internal/match"
)

// Store is interface-driven so the application service can run against
// in-memory storage in tests and Postgres in production without rewiring.
type Store interface {
	SaveResults(ctx context.Context, results []match.MatchResult) error
	ListByLoanRequest(ctx context.Context, loanRequestID uuid.UUID) ([]match.MatchResult, error)
	DeleteByLoanRequest(ctx context.Context, loanRequestID uuid.UUID) error
}
