package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"loanmatch/internal/match"
)

// InMemory keeps match results in process memory, preserving insertion order
// per loan request.
type InMemory struct {
	mu      sync.RWMutex
	results map[uuid.UUID][]match.MatchResult
}

func NewInMemory() *InMemory {
	return &InMemory{results: make(map[uuid.UUID][]match.MatchResult)}
}

func (s *InMemory) SaveResults(_ context.Context, results []match.MatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range results {
		s.results[r.LoanRequestID] = append(s.results[r.LoanRequestID], r)
	}
	return nil
}

func (s *InMemory) ListByLoanRequest(_ context.Context, loanRequestID uuid.UUID) ([]match.MatchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]match.MatchResult{}, s.results[loanRequestID]...), nil
}

func (s *InMemory) DeleteByLoanRequest(_ context.Context, loanRequestID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.results, loanRequestID)
	return nil
}
