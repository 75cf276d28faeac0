package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"loanmatch/internal/lender/models"
	"loanmatch/pkg/platform/sentinel"
)

// InMemory keeps the catalog in process memory. Lenders and programs are held
// in slices so listing order is creation order, matching the Postgres store.
type InMemory struct {
	mu      sync.RWMutex
	lenders []models.Lender
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) CreateLender(_ context.Context, lender *models.Lender) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *lender
	stored.Programs = append([]models.Program{}, lender.Programs...)
	s.lenders = append(s.lenders, stored)
	return nil
}

func (s *InMemory) CreateProgram(_ context.Context, program *models.Program) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lenders {
		if s.lenders[i].ID == program.LenderID {
			stored := *program
			stored.Criteria = append([]models.Criterion{}, program.Criteria...)
			s.lenders[i].Programs = append(s.lenders[i].Programs, stored)
			return nil
		}
	}
	return sentinel.ErrNotFound
}

func (s *InMemory) FindLender(_ context.Context, id uuid.UUID) (models.Lender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.lenders {
		if s.lenders[i].ID == id {
			return cloneLender(s.lenders[i]), nil
		}
	}
	return models.Lender{}, sentinel.ErrNotFound
}

func (s *InMemory) ListLenders(_ context.Context) ([]models.Lender, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lender, 0, len(s.lenders))
	for i := range s.lenders {
		out = append(out, cloneLender(s.lenders[i]))
	}
	return out, nil
}

func (s *InMemory) ListActive(ctx context.Context) ([]models.Lender, error) {
	all, err := s.ListLenders(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]models.Lender, 0, len(all))
	for _, l := range all {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active, nil
}

func cloneLender(l models.Lender) models.Lender {
	out := l
	out.Programs = make([]models.Program, len(l.Programs))
	for i, p := range l.Programs {
		cp := p
		cp.Criteria = append([]models.Criterion{}, p.Criteria...)
		out.Programs[i] = cp
	}
	return out
}
