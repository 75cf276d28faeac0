package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"loanmatch/internal/application/models"
	"loanmatch/pkg/platform/sentinel"
)

// InMemory keeps applications in process memory, most recent first.
type InMemory struct {
	mu   sync.RWMutex
	apps []models.Application
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) SaveApplication(_ context.Context, app *models.Application) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.apps = append([]models.Application{*app}, s.apps...)
	return nil
}

func (s *InMemory) FindApplication(_ context.Context, id uuid.UUID) (models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.apps {
		if a.ID == id {
			return a, nil
		}
	}
	return models.Application{}, sentinel.ErrNotFound
}

func (s *InMemory) ListApplications(_ context.Context, offset, limit int) ([]models.Application, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s.apps) {
		return []models.Application{}, nil
	}
	end := len(s.apps)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return append([]models.Application{}, s.apps[offset:end]...), nil
}

func (s *InMemory) DeleteApplication(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, a := range s.apps {
		if a.ID == id {
			s.apps = append(s.apps[:i], s.apps[i+1:]...)
			return nil
		}
	}
	return sentinel.ErrNotFound
}
