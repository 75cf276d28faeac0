// Package store persists loan application aggregates.
package store

import (
	"context"

	"github.com/google/uuid"

	"loanmatch/internal/application/models"
)

// Store is the application persistence boundary. Listing returns newest
// first, matching the intake dashboard's expectations.
type Store interface {
	SaveApplication(ctx context.Context, app *models.Application) error
	FindApplication(ctx context.Context, id uuid.UUID) (models.Application, error)
	ListApplications(ctx context.Context, offset, limit int) ([]models.Application, error)
	DeleteApplication(ctx context.Context, id uuid.UUID) error
}
