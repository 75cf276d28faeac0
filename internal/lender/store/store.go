// Package store persists the lender catalog.
package store

import (
	"context"

	"github.com/google/uuid"

	"loanmatch/internal/lender/models"
)

// Store is the catalog persistence boundary. Listing methods return fully
// hydrated lenders (programs with criteria in attachment order) in a stable
// creation order, which the engine's result ordering depends on.
type Store interface {
	CreateLender(ctx context.Context, lender *models.Lender) error
	CreateProgram(ctx context.Context, program *models.Program) error
	FindLender(ctx context.Context, id uuid.UUID) (models.Lender, error)
	ListLenders(ctx context.Context) ([]models.Lender, error)
	ListActive(ctx context.Context) ([]models.Lender, error)
}
