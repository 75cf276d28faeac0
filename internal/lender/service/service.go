// Package service orchestrates lender catalog management and provides the
// catalog snapshot the matching engine evaluates against.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"loanmatch/internal/lender/cache"
	lendermetrics "loanmatch/internal/lender/metrics"
	"loanmatch/internal/lender/models"
	"loanmatch/internal/lender/store"
	"loanmatch/internal/match"
	dErrors "loanmatch/pkg/domain-errors"
	"loanmatch/pkg/platform/sentinel"
	"loanmatch/pkg/requestcontext"
)

// PolicyInput is one criterion as submitted by the admin API.
type PolicyInput struct {
	CriteriaType string      `json:"criteria_type"`
	Operator     string      `json:"operator"`
	Value        match.Value `json:"value"`
}

// ProgramInput is a program creation request.
type ProgramInput struct {
	Name          string        `json:"name"`
	MinLoanAmount *float64      `json:"min_loan_amount"`
	MaxLoanAmount *float64      `json:"max_loan_amount"`
	Policies      []PolicyInput `json:"policies"`
}

// Service manages the lender catalog.
type Service struct {
	store   store.Store
	catalog *cache.Catalog
	metrics *lendermetrics.Metrics
}

type Option func(*Service)

// WithCatalogCache enables the Redis catalog cache.
func WithCatalogCache(c *cache.Catalog) Option {
	return func(s *Service) { s.catalog = c }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *lendermetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(st store.Store, opts ...Option) *Service {
	s := &Service{store: st}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateLender registers a new lender.
func (s *Service) CreateLender(ctx context.Context, name string, isActive bool) (*models.Lender, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "lender name is required")
	}
	lender := &models.Lender{
		ID:        uuid.New(),
		Name:      name,
		IsActive:  isActive,
		CreatedAt: requestcontext.Now(ctx),
		Programs:  []models.Program{},
	}
	if err := s.store.CreateLender(ctx, lender); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create lender")
	}
	s.metrics.IncrementLendersCreated()
	s.catalog.Invalidate(ctx)
	return lender, nil
}

// CreateProgram attaches a program with its ordered policy criteria to an
// existing lender. Criteria positions record attachment order.
func (s *Service) CreateProgram(ctx context.Context, lenderID uuid.UUID, input ProgramInput) (*models.Program, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "program name is required")
	}
	if input.MinLoanAmount != nil && input.MaxLoanAmount != nil && *input.MinLoanAmount > *input.MaxLoanAmount {
		return nil, dErrors.New(dErrors.CodeBadRequest, "min_loan_amount exceeds max_loan_amount")
	}
	for _, p := range input.Policies {
		if strings.TrimSpace(p.CriteriaType) == "" {
			return nil, dErrors.New(dErrors.CodeBadRequest, "criteria_type is required")
		}
		if !match.KnownOperator(p.Operator) {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("unknown operator %q", p.Operator))
		}
	}

	program := &models.Program{
		ID:            uuid.New(),
		LenderID:      lenderID,
		Name:          strings.TrimSpace(input.Name),
		MinLoanAmount: input.MinLoanAmount,
		MaxLoanAmount: input.MaxLoanAmount,
		CreatedAt:     requestcontext.Now(ctx),
		Criteria:      make([]models.Criterion, 0, len(input.Policies)),
	}
	for i, p := range input.Policies {
		program.Criteria = append(program.Criteria, models.Criterion{
			ID:           uuid.New(),
			ProgramID:    program.ID,
			Position:     i,
			AttributeKey: p.CriteriaType,
			Operator:     p.Operator,
			Value:        p.Value,
		})
	}

	if err := s.store.CreateProgram(ctx, program); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "lender not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create program")
	}
	s.metrics.IncrementProgramsCreated()
	s.catalog.Invalidate(ctx)
	return program, nil
}

// ListLenders returns the full catalog, hydrated, in creation order.
func (s *Service) ListLenders(ctx context.Context) ([]models.Lender, error) {
	lenders, err := s.store.ListLenders(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list lenders")
	}
	return lenders, nil
}

// LenderNames maps lender and program IDs to display names across the whole
// catalog, inactive lenders included, for presenting stored match results.
func (s *Service) LenderNames(ctx context.Context) (lenders map[uuid.UUID]string, programs map[uuid.UUID]string, err error) {
	all, err := s.store.ListLenders(ctx)
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list lenders")
	}
	lenders = make(map[uuid.UUID]string, len(all))
	programs = make(map[uuid.UUID]string)
	for _, l := range all {
		lenders[l.ID] = l.Name
		for _, p := range l.Programs {
			programs[p.ID] = p.Name
		}
	}
	return lenders, programs, nil
}

// ActiveCatalog returns the engine-facing snapshot of all active lenders with
// their programs and ordered criteria, read through the cache when enabled.
func (s *Service) ActiveCatalog(ctx context.Context) ([]match.Lender, error) {
	if cached, ok := s.catalog.Get(ctx); ok {
		s.metrics.ObserveCatalogRead(true)
		return toSnapshot(cached), nil
	}
	s.metrics.ObserveCatalogRead(false)

	active, err := s.store.ListActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active catalog")
	}
	s.catalog.Set(ctx, active)
	return toSnapshot(active), nil
}

func toSnapshot(lenders []models.Lender) []match.Lender {
	snapshot := make([]match.Lender, 0, len(lenders))
	for _, l := range lenders {
		snapshot = append(snapshot, l.Snapshot())
	}
	return snapshot
}
