// Package service orchestrates the application lifecycle: intake, matching
// against the active lender catalog, and presentation of stored results.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	appmetrics "loanmatch/internal/application/metrics"
	"loanmatch/internal/application/models"
	appstore "loanmatch/internal/application/store"
	"loanmatch/internal/event"
	lenderservice "loanmatch/internal/lender/service"
	"loanmatch/internal/match"
	matchstore "loanmatch/internal/match/store"
	dErrors "loanmatch/pkg/domain-errors"
	"loanmatch/pkg/platform/sentinel"
	"loanmatch/pkg/requestcontext"
)

const defaultPageSize = 50

// SubmitResult is the synchronous response to an application submission:
// the stored identifiers plus the full screening outcome.
type SubmitResult struct {
	ApplicationID uuid.UUID             `json:"application_id"`
	LoanRequestID uuid.UUID             `json:"loan_request_id"`
	Matches       []models.MatchSummary `json:"matches"`
}

// Detail is one application with its screening status and stored verdicts.
type Detail struct {
	models.Application
	Status  string                `json:"status"`
	Matches []models.MatchSummary `json:"matches"`
}

// Service owns the application domain.
type Service struct {
	apps    appstore.Store
	matches matchstore.Store
	lenders *lenderservice.Service
	engine  *match.Engine
	events  *event.Publisher
	metrics *appmetrics.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer
}

type Option func(*Service)

// WithPublisher enables domain event publishing.
func WithPublisher(p *event.Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithMetrics enables Prometheus instrumentation.
func WithMetrics(m *appmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(apps appstore.Store, matches matchstore.Store, lenders *lenderservice.Service, engine *match.Engine, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		apps:    apps,
		matches: matches,
		lenders: lenders,
		engine:  engine,
		logger:  logger,
		tracer:  otel.Tracer("loanmatch/application"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates and stores the application, screens it against the active
// catalog, persists the verdicts, and returns them. Matching and persistence
// happen synchronously so the caller always sees the final outcome.
func (s *Service) Submit(ctx context.Context, app models.Application) (*SubmitResult, error) {
	start := time.Now()
	if err := app.Validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	app.ID = uuid.New()
	app.CreatedAt = now
	app.Business.ID = app.ID
	app.Business.CreatedAt = now
	app.Guarantor.ID = uuid.New()
	if app.BusinessCredit != nil {
		app.BusinessCredit.ID = uuid.New()
	}
	app.LoanRequest.ID = uuid.New()
	app.LoanRequest.CreatedAt = now

	if err := s.apps.SaveApplication(ctx, &app); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save application")
	}

	catalog, err := s.lenders.ActiveCatalog(ctx)
	if err != nil {
		return nil, err
	}

	evalCtx, span := s.tracer.Start(ctx, "match.evaluate")
	results := s.engine.EvaluateApplication(app, catalog, now)
	span.End()

	persistCtx, span := s.tracer.Start(evalCtx, "match.persist")
	err = s.matches.SaveResults(persistCtx, results)
	span.End()
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save match results")
	}

	eligible := 0
	for i := range results {
		if results[i].Eligible {
			eligible++
		}
	}
	s.events.PublishMatched(ctx, event.ApplicationMatched{
		ApplicationID:     app.ID,
		LoanRequestID:     app.LoanRequest.ID,
		ProgramsEvaluated: len(results),
		EligiblePrograms:  eligible,
		OccurredAt:        now,
	})

	s.metrics.ObserveSubmit(start)
	s.logger.InfoContext(ctx, "application screened",
		"application_id", app.ID,
		"programs_evaluated", len(results),
		"eligible_programs", eligible,
	)

	return &SubmitResult{
		ApplicationID: app.ID,
		LoanRequestID: app.LoanRequest.ID,
		Matches:       summarize(results, snapshotNames(catalog)),
	}, nil
}

// List pages through stored applications, newest first.
func (s *Service) List(ctx context.Context, offset, limit int) ([]models.Application, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	apps, err := s.apps.ListApplications(ctx, offset, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list applications")
	}
	return apps, nil
}

// Get returns one application joined with its stored verdicts. An application
// with no stored results yet reads as still processing.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Detail, error) {
	app, err := s.findApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	matches, err := s.storedMatches(ctx, app.LoanRequest.ID)
	if err != nil {
		return nil, err
	}
	status := "complete"
	if len(matches) == 0 {
		status = "processing"
	}
	return &Detail{Application: app, Status: status, Matches: matches}, nil
}

// Matches returns the stored verdicts for one application with lender and
// program identities resolved to display names. Names resolve against the
// whole catalog so results survive a lender being deactivated later.
func (s *Service) Matches(ctx context.Context, id uuid.UUID) ([]models.MatchSummary, error) {
	app, err := s.findApplication(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.storedMatches(ctx, app.LoanRequest.ID)
}

func (s *Service) findApplication(ctx context.Context, id uuid.UUID) (models.Application, error) {
	app, err := s.apps.FindApplication(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Application{}, dErrors.New(dErrors.CodeNotFound, "application not found")
		}
		return models.Application{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load application")
	}
	return app, nil
}

func (s *Service) storedMatches(ctx context.Context, loanRequestID uuid.UUID) ([]models.MatchSummary, error) {
	results, err := s.matches.ListByLoanRequest(ctx, loanRequestID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load match results")
	}
	lenderNames, programNames, err := s.lenders.LenderNames(ctx)
	if err != nil {
		return nil, err
	}
	return summarize(results, names{lenders: lenderNames, programs: programNames}), nil
}

// Delete removes the application together with its stored verdicts.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	app, err := s.findApplication(ctx, id)
	if err != nil {
		return err
	}
	if err := s.matches.DeleteByLoanRequest(ctx, app.LoanRequest.ID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete match results")
	}
	if err := s.apps.DeleteApplication(ctx, id); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete application")
	}
	s.metrics.IncrementDeleted()
	return nil
}

type names struct {
	lenders  map[uuid.UUID]string
	programs map[uuid.UUID]string
}

func snapshotNames(catalog []match.Lender) names {
	n := names{
		lenders:  make(map[uuid.UUID]string, len(catalog)),
		programs: make(map[uuid.UUID]string),
	}
	for _, l := range catalog {
		n.lenders[l.ID] = l.Name
		for _, p := range l.Programs {
			n.programs[p.ID] = p.Name
		}
	}
	return n
}

func summarize(results []match.MatchResult, n names) []models.MatchSummary {
	summaries := make([]models.MatchSummary, 0, len(results))
	for _, r := range results {
		lenderName, ok := n.lenders[r.LenderID]
		if !ok {
			lenderName = "Unknown"
		}
		programName, ok := n.programs[r.ProgramID]
		if !ok {
			programName = "Unknown"
		}
		summaries = append(summaries, models.MatchSummary{
			LenderName:       lenderName,
			ProgramName:      programName,
			Eligible:         r.Eligible,
			FitScore:         r.FitScore,
			RejectionReasons: r.RejectionReasons,
		})
	}
	return summaries
}
