package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanmatch/internal/application/models"
	appstore "loanmatch/internal/application/store"
	lenderservice "loanmatch/internal/lender/service"
	lenderstore "loanmatch/internal/lender/store"
	"loanmatch/internal/match"
	matchstore "loanmatch/internal/match/store"
	dErrors "loanmatch/pkg/domain-errors"
	"loanmatch/pkg/requestcontext"
)

func ptr[T any](v T) *T { return &v }

func newTestService(t *testing.T) (*Service, *lenderservice.Service) {
	t.Helper()
	lenders := lenderservice.New(lenderstore.NewInMemory())
	engine := match.NewEngine(nil)
	svc := New(appstore.NewInMemory(), matchstore.NewInMemory(), lenders, engine, slog.Default())
	return svc, lenders
}

func seedCatalog(t *testing.T, lenders *lenderservice.Service) {
	t.Helper()
	ctx := context.Background()

	falcon, err := lenders.CreateLender(ctx, "Falcon Equipment Finance", true)
	require.NoError(t, err)
	_, err = lenders.CreateProgram(ctx, falcon.ID, lenderservice.ProgramInput{
		Name:          "Standard Program",
		MinLoanAmount: ptr(15_000.0),
		MaxLoanAmount: ptr(150_000.0),
		Policies: []lenderservice.PolicyInput{
			{CriteriaType: "years_since_bankruptcy", Operator: ">=", Value: match.NumberValue(15)},
			{CriteriaType: "fico_score", Operator: ">=", Value: match.NumberValue(680)},
		},
	})
	require.NoError(t, err)

	advantage, err := lenders.CreateLender(ctx, "Advantage+", true)
	require.NoError(t, err)
	_, err = lenders.CreateProgram(ctx, advantage.ID, lenderservice.ProgramInput{
		Name:          "Broker Program",
		MinLoanAmount: ptr(10_000.0),
		MaxLoanAmount: ptr(75_000.0),
		Policies: []lenderservice.PolicyInput{
			{CriteriaType: "bankruptcy", Operator: "==", Value: match.BoolValue(false)},
			{CriteriaType: "fico_score", Operator: ">=", Value: match.NumberValue(680)},
			{CriteriaType: "years_in_business", Operator: ">=", Value: match.NumberValue(3)},
		},
	})
	require.NoError(t, err)
}

func submission() models.Application {
	return models.Application{
		Business: models.Business{
			Name:            "Canyon Hauling",
			Industry:        "Transportation",
			State:           "AZ",
			YearsInBusiness: 5,
			AnnualRevenue:   ptr(400_000.0),
		},
		Guarantor: models.Guarantor{FicoScore: 720},
		LoanRequest: models.LoanRequest{
			Amount:     50_000,
			TermMonths: 48,
		},
	}
}

func TestService_SubmitScreensAndPersists(t *testing.T) {
	ctx := requestcontext.WithTime(context.Background(), time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	svc, lenders := newTestService(t)
	seedCatalog(t, lenders)

	result, err := svc.Submit(ctx, submission())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, result.ApplicationID)
	assert.NotEqual(t, uuid.Nil, result.LoanRequestID)
	require.Len(t, result.Matches, 2)

	falcon := result.Matches[0]
	assert.Equal(t, "Falcon Equipment Finance", falcon.LenderName)
	assert.Equal(t, "Standard Program", falcon.ProgramName)
	assert.True(t, falcon.Eligible)
	assert.Equal(t, 100, falcon.FitScore)

	advantage := result.Matches[1]
	assert.Equal(t, "Advantage+", advantage.LenderName)
	assert.True(t, advantage.Eligible)

	stored, err := svc.Matches(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, result.Matches, stored)
}

func TestService_SubmitRecentBankruptcy(t *testing.T) {
	now := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)
	svc, lenders := newTestService(t)
	seedCatalog(t, lenders)

	app := submission()
	date := now.AddDate(-2, 0, 0)
	app.Guarantor.BankruptcyFlag = true
	app.Guarantor.BankruptcyDate = &date

	result, err := svc.Submit(ctx, app)
	require.NoError(t, err)
	require.Len(t, result.Matches, 2)
	for _, m := range result.Matches {
		assert.False(t, m.Eligible)
		assert.Zero(t, m.FitScore)
		assert.NotEmpty(t, m.RejectionReasons)
	}
}

func TestService_SubmitRejectsInvalidApplication(t *testing.T) {
	svc, _ := newTestService(t)
	app := submission()
	app.Guarantor.FicoScore = 200

	_, err := svc.Submit(context.Background(), app)
	assert.True(t, dErrors.Is(err, dErrors.CodeBadRequest))

	apps, err := svc.List(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestService_SubmitWithEmptyCatalog(t *testing.T) {
	svc, _ := newTestService(t)

	result, err := svc.Submit(context.Background(), submission())
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestService_GetJoinsMatchesAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, lenders := newTestService(t)
	seedCatalog(t, lenders)

	result, err := svc.Submit(ctx, submission())
	require.NoError(t, err)

	detail, err := svc.Get(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, "complete", detail.Status)
	assert.Len(t, detail.Matches, 2)
	assert.Equal(t, "Canyon Hauling", detail.Business.Name)
}

func TestService_GetWithoutResultsReadsProcessing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	result, err := svc.Submit(ctx, submission())
	require.NoError(t, err)

	detail, err := svc.Get(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, "processing", detail.Status)
}

func TestService_GetMissing(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.Get(context.Background(), uuid.New())
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

type countingAppStore struct {
	appstore.Store
	finds int
}

func (c *countingAppStore) FindApplication(ctx context.Context, id uuid.UUID) (models.Application, error) {
	c.finds++
	return c.Store.FindApplication(ctx, id)
}

func TestService_GetLoadsApplicationOnce(t *testing.T) {
	ctx := context.Background()
	lenders := lenderservice.New(lenderstore.NewInMemory())
	seedCatalog(t, lenders)
	apps := &countingAppStore{Store: appstore.NewInMemory()}
	svc := New(apps, matchstore.NewInMemory(), lenders, match.NewEngine(nil), slog.Default())

	result, err := svc.Submit(ctx, submission())
	require.NoError(t, err)

	apps.finds = 0
	detail, err := svc.Get(ctx, result.ApplicationID)
	require.NoError(t, err)
	assert.Equal(t, "complete", detail.Status)
	require.Len(t, detail.Matches, 2)
	assert.Equal(t, 1, apps.finds)
}

func TestService_MatchesNamesUnknownLenderGracefully(t *testing.T) {
	// Store results referencing lenders absent from the catalog, as happens
	// when results outlive catalog edits.
	ctx := context.Background()
	lenders := lenderservice.New(lenderstore.NewInMemory())
	apps := appstore.NewInMemory()
	matches := matchstore.NewInMemory()
	svc := New(apps, matches, lenders, match.NewEngine(nil), slog.Default())

	app := submission()
	app.ID = uuid.New()
	app.Business.ID = app.ID
	app.LoanRequest.ID = uuid.New()
	require.NoError(t, apps.SaveApplication(ctx, &app))
	require.NoError(t, matches.SaveResults(ctx, []match.MatchResult{{
		ID:            uuid.New(),
		LoanRequestID: app.LoanRequest.ID,
		LenderID:      uuid.New(),
		ProgramID:     uuid.New(),
		Eligible:      true,
		FitScore:      100,
	}}))

	got, err := svc.Matches(ctx, app.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Unknown", got[0].LenderName)
	assert.Equal(t, "Unknown", got[0].ProgramName)
}

func TestService_DeleteRemovesApplicationAndResults(t *testing.T) {
	ctx := context.Background()
	svc, lenders := newTestService(t)
	seedCatalog(t, lenders)

	result, err := svc.Submit(ctx, submission())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, result.ApplicationID))

	_, err = svc.Get(ctx, result.ApplicationID)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
	err = svc.Delete(ctx, result.ApplicationID)
	assert.True(t, dErrors.Is(err, dErrors.CodeNotFound))
}

func TestService_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	first := submission()
	first.Business.Name = "First Co"
	_, err := svc.Submit(ctx, first)
	require.NoError(t, err)

	second := submission()
	second.Business.Name = "Second Co"
	_, err = svc.Submit(ctx, second)
	require.NoError(t, err)

	apps, err := svc.List(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "Second Co", apps[0].Business.Name)
	assert.Equal(t, "First Co", apps[1].Business.Name)
}
