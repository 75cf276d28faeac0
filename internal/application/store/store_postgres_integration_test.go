//go:build integration

package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"loanmatch/internal/application/models"
	"loanmatch/internal/application/store"
	"loanmatch/pkg/platform/sentinel"
	"loanmatch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "businesses")
	s.Require().NoError(err)
}

func f64(v float64) *float64 { return &v }
func i(v int) *int           { return &v }
func str(v string) *string   { return &v }

func testApplication(name string, createdAt time.Time) *models.Application {
	id := uuid.New()
	bdate := time.Date(2015, time.July, 1, 0, 0, 0, 0, time.UTC)
	return &models.Application{
		ID:        id,
		CreatedAt: createdAt,
		Business: models.Business{
			ID:              id,
			Name:            name,
			Industry:        "Construction",
			State:           "CA",
			YearsInBusiness: 7,
			AnnualRevenue:   f64(1_200_000),
			CreatedAt:       createdAt,
		},
		Guarantor: models.Guarantor{
			ID:             uuid.New(),
			FicoScore:      695,
			BankruptcyFlag: true,
			BankruptcyDate: &bdate,
		},
		BusinessCredit: &models.BusinessCredit{
			ID:          uuid.New(),
			PaynetScore: i(720),
			TradeLines:  i(6),
		},
		LoanRequest: models.LoanRequest{
			ID:            uuid.New(),
			Amount:        150_000,
			TermMonths:    60,
			EquipmentType: str("excavator"),
			EquipmentYear: i(2021),
			CreatedAt:     createdAt,
		},
	}
}

func (s *PostgresStoreSuite) TestSaveAndFindRoundTrip() {
	ctx := context.Background()
	app := testApplication("Acme Grading", time.Now().UTC().Truncate(time.Microsecond))

	s.Require().NoError(s.store.SaveApplication(ctx, app))

	got, err := s.store.FindApplication(ctx, app.ID)
	s.Require().NoError(err)
	s.Equal("Acme Grading", got.Business.Name)
	s.Equal(695, got.Guarantor.FicoScore)
	s.True(got.Guarantor.BankruptcyFlag)
	s.Require().NotNil(got.Guarantor.BankruptcyDate)
	s.Require().NotNil(got.BusinessCredit)
	s.Equal(720, *got.BusinessCredit.PaynetScore)
	s.Equal(app.LoanRequest.ID, got.LoanRequest.ID)
	s.InDelta(150_000, got.LoanRequest.Amount, 0.001)
	s.Require().NotNil(got.LoanRequest.EquipmentType)
	s.Equal("excavator", *got.LoanRequest.EquipmentType)
}

func (s *PostgresStoreSuite) TestSaveWithoutCreditRecord() {
	ctx := context.Background()
	app := testApplication("No Bureau LLC", time.Now().UTC())
	app.BusinessCredit = nil

	s.Require().NoError(s.store.SaveApplication(ctx, app))

	got, err := s.store.FindApplication(ctx, app.ID)
	s.Require().NoError(err)
	s.Nil(got.BusinessCredit)
}

func (s *PostgresStoreSuite) TestFindMissing() {
	_, err := s.store.FindApplication(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListNewestFirstWithPaging() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)
	for n := range 3 {
		app := testApplication(fmt.Sprintf("biz-%d", n), base.Add(time.Duration(n)*time.Second))
		s.Require().NoError(s.store.SaveApplication(ctx, app))
	}

	all, err := s.store.ListApplications(ctx, 0, 10)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("biz-2", all[0].Business.Name)
	s.Equal("biz-0", all[2].Business.Name)

	page, err := s.store.ListApplications(ctx, 1, 1)
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Equal("biz-1", page[0].Business.Name)
}

func (s *PostgresStoreSuite) TestDeleteCascades() {
	ctx := context.Background()
	app := testApplication("Doomed LLC", time.Now().UTC())
	s.Require().NoError(s.store.SaveApplication(ctx, app))

	s.Require().NoError(s.store.DeleteApplication(ctx, app.ID))

	_, err := s.store.FindApplication(ctx, app.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	var count int
	err = s.postgres.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM loan_requests WHERE business_id = $1`, app.ID).Scan(&count)
	s.Require().NoError(err)
	s.Zero(count)

	s.ErrorIs(s.store.DeleteApplication(ctx, app.ID), sentinel.ErrNotFound)
}
