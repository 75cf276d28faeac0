//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"loanmatch/internal/lender/models"
	"loanmatch/internal/lender/store"
	"loanmatch/internal/match"
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
	err := s.postgres.TruncateTables(context.Background(), "lenders")
	s.Require().NoError(err)
}

func testLender(name string, active bool) *models.Lender {
	return &models.Lender{ID: uuid.New(), Name: name, IsActive: active, CreatedAt: time.Now().UTC()}
}

func (s *PostgresStoreSuite) TestCreateAndFindLender() {
	ctx := context.Background()
	lender := testLender("Falcon Equipment Finance", true)

	s.Require().NoError(s.store.CreateLender(ctx, lender))

	got, err := s.store.FindLender(ctx, lender.ID)
	s.Require().NoError(err)
	s.Equal("Falcon Equipment Finance", got.Name)
	s.True(got.IsActive)
}

func (s *PostgresStoreSuite) TestFindLenderMissing() {
	_, err := s.store.FindLender(context.Background(), uuid.New())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestCreateProgramWithCriteriaOrder() {
	ctx := context.Background()
	lender := testLender("Credit Box Lender", true)
	s.Require().NoError(s.store.CreateLender(ctx, lender))

	program := &models.Program{
		ID:       uuid.New(),
		LenderID: lender.ID,
		Name:     "Tier 2 Program",
		Criteria: []models.Criterion{
			{ID: uuid.New(), Position: 0, AttributeKey: "years_since_bankruptcy", Operator: ">=", Value: match.NumberValue(7)},
			{ID: uuid.New(), Position: 1, AttributeKey: "fico_score", Operator: ">=", Value: match.NumberValue(710)},
			{ID: uuid.New(), Position: 2, AttributeKey: "state", Operator: "in", Value: match.ListValue(match.StringValue("CA"), match.StringValue("NV"))},
		},
	}
	for i := range program.Criteria {
		program.Criteria[i].ProgramID = program.ID
	}
	s.Require().NoError(s.store.CreateProgram(ctx, program))

	got, err := s.store.FindLender(ctx, lender.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Programs, 1)
	criteria := got.Programs[0].Criteria
	s.Require().Len(criteria, 3)
	s.Equal("years_since_bankruptcy", criteria[0].AttributeKey)
	s.Equal("fico_score", criteria[1].AttributeKey)
	s.Equal("state", criteria[2].AttributeKey)
	s.True(match.ListValue(match.StringValue("CA"), match.StringValue("NV")).Equal(criteria[2].Value))
}

func (s *PostgresStoreSuite) TestMultipleProgramsKeepOwnCriteria() {
	ctx := context.Background()
	lender := testLender("Advantage+", true)
	s.Require().NoError(s.store.CreateLender(ctx, lender))

	base := time.Now().UTC()
	programs := []*models.Program{
		{ID: uuid.New(), LenderID: lender.ID, Name: "Tier 1", CreatedAt: base, Criteria: []models.Criterion{
			{ID: uuid.New(), Position: 0, AttributeKey: "fico_score", Operator: ">=", Value: match.NumberValue(740)},
			{ID: uuid.New(), Position: 1, AttributeKey: "bankruptcy", Operator: "==", Value: match.BoolValue(false)},
		}},
		{ID: uuid.New(), LenderID: lender.ID, Name: "Tier 2", CreatedAt: base.Add(time.Second), Criteria: []models.Criterion{
			{ID: uuid.New(), Position: 0, AttributeKey: "fico_score", Operator: ">=", Value: match.NumberValue(680)},
		}},
		{ID: uuid.New(), LenderID: lender.ID, Name: "Tier 3", CreatedAt: base.Add(2 * time.Second), Criteria: []models.Criterion{
			{ID: uuid.New(), Position: 0, AttributeKey: "years_in_business", Operator: ">=", Value: match.NumberValue(5)},
			{ID: uuid.New(), Position: 1, AttributeKey: "state", Operator: "not in", Value: match.ListValue(match.StringValue("NV"))},
		}},
	}
	for _, p := range programs {
		for i := range p.Criteria {
			p.Criteria[i].ProgramID = p.ID
		}
		s.Require().NoError(s.store.CreateProgram(ctx, p))
	}

	got, err := s.store.FindLender(ctx, lender.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Programs, 3)

	s.Equal("Tier 1", got.Programs[0].Name)
	s.Require().Len(got.Programs[0].Criteria, 2)
	s.Equal("fico_score", got.Programs[0].Criteria[0].AttributeKey)
	s.True(match.NumberValue(740).Equal(got.Programs[0].Criteria[0].Value))
	s.Equal("bankruptcy", got.Programs[0].Criteria[1].AttributeKey)

	s.Equal("Tier 2", got.Programs[1].Name)
	s.Require().Len(got.Programs[1].Criteria, 1)
	s.True(match.NumberValue(680).Equal(got.Programs[1].Criteria[0].Value))

	s.Equal("Tier 3", got.Programs[2].Name)
	s.Require().Len(got.Programs[2].Criteria, 2)
	s.Equal("years_in_business", got.Programs[2].Criteria[0].AttributeKey)
	s.Equal("state", got.Programs[2].Criteria[1].AttributeKey)
}

func (s *PostgresStoreSuite) TestCreateProgramUnknownLender() {
	err := s.store.CreateProgram(context.Background(), &models.Program{
		ID:       uuid.New(),
		LenderID: uuid.New(),
		Name:     "Orphan",
	})
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListActiveFiltersAndOrders() {
	ctx := context.Background()
	base := time.Now().UTC()
	first := testLender("First Lender", true)
	first.CreatedAt = base
	second := testLender("Second Lender", true)
	second.CreatedAt = base.Add(time.Second)
	dormant := testLender("Dormant Lender", false)
	dormant.CreatedAt = base.Add(2 * time.Second)

	s.Require().NoError(s.store.CreateLender(ctx, first))
	s.Require().NoError(s.store.CreateLender(ctx, second))
	s.Require().NoError(s.store.CreateLender(ctx, dormant))

	active, err := s.store.ListActive(ctx)
	s.Require().NoError(err)
	s.Require().Len(active, 2)
	s.Equal("First Lender", active[0].Name)
	s.Equal("Second Lender", active[1].Name)

	all, err := s.store.ListLenders(ctx)
	s.Require().NoError(err)
	s.Len(all, 3)
}

func (s *PostgresStoreSuite) TestCreateLenderWithEmbeddedPrograms() {
	ctx := context.Background()
	lender := testLender("Advantage+", true)
	program := models.Program{
		ID:            uuid.New(),
		LenderID:      lender.ID,
		Name:          "Broker Program",
		MinLoanAmount: f64(10_000),
		MaxLoanAmount: f64(75_000),
		Criteria: []models.Criterion{
			{ID: uuid.New(), Position: 0, AttributeKey: "bankruptcy", Operator: "==", Value: match.BoolValue(false)},
		},
	}
	program.Criteria[0].ProgramID = program.ID
	lender.Programs = []models.Program{program}

	s.Require().NoError(s.store.CreateLender(ctx, lender))

	got, err := s.store.FindLender(ctx, lender.ID)
	s.Require().NoError(err)
	s.Require().Len(got.Programs, 1)
	s.Require().NotNil(got.Programs[0].MinLoanAmount)
	s.InDelta(10_000, *got.Programs[0].MinLoanAmount, 0.001)
}

func f64(v float64) *float64 { return &v }
