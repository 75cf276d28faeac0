package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanmatch/internal/lender/store"
	"loanmatch/internal/match"
)

// A lender with several programs must hydrate each program's own criteria;
// criteria attached while later program rows are still being appended must
// not land on a stale copy.
func TestListLendersHydratesEachProgramsCriteria(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	lenderID := uuid.New()
	standardID := uuid.New()
	plusID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM lenders`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "name", "is_active", "created_at"}).
			AddRow(lenderID.String(), "Falcon Equipment Finance", true, now))
	mock.ExpectQuery(`FROM lender_programs`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "lender_id", "name", "min_loan_amount", "max_loan_amount", "created_at"}).
			AddRow(standardID.String(), lenderID.String(), "Standard Program", nil, nil, now).
			AddRow(plusID.String(), lenderID.String(), "Plus Program", nil, nil, now))
	mock.ExpectQuery(`FROM policy_criteria`).WillReturnRows(
		sqlmock.NewRows([]string{"id", "program_id", "position", "attribute_key", "operator", "value"}).
			AddRow(uuid.New().String(), standardID.String(), 0, "fico_score", ">=", []byte(`680`)).
			AddRow(uuid.New().String(), standardID.String(), 1, "bankruptcy", "==", []byte(`false`)).
			AddRow(uuid.New().String(), plusID.String(), 0, "years_in_business", ">=", []byte(`10`)))

	lenders, err := store.NewPostgres(db).ListLenders(context.Background())
	require.NoError(t, err)
	require.Len(t, lenders, 1)
	require.Len(t, lenders[0].Programs, 2)

	standard := lenders[0].Programs[0]
	assert.Equal(t, "Standard Program", standard.Name)
	require.Len(t, standard.Criteria, 2)
	assert.Equal(t, "fico_score", standard.Criteria[0].AttributeKey)
	assert.True(t, match.NumberValue(680).Equal(standard.Criteria[0].Value))
	assert.Equal(t, "bankruptcy", standard.Criteria[1].AttributeKey)

	plus := lenders[0].Programs[1]
	assert.Equal(t, "Plus Program", plus.Name)
	require.Len(t, plus.Criteria, 1)
	assert.Equal(t, "years_in_business", plus.Criteria[0].AttributeKey)
	assert.True(t, match.NumberValue(10).Equal(plus.Criteria[0].Value))

	assert.NoError(t, mock.ExpectationsWereMet())
}
