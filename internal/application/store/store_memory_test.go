package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loanmatch/internal/application/models"
	"loanmatch/pkg/platform/sentinel"
)

func storedApplication(name string) *models.Application {
	id := uuid.New()
	return &models.Application{
		ID: id,
		Business: models.Business{
			ID:       id,
			Name:     name,
			Industry: "Construction",
			State:    "CA",
		},
		Guarantor:   models.Guarantor{ID: uuid.New(), FicoScore: 700},
		LoanRequest: models.LoanRequest{ID: uuid.New(), Amount: 50_000, TermMonths: 48},
	}
}

func TestInMemory_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	app := storedApplication("Acme Grading")

	require.NoError(t, store.SaveApplication(ctx, app))

	got, err := store.FindApplication(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.Business.Name, got.Business.Name)
	assert.Equal(t, app.LoanRequest.ID, got.LoanRequest.ID)
}

func TestInMemory_FindMissing(t *testing.T) {
	_, err := NewInMemory().FindApplication(context.Background(), uuid.New())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemory_ListNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	for i := range 5 {
		require.NoError(t, store.SaveApplication(ctx, storedApplication(fmt.Sprintf("biz-%d", i))))
	}

	all, err := store.ListApplications(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, "biz-4", all[0].Business.Name)
	assert.Equal(t, "biz-0", all[4].Business.Name)

	page, err := store.ListApplications(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "biz-3", page[0].Business.Name)
	assert.Equal(t, "biz-2", page[1].Business.Name)

	empty, err := store.ListApplications(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestInMemory_Delete(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	app := storedApplication("Acme Grading")
	require.NoError(t, store.SaveApplication(ctx, app))

	require.NoError(t, store.DeleteApplication(ctx, app.ID))
	_, err := store.FindApplication(ctx, app.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
	assert.ErrorIs(t, store.DeleteApplication(ctx, app.ID), sentinel.ErrNotFound)
}
