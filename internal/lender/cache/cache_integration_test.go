//go:build integration

package cache_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"loanmatch/internal/lender/cache"
	"loanmatch/internal/lender/models"
	"loanmatch/pkg/testutil/containers"
)

type CatalogCacheSuite struct {
	suite.Suite
	redis   *containers.RedisContainer
	catalog *cache.Catalog
}

func TestCatalogCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(CatalogCacheSuite))
}

func (s *CatalogCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.catalog = cache.New(s.redis.Client, time.Minute, slog.Default())
}

func (s *CatalogCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.Client.FlushAll(context.Background()).Err())
}

func snapshot() []models.Lender {
	return []models.Lender{{
		ID:       uuid.New(),
		Name:     "Falcon Equipment Finance",
		IsActive: true,
		Programs: []models.Program{},
	}}
}

func (s *CatalogCacheSuite) TestSetGetRoundTrip() {
	ctx := context.Background()
	lenders := snapshot()

	_, ok := s.catalog.Get(ctx)
	s.False(ok)

	s.catalog.Set(ctx, lenders)

	got, ok := s.catalog.Get(ctx)
	s.Require().True(ok)
	s.Require().Len(got, 1)
	s.Equal(lenders[0].ID, got[0].ID)
	s.Equal("Falcon Equipment Finance", got[0].Name)
}

func (s *CatalogCacheSuite) TestInvalidate() {
	ctx := context.Background()
	s.catalog.Set(ctx, snapshot())
	s.catalog.Invalidate(ctx)

	_, ok := s.catalog.Get(ctx)
	s.False(ok)
}

func (s *CatalogCacheSuite) TestCorruptEntryReadsAsMissAndIsDropped() {
	ctx := context.Background()
	s.Require().NoError(s.redis.Client.Set(ctx, "loanmatch:catalog:active", "not json", time.Minute).Err())

	_, ok := s.catalog.Get(ctx)
	s.False(ok)

	exists, err := s.redis.Client.Exists(ctx, "loanmatch:catalog:active").Result()
	s.Require().NoError(err)
	s.Zero(exists)
}

func (s *CatalogCacheSuite) TestEntryExpires() {
	ctx := context.Background()
	short := cache.New(s.redis.Client, 100*time.Millisecond, slog.Default())
	short.Set(ctx, snapshot())

	time.Sleep(300 * time.Millisecond)
	_, ok := short.Get(ctx)
	s.False(ok)
}
