// Package cache provides an optional Redis read-through cache for the active
// lender catalog, so hot matching traffic does not hit Postgres on every
// submission.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"loanmatch/internal/lender/models"
	platformredis "loanmatch/internal/platform/redis"
)

const catalogKey = "loanmatch:catalog:active"

// Catalog caches the active catalog snapshot. A nil *Catalog (or one built
// without a Redis client) is a no-op, keeping Redis optional.
type Catalog struct {
	client *platformredis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func New(client *platformredis.Client, ttl time.Duration, logger *slog.Logger) *Catalog {
	if client == nil {
		return nil
	}
	return &Catalog{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached snapshot and whether it was present. Cache failures
// report a miss; the caller falls through to the store.
func (c *Catalog) Get(ctx context.Context) ([]models.Lender, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, catalogKey).Bytes()
	if err != nil {
		if !errors.Is(err, goredis.Nil) {
			c.logger.WarnContext(ctx, "catalog cache read failed", "error", err.Error())
		}
		return nil, false
	}
	var lenders []models.Lender
	if err := json.Unmarshal(raw, &lenders); err != nil {
		c.logger.WarnContext(ctx, "catalog cache entry corrupt, dropping", "error", err.Error())
		c.Invalidate(ctx)
		return nil, false
	}
	return lenders, true
}

// Set stores the snapshot best-effort.
func (c *Catalog) Set(ctx context.Context, lenders []models.Lender) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(lenders)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, catalogKey, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache write failed", "error", err.Error())
	}
}

// Invalidate drops the snapshot after catalog mutations.
func (c *Catalog) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	if err := c.client.Del(ctx, catalogKey).Err(); err != nil {
		c.logger.WarnContext(ctx, "catalog cache invalidation failed", "error", err.Error())
	}
}
