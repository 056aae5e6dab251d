package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"go.uber.org/zap"
)

// StatusCache holds per-user status counts between changes.
type StatusCache interface {
	Get(ctx context.Context, userID uuid.UUID) (*dtos.StatusCountsResponse, bool)
	Set(ctx context.Context, userID uuid.UUID, counts *dtos.StatusCountsResponse)
	Invalidate(ctx context.Context, userID uuid.UUID)
}

type RedisStatusCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisStatusCache(addr string, ttl time.Duration, logger *zap.Logger) *RedisStatusCache {
	return &RedisStatusCache{
		client: redis.NewClient(&redis.Options{Addr: addr}),
		ttl:    ttl,
		logger: logger,
	}
}

func statusKey(userID uuid.UUID) string {
	return "jobdash:status-counts:" + userID.String()
}

func (c *RedisStatusCache) Get(ctx context.Context, userID uuid.UUID) (*dtos.StatusCountsResponse, bool) {
	b, err := c.client.Get(ctx, statusKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Warn("status cache get failed", zap.Error(err))
		}
		return nil, false
	}
	var counts dtos.StatusCountsResponse
	if err := json.Unmarshal(b, &counts); err != nil {
		return nil, false
	}
	return &counts, true
}

func (c *RedisStatusCache) Set(ctx context.Context, userID uuid.UUID, counts *dtos.StatusCountsResponse) {
	b, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, statusKey(userID), b, c.ttl).Err(); err != nil {
		c.logger.Warn("status cache set failed", zap.Error(err))
	}
}

func (c *RedisStatusCache) Invalidate(ctx context.Context, userID uuid.UUID) {
	if err := c.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		c.logger.Warn("status cache invalidate failed", zap.Error(err))
	}
}

func (c *RedisStatusCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisStatusCache) Close() error {
	return c.client.Close()
}

// NopStatusCache is used when no redis is configured.
type NopStatusCache struct{}

func (NopStatusCache) Get(context.Context, uuid.UUID) (*dtos.StatusCountsResponse, bool) {
	return nil, false
}
func (NopStatusCache) Set(context.Context, uuid.UUID, *dtos.StatusCountsResponse) {}
func (NopStatusCache) Invalidate(context.Context, uuid.UUID)                      {}
