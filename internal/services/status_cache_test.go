package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRedisCache(t *testing.T) (*RedisStatusCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := NewRedisStatusCache(mr.Addr(), time.Minute, zap.NewNop())
	t.Cleanup(func() { _ = cache.Close() })
	return cache, mr
}

func TestRedisStatusCacheRoundTrip(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, cache.Ping(ctx))

	_, ok := cache.Get(ctx, user)
	assert.False(t, ok, "empty cache misses")

	want := &dtos.StatusCountsResponse{Counts: map[string]int64{"New": 2, "Applied": 1}, Total: 3, NewCount: 2}
	cache.Set(ctx, user, want)
	assert.True(t, mr.Exists(statusKey(user)))
	assert.Equal(t, time.Minute, mr.TTL(statusKey(user)))

	got, ok := cache.Get(ctx, user)
	require.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = cache.Get(ctx, uuid.New())
	assert.False(t, ok, "entries are per user")

	cache.Invalidate(ctx, user)
	assert.False(t, mr.Exists(statusKey(user)))
	_, ok = cache.Get(ctx, user)
	assert.False(t, ok)
}

func TestRedisStatusCacheExpiry(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()
	user := uuid.New()

	cache.Set(ctx, user, &dtos.StatusCountsResponse{Total: 1})
	mr.FastForward(2 * time.Minute)
	_, ok := cache.Get(ctx, user)
	assert.False(t, ok)
}

func TestRedisStatusCacheBadEntryAndOutage(t *testing.T) {
	cache, mr := newRedisCache(t)
	ctx := context.Background()
	user := uuid.New()

	require.NoError(t, mr.Set(statusKey(user), "not json"))
	_, ok := cache.Get(ctx, user)
	assert.False(t, ok, "undecodable entries are misses")

	mr.Close()
	_, ok = cache.Get(ctx, user)
	assert.False(t, ok)
	cache.Set(ctx, user, &dtos.StatusCountsResponse{Total: 1})
	cache.Invalidate(ctx, user)
	assert.Error(t, cache.Ping(ctx))
}

func TestStatusCountsThroughRedis(t *testing.T) {
	env := newTestEnv(t)
	cache, mr := newRedisCache(t)
	env.userJobs.Cache = cache
	ctx := context.Background()
	user := env.newUser(t, "a@example.com")
	uj := env.newJob(t, user, "Acme", "SRE")

	counts, err := env.userJobs.StatusCounts(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.NewCount)
	assert.True(t, mr.Exists(statusKey(user)))

	env.setStatus(t, user, uj, models.StatusApplied)
	assert.False(t, mr.Exists(statusKey(user)), "status change drops the cached counts")

	counts, err = env.userJobs.StatusCounts(ctx, user)
	require.NoError(t, err)
	assert.Zero(t, counts.NewCount)
	assert.Equal(t, int64(1), counts.Counts[string(models.StatusApplied)])
}
