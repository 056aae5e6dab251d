package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/database"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type memoryCache struct {
	mu          sync.Mutex
	entries     map[uuid.UUID]*dtos.StatusCountsResponse
	invalidated int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[uuid.UUID]*dtos.StatusCountsResponse{}}
}

func (c *memoryCache) Get(_ context.Context, id uuid.UUID) (*dtos.StatusCountsResponse, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.entries[id]
	return v, ok
}

func (c *memoryCache) Set(_ context.Context, id uuid.UUID, v *dtos.StatusCountsResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[id] = v
}

func (c *memoryCache) Invalidate(_ context.Context, id uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	c.invalidated++
}

type testEnv struct {
	db        *gorm.DB
	cache     *memoryCache
	users     *UserService
	userJobs  *UserJobService
	jobs      *JobService
	docs      *DocumentService
	analytics *AnalyticsService
	matcher   *MatcherService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := database.NewTestDB(t)
	logger := zap.NewNop()
	cache := newMemoryCache()
	users := NewUserService(db, auth.NewIssuer("test-secret", time.Hour, 24*time.Hour), logger)
	userJobs := NewUserJobService(db, cache, logger)
	return &testEnv{
		db:        db,
		cache:     cache,
		users:     users,
		userJobs:  userJobs,
		jobs:      NewJobService(db, userJobs, logger),
		docs:      NewDocumentService(db, logger),
		analytics: NewAnalyticsService(db, users, 20000),
		matcher:   NewMatcherService(db),
	}
}

func (e *testEnv) newUser(t *testing.T, email string) uuid.UUID {
	t.Helper()
	_, err := e.users.Register(context.Background(), &dtos.RegisterRequest{
		Email:    email,
		Password: "password123",
	})
	require.NoError(t, err)
	var u models.User
	require.NoError(t, e.db.Where("email = ?", email).First(&u).Error)
	return u.ID
}

type jobOpt func(*dtos.JobCreationRequest)

func withPay(lo, hi int64) jobOpt {
	return func(r *dtos.JobCreationRequest) {
		if lo > 0 {
			d := decimal.NewFromInt(lo)
			r.MinSalary = &d
		}
		if hi > 0 {
			d := decimal.NewFromInt(hi)
			r.MaxSalary = &d
		}
	}
}

func withStatus(s models.Status) jobOpt {
	return func(r *dtos.JobCreationRequest) { r.Status = string(s) }
}

func withWorkType(w string) jobOpt {
	return func(r *dtos.JobCreationRequest) { r.WorkType = w }
}

func (e *testEnv) newJob(t *testing.T, userID uuid.UUID, employer, title string, opts ...jobOpt) *models.UserJob {
	t.Helper()
	req := &dtos.JobCreationRequest{EmployerName: employer, Title: title}
	for _, o := range opts {
		o(req)
	}
	uj, err := e.jobs.CreateJob(context.Background(), userID, req)
	require.NoError(t, err)
	return uj
}

func (e *testEnv) setStatus(t *testing.T, userID uuid.UUID, uj *models.UserJob, st models.Status) {
	t.Helper()
	_, err := e.userJobs.UpdateStatus(context.Background(), userID, uj.ID, st, nil, "", "")
	require.NoError(t, err)
}
