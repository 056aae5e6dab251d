package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	DefaultRecentLimit = 5
	MaxRecentLimit     = 50
)

// userJobSortColumns maps the sortColumn parameter to SQL for tracked-job lists.
var userJobSortColumns = map[string]string{
	"title":        "jobs.title",
	"employerName": "companies.name",
	"datePosted":   "jobs.date_posted",
	"minSalary":    "jobs.pay_min",
	"status":       "user_jobs.status",
	"updatedAt":    "user_jobs.updated_at",
}

type UserJobService struct {
	DB     *gorm.DB
	Cache  StatusCache
	Logger *zap.Logger
	now    func() time.Time
}

func NewUserJobService(db *gorm.DB, cache StatusCache, logger *zap.Logger) *UserJobService {
	if cache == nil {
		cache = NopStatusCache{}
	}
	return &UserJobService{DB: db, Cache: cache, Logger: logger, now: time.Now}
}

func (s *UserJobService) tracked(ctx context.Context, userID uuid.UUID) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&models.UserJob{}).
		Joins("JOIN jobs ON jobs.id = user_jobs.job_id AND jobs.deleted_at IS NULL").
		Joins("LEFT JOIN companies ON companies.id = jobs.company_id").
		Where("user_jobs.user_id = ?", userID)
}

// ListMine returns the caller's tracked jobs.
func (s *UserJobService) ListMine(ctx context.Context, userID uuid.UUID, q dtos.ListQuery) (dtos.PagedResponse[dtos.JobResponse], error) {
	return s.list(ctx, userID, nil, q)
}

// ListByStatus returns the caller's tracked jobs that currently have status.
func (s *UserJobService) ListByStatus(ctx context.Context, userID uuid.UUID, status models.Status, q dtos.ListQuery) (dtos.PagedResponse[dtos.JobResponse], error) {
	return s.list(ctx, userID, &status, q)
}

func (s *UserJobService) list(ctx context.Context, userID uuid.UUID, status *models.Status, q dtos.ListQuery) (dtos.PagedResponse[dtos.JobResponse], error) {
	var resp dtos.PagedResponse[dtos.JobResponse]

	order, err := orderClause(userJobSortColumns, q, "updatedAt", "user_jobs.id")
	if err != nil {
		return resp, err
	}

	query := func() *gorm.DB {
		tx := s.tracked(ctx, userID)
		if status != nil {
			tx = tx.Where("user_jobs.status = ?", *status)
		}
		return applySearch(tx, q.SearchTerm)
	}

	if err := query().Count(&resp.TotalCount).Error; err != nil {
		return resp, fmt.Errorf("count tracked jobs: %w", err)
	}

	var ujs []models.UserJob
	err = query().Select("user_jobs.*").
		Preload("Job.Company").
		Order(order).
		Offset(q.Offset()).Limit(q.PageSize).
		Find(&ujs).Error
	if err != nil {
		return resp, fmt.Errorf("list tracked jobs: %w", err)
	}
	resp.Items = userJobResponses(ujs)
	return resp, nil
}

// Recent returns the most recently updated tracked jobs.
func (s *UserJobService) Recent(ctx context.Context, userID uuid.UUID, limit int) (dtos.PagedResponse[dtos.JobResponse], error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	if limit > MaxRecentLimit {
		limit = MaxRecentLimit
	}

	var ujs []models.UserJob
	err := s.tracked(ctx, userID).Select("user_jobs.*").
		Preload("Job.Company").
		Order("user_jobs.updated_at DESC, user_jobs.id").
		Limit(limit).
		Find(&ujs).Error
	if err != nil {
		return dtos.PagedResponse[dtos.JobResponse]{}, fmt.Errorf("recent jobs: %w", err)
	}
	return dtos.PagedResponse[dtos.JobResponse]{
		Items:      userJobResponses(ujs),
		TotalCount: int64(len(ujs)),
	}, nil
}

// Track starts tracking an existing catalog job.
func (s *UserJobService) Track(ctx context.Context, userID, jobID uuid.UUID, status models.Status) (*models.UserJob, error) {
	if status == "" {
		status = models.StatusNew
	}
	var uj *models.UserJob
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			return notFound("job", err)
		}

		var existing int64
		if err := tx.Model(&models.UserJob{}).Where("user_id = ? AND job_id = ?", userID, jobID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return fmt.Errorf("%w: job %s is already tracked", ErrConflict, jobID)
		}

		var err error
		uj, err = createUserJob(tx, userID, job.ID, status, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.Cache.Invalidate(ctx, userID)
	return s.Get(ctx, userID, uj.ID)
}

// Get loads one tracked job of the caller.
func (s *UserJobService) Get(ctx context.Context, userID, userJobID uuid.UUID) (*models.UserJob, error) {
	var uj models.UserJob
	err := s.DB.WithContext(ctx).Preload("Job.Company").First(&uj, "id = ?", userJobID).Error
	if err != nil {
		return nil, notFound("tracked job", err)
	}
	if uj.UserID != userID {
		return nil, fmt.Errorf("%w: tracked job belongs to another user", ErrForbidden)
	}
	return &uj, nil
}

// UpdateStatus moves a tracked job to status and records the change.
// Setting the current status again only updates notes.
func (s *UserJobService) UpdateStatus(ctx context.Context, userID, userJobID uuid.UUID, status models.Status, notes *string, eventType, details string) (*models.UserJob, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, models.ErrInvalidStatus)
	}
	if eventType == "" {
		eventType = models.EventStatusChange
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var uj models.UserJob
		if err := tx.First(&uj, "id = ?", userJobID).Error; err != nil {
			return notFound("tracked job", err)
		}
		if uj.UserID != userID {
			return fmt.Errorf("%w: tracked job belongs to another user", ErrForbidden)
		}

		from := uj.Status
		updates := map[string]interface{}{}
		if notes != nil {
			updates["notes"] = *notes
		}
		if from != status {
			updates["status"] = status
			if status == models.StatusApplied && uj.AppliedAt == nil {
				updates["applied_at"] = s.now()
			}
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&uj).Updates(updates).Error; err != nil {
			return err
		}
		if from == status {
			return nil
		}

		if details == "" {
			details = fmt.Sprintf("Status changed from %s to %s", from, status)
		}
		return tx.Create(&models.JobEvent{
			UserJobID:  uj.ID,
			EventType:  eventType,
			FromStatus: from,
			ToStatus:   status,
			Details:    details,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.Cache.Invalidate(ctx, userID)
	s.Logger.Info("tracked job status updated",
		zap.String("user_job_id", userJobID.String()),
		zap.String("status", string(status)),
		zap.String("event", eventType))
	return s.Get(ctx, userID, userJobID)
}

// Untrack removes a tracked job and its history from the caller's pipeline.
// The job itself stays in the catalog.
func (s *UserJobService) Untrack(ctx context.Context, userID, userJobID uuid.UUID) error {
	uj, err := s.Get(ctx, userID, userJobID)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_job_id = ?", uj.ID).Delete(&models.JobEvent{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.UserJob{}, "id = ?", uj.ID).Error
	})
	if err != nil {
		return fmt.Errorf("untrack: %w", err)
	}
	s.Cache.Invalidate(ctx, userID)
	return nil
}

// StatusCounts returns the count for every status, the total and the New count.
func (s *UserJobService) StatusCounts(ctx context.Context, userID uuid.UUID) (*dtos.StatusCountsResponse, error) {
	if cached, ok := s.Cache.Get(ctx, userID); ok {
		return cached, nil
	}

	var rows []struct {
		Status models.Status
		Count  int64
	}
	err := s.DB.WithContext(ctx).Model(&models.UserJob{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}

	resp := &dtos.StatusCountsResponse{Counts: make(map[string]int64, len(models.AllStatuses))}
	for _, st := range models.AllStatuses {
		resp.Counts[string(st)] = 0
	}
	for _, r := range rows {
		resp.Counts[string(r.Status)] += r.Count
		resp.Total += r.Count
	}
	resp.NewCount = resp.Counts[string(models.StatusNew)]

	s.Cache.Set(ctx, userID, resp)
	return resp, nil
}

func createUserJob(tx *gorm.DB, userID, jobID uuid.UUID, status models.Status, now time.Time) (*models.UserJob, error) {
	uj := &models.UserJob{UserID: userID, JobID: jobID, Status: status}
	if status == models.StatusApplied {
		uj.AppliedAt = &now
	}
	if err := tx.Create(uj).Error; err != nil {
		return nil, fmt.Errorf("create tracked job: %w", err)
	}
	event := models.JobEvent{
		UserJobID: uj.ID,
		EventType: models.EventStatusChange,
		ToStatus:  status,
		Details:   fmt.Sprintf("Tracking started with status %s", status),
	}
	if err := tx.Create(&event).Error; err != nil {
		return nil, fmt.Errorf("create job event: %w", err)
	}
	return uj, nil
}

func applySearch(tx *gorm.DB, term string) *gorm.DB {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return tx
	}
	like := "%" + term + "%"
	return tx.Where(
		"LOWER(jobs.title) LIKE ? OR LOWER(companies.name) LIKE ? OR LOWER(jobs.description) LIKE ? OR LOWER(jobs.city) LIKE ?",
		like, like, like, like,
	)
}

func orderClause(columns map[string]string, q dtos.ListQuery, fallback, tiebreak string) (string, error) {
	name := q.SortColumn
	desc := q.SortDescending
	if name == "" {
		name = fallback
		desc = true
	}
	col, ok := columns[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown sort column %q", ErrInvalidInput, q.SortColumn)
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s, %s", col, dir, tiebreak), nil
}

func notFound(what string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
