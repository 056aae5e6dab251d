package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var catalogSortColumns = map[string]string{
	"title":        "jobs.title",
	"employerName": "companies.name",
	"datePosted":   "jobs.date_posted",
	"minSalary":    "jobs.pay_min",
	"status":       "user_jobs.status",
	"updatedAt":    "jobs.updated_at",
}

type JobService struct {
	DB       *gorm.DB
	UserJobs *UserJobService
	Logger   *zap.Logger
}

func NewJobService(db *gorm.DB, userJobs *UserJobService, logger *zap.Logger) *JobService {
	return &JobService{
		DB:       db,
		UserJobs: userJobs,
		Logger:   logger,
	}
}

// CreateJob adds a job to the catalog and tracks it for the caller.
func (s *JobService) CreateJob(ctx context.Context, userID uuid.UUID, req *dtos.JobCreationRequest) (*models.UserJob, error) {
	status := models.StatusNew
	if req.Status != "" {
		st, err := models.ParseStatus(req.Status)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		status = st
	}
	if err := validatePay(req.MinSalary, req.MaxSalary); err != nil {
		return nil, err
	}

	var uj *models.UserJob
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Creates the employer if it does not exist yet.
		company, err := firstOrCreateCompany(tx, req.EmployerName)
		if err != nil {
			return err
		}

		job := &models.Job{
			CompanyID:   company.ID,
			Title:       strings.TrimSpace(req.Title),
			WorkType:    req.WorkType,
			JobType:     req.JobType,
			PayMin:      nullDecimal(req.MinSalary),
			PayMax:      nullDecimal(req.MaxSalary),
			PayCurrency: strings.ToUpper(req.SalaryCurrency),
			City:        req.City,
			State:       req.State,
			Country:     req.Country,
			URL:         req.URL,
			DatePosted:  req.DatePosted,
			Description: req.Description,
			CreatedBy:   userID,
		}
		if err := tx.Create(job).Error; err != nil {
			return fmt.Errorf("create job: %w", err)
		}

		uj, err = createUserJob(tx, userID, job.ID, status, time.Now())
		return err
	})
	if err != nil {
		return nil, err
	}

	s.UserJobs.Cache.Invalidate(ctx, userID)
	s.Logger.Info("job created",
		zap.String("job_id", uj.JobID.String()),
		zap.String("employer", req.EmployerName),
		zap.String("status", string(status)))
	return s.UserJobs.Get(ctx, userID, uj.ID)
}

// GetJob returns a catalog job, with the caller's status when tracked.
func (s *JobService) GetJob(ctx context.Context, userID, jobID uuid.UUID) (dtos.JobResponse, error) {
	var job models.Job
	if err := s.DB.WithContext(ctx).Preload("Company").First(&job, "id = ?", jobID).Error; err != nil {
		return dtos.JobResponse{}, notFound("job", err)
	}

	var ujs []models.UserJob
	err := s.DB.WithContext(ctx).Where("user_id = ? AND job_id = ?", userID, jobID).Limit(1).Find(&ujs).Error
	if err != nil {
		return dtos.JobResponse{}, fmt.Errorf("load tracking: %w", err)
	}
	if len(ujs) == 0 {
		return ToJobResponse(job, nil), nil
	}
	return ToJobResponse(job, &ujs[0]), nil
}

// UpdateJob edits catalog fields. Only the creator may edit a job.
func (s *JobService) UpdateJob(ctx context.Context, userID, jobID uuid.UUID, req *dtos.JobUpdateRequest) (dtos.JobResponse, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var job models.Job
		if err := tx.First(&job, "id = ?", jobID).Error; err != nil {
			return notFound("job", err)
		}
		if job.CreatedBy != userID {
			return fmt.Errorf("%w: only the creator can edit a job", ErrForbidden)
		}

		lo, hi := req.MinSalary, req.MaxSalary
		if lo == nil && job.PayMin.Valid {
			lo = &job.PayMin.Decimal
		}
		if hi == nil && job.PayMax.Valid {
			hi = &job.PayMax.Decimal
		}
		if err := validatePay(lo, hi); err != nil {
			return err
		}

		updates := map[string]interface{}{}
		if req.EmployerName != nil {
			company, err := firstOrCreateCompany(tx, *req.EmployerName)
			if err != nil {
				return err
			}
			updates["company_id"] = company.ID
		}
		if req.Title != nil {
			if strings.TrimSpace(*req.Title) == "" {
				return fmt.Errorf("%w: title cannot be empty", ErrInvalidInput)
			}
			updates["title"] = strings.TrimSpace(*req.Title)
		}
		setString(updates, "work_type", req.WorkType)
		setString(updates, "job_type", req.JobType)
		setString(updates, "city", req.City)
		setString(updates, "state", req.State)
		setString(updates, "country", req.Country)
		setString(updates, "url", req.URL)
		setString(updates, "description", req.Description)
		if req.SalaryCurrency != nil {
			updates["pay_currency"] = strings.ToUpper(*req.SalaryCurrency)
		}
		if req.MinSalary != nil {
			updates["pay_min"] = nullDecimal(req.MinSalary)
		}
		if req.MaxSalary != nil {
			updates["pay_max"] = nullDecimal(req.MaxSalary)
		}
		if req.DatePosted != nil {
			updates["date_posted"] = *req.DatePosted
		}
		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&job).Updates(updates).Error
	})
	if err != nil {
		return dtos.JobResponse{}, err
	}
	return s.GetJob(ctx, userID, jobID)
}

// SearchJobs searches the whole catalog by title, employer, description and city.
func (s *JobService) SearchJobs(ctx context.Context, userID uuid.UUID, q dtos.ListQuery) (dtos.PagedResponse[dtos.JobResponse], error) {
	var resp dtos.PagedResponse[dtos.JobResponse]

	order, err := orderClause(catalogSortColumns, q, "updatedAt", "jobs.id")
	if err != nil {
		return resp, err
	}

	query := func() *gorm.DB {
		tx := s.DB.WithContext(ctx).Model(&models.Job{}).
			Joins("LEFT JOIN companies ON companies.id = jobs.company_id").
			Joins("LEFT JOIN user_jobs ON user_jobs.job_id = jobs.id AND user_jobs.user_id = ? AND user_jobs.deleted_at IS NULL", userID)
		return applySearch(tx, q.SearchTerm)
	}

	if err := query().Count(&resp.TotalCount).Error; err != nil {
		return resp, fmt.Errorf("count jobs: %w", err)
	}

	var jobs []models.Job
	err = query().Select("jobs.*").
		Preload("Company").
		Order(order).
		Offset(q.Offset()).Limit(q.PageSize).
		Find(&jobs).Error
	if err != nil {
		return resp, fmt.Errorf("search jobs: %w", err)
	}

	tracked := map[uuid.UUID]*models.UserJob{}
	if len(jobs) > 0 {
		ids := make([]uuid.UUID, 0, len(jobs))
		for _, j := range jobs {
			ids = append(ids, j.ID)
		}
		var ujs []models.UserJob
		if err := s.DB.WithContext(ctx).Where("user_id = ? AND job_id IN ?", userID, ids).Find(&ujs).Error; err != nil {
			return resp, fmt.Errorf("load tracking: %w", err)
		}
		for i := range ujs {
			tracked[ujs[i].JobID] = &ujs[i]
		}
	}

	resp.Items = make([]dtos.JobResponse, 0, len(jobs))
	for _, j := range jobs {
		resp.Items = append(resp.Items, ToJobResponse(j, tracked[j.ID]))
	}
	return resp, nil
}

func firstOrCreateCompany(tx *gorm.DB, name string) (*models.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: employer name is required", ErrInvalidInput)
	}
	var company models.Company
	if err := tx.Where(models.Company{Name: name}).FirstOrCreate(&company).Error; err != nil {
		return nil, fmt.Errorf("find or create company: %w", err)
	}
	return &company, nil
}

func validatePay(lo, hi *decimal.Decimal) error {
	if lo != nil && lo.IsNegative() {
		return fmt.Errorf("%w: minSalary is negative", ErrInvalidInput)
	}
	if hi != nil && hi.IsNegative() {
		return fmt.Errorf("%w: maxSalary is negative", ErrInvalidInput)
	}
	if lo != nil && hi != nil && lo.GreaterThan(*hi) {
		return fmt.Errorf("%w: minSalary is greater than maxSalary", ErrInvalidInput)
	}
	return nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func setString(updates map[string]interface{}, column string, v *string) {
	if v != nil {
		updates[column] = *v
	}
}
