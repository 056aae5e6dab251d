package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentService manages resumes and cover letters. Every document belongs
// to exactly one user and is invisible to the others.
type DocumentService struct {
	DB     *gorm.DB
	Logger *zap.Logger
}

func NewDocumentService(db *gorm.DB, logger *zap.Logger) *DocumentService {
	return &DocumentService{DB: db, Logger: logger}
}

type ownedDocument interface {
	models.Resume | models.CoverLetter
}

func getOwned[T ownedDocument](ctx context.Context, db *gorm.DB, userID, id uuid.UUID, what string) (*T, error) {
	var doc T
	if err := db.WithContext(ctx).First(&doc, "id = ?", id).Error; err != nil {
		return nil, notFound(what, err)
	}
	var owner uuid.UUID
	switch d := any(&doc).(type) {
	case *models.Resume:
		owner = d.UserID
	case *models.CoverLetter:
		owner = d.UserID
	}
	if owner != userID {
		return nil, fmt.Errorf("%w: %s belongs to another user", ErrForbidden, what)
	}
	return &doc, nil
}

func listOwned[T ownedDocument](ctx context.Context, db *gorm.DB, userID uuid.UUID) ([]T, error) {
	docs := []T{}
	err := db.WithContext(ctx).Where("user_id = ?", userID).Order("updated_at DESC").Find(&docs).Error
	return docs, err
}

func (s *DocumentService) ListResumes(ctx context.Context, userID uuid.UUID) ([]models.Resume, error) {
	docs, err := listOwned[models.Resume](ctx, s.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("list resumes: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) GetResume(ctx context.Context, userID, id uuid.UUID) (*models.Resume, error) {
	return getOwned[models.Resume](ctx, s.DB, userID, id, "resume")
}

func (s *DocumentService) CreateResume(ctx context.Context, userID uuid.UUID, req *dtos.ResumeRequest) (*models.Resume, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	resume := &models.Resume{
		UserID:    userID,
		Title:     strings.TrimSpace(req.Title),
		Content:   req.Content,
		IsDefault: req.IsDefault,
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if resume.IsDefault {
			if err := clearDefaultResume(tx, userID); err != nil {
				return err
			}
		}
		return tx.Create(resume).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create resume: %w", err)
	}
	s.Logger.Info("resume created", zap.String("resume_id", resume.ID.String()))
	return resume, nil
}

func (s *DocumentService) UpdateResume(ctx context.Context, userID, id uuid.UUID, req *dtos.ResumeRequest) (*models.Resume, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	resume, err := s.GetResume(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if req.IsDefault && !resume.IsDefault {
			if err := clearDefaultResume(tx, userID); err != nil {
				return err
			}
		}
		return tx.Model(resume).Updates(map[string]interface{}{
			"title":      strings.TrimSpace(req.Title),
			"content":    req.Content,
			"is_default": req.IsDefault,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("update resume: %w", err)
	}
	return s.GetResume(ctx, userID, id)
}

func (s *DocumentService) DeleteResume(ctx context.Context, userID, id uuid.UUID) error {
	resume, err := s.GetResume(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(resume).Error; err != nil {
		return fmt.Errorf("delete resume: %w", err)
	}
	return nil
}

func clearDefaultResume(tx *gorm.DB, userID uuid.UUID) error {
	return tx.Model(&models.Resume{}).
		Where("user_id = ? AND is_default = ?", userID, true).
		Update("is_default", false).Error
}

func (s *DocumentService) ListCoverLetters(ctx context.Context, userID uuid.UUID) ([]models.CoverLetter, error) {
	docs, err := listOwned[models.CoverLetter](ctx, s.DB, userID)
	if err != nil {
		return nil, fmt.Errorf("list cover letters: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) GetCoverLetter(ctx context.Context, userID, id uuid.UUID) (*models.CoverLetter, error) {
	return getOwned[models.CoverLetter](ctx, s.DB, userID, id, "cover letter")
}

func (s *DocumentService) CreateCoverLetter(ctx context.Context, userID uuid.UUID, req *dtos.CoverLetterRequest) (*models.CoverLetter, error) {
	letter := &models.CoverLetter{UserID: userID}
	if err := s.applyCoverLetter(ctx, letter, req); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Create(letter).Error; err != nil {
		return nil, fmt.Errorf("create cover letter: %w", err)
	}
	s.Logger.Info("cover letter created", zap.String("cover_letter_id", letter.ID.String()))
	return letter, nil
}

func (s *DocumentService) UpdateCoverLetter(ctx context.Context, userID, id uuid.UUID, req *dtos.CoverLetterRequest) (*models.CoverLetter, error) {
	letter, err := s.GetCoverLetter(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyCoverLetter(ctx, letter, req); err != nil {
		return nil, err
	}
	err = s.DB.WithContext(ctx).Model(letter).Select("title", "content", "job_id").Updates(letter).Error
	if err != nil {
		return nil, fmt.Errorf("update cover letter: %w", err)
	}
	return s.GetCoverLetter(ctx, userID, id)
}

func (s *DocumentService) DeleteCoverLetter(ctx context.Context, userID, id uuid.UUID) error {
	letter, err := s.GetCoverLetter(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(letter).Error; err != nil {
		return fmt.Errorf("delete cover letter: %w", err)
	}
	return nil
}

func (s *DocumentService) applyCoverLetter(ctx context.Context, letter *models.CoverLetter, req *dtos.CoverLetterRequest) error {
	if strings.TrimSpace(req.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	letter.Title = strings.TrimSpace(req.Title)
	letter.Content = req.Content
	letter.JobID = nil

	if req.JobID != nil && *req.JobID != "" {
		jobID, err := uuid.Parse(*req.JobID)
		if err != nil {
			return fmt.Errorf("%w: jobId is not a valid id", ErrInvalidInput)
		}
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Job{}).Where("id = ?", jobID).Count(&count).Error; err != nil {
			return fmt.Errorf("check job: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: job", ErrNotFound)
		}
		letter.JobID = &jobID
	}
	return nil
}
