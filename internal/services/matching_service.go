package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/models"
	"gorm.io/gorm"
)

type MatcherService struct {
	DB *gorm.DB
}

func NewMatcherService(db *gorm.DB) *MatcherService {
	return &MatcherService{DB: db}
}

// FindCompanyFromEmail matches an email to the employer of one of the user's
// tracked jobs. It returns nil when nothing matches.
func (s *MatcherService) FindCompanyFromEmail(ctx context.Context, userID uuid.UUID, subject, rawSender string) (*models.Company, error) {
	// "Stripe Recruiting <jobs@stripe.com>" -> name="stripe recruiting", addr="jobs@stripe.com"
	senderName := ""
	senderAddr := strings.ToLower(rawSender)
	if parsed, err := mail.ParseAddress(rawSender); err == nil {
		senderName = strings.ToLower(parsed.Name)
		senderAddr = strings.ToLower(parsed.Address)
	}
	senderDomain := ""
	if parts := strings.Split(senderAddr, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}
	subjectLower := strings.ToLower(subject)

	var companies []models.Company
	err := s.DB.WithContext(ctx).
		Distinct("companies.*").
		Joins("JOIN jobs ON jobs.company_id = companies.id AND jobs.deleted_at IS NULL").
		Joins("JOIN user_jobs ON user_jobs.job_id = jobs.id AND user_jobs.deleted_at IS NULL").
		Where("user_jobs.user_id = ?", userID).
		Find(&companies).Error
	if err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}

	for i := range companies {
		name := strings.ToLower(companies[i].Name)
		// Very short names like "X" or "Go" match everything.
		if len(name) < 3 {
			continue
		}
		if strings.Contains(subjectLower, name) {
			return &companies[i], nil
		}
		if senderName != "" && strings.Contains(senderName, name) {
			return &companies[i], nil
		}
		// Only the part after '@' is checked.
		compact := strings.ReplaceAll(name, " ", "")
		if senderDomain != "" && strings.Contains(senderDomain, compact) {
			return &companies[i], nil
		}
	}
	return nil, nil
}
