package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var emailsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "jobdash",
	Name:      "inbox_emails_processed_total",
	Help:      "Inbox emails processed by outcome.",
}, []string{"outcome"})

const outcomeError = "error"

// EmailAnalyzer is the LLM side of the inbox sync.
type EmailAnalyzer interface {
	IdentifyJobRole(ctx context.Context, titles []string, subject, body string) int
	AnalyzeEmailStatus(ctx context.Context, company, subject, body string) (string, error)
}

type EmailService struct {
	DB        *gorm.DB
	Analyzer  EmailAnalyzer
	Matcher   *MatcherService
	UserJobs  *UserJobService
	Mailbox   Mailbox
	UserEmail string
	Logger    *zap.Logger
}

func NewEmailService(db *gorm.DB, analyzer EmailAnalyzer, mailbox Mailbox, matcher *MatcherService, userJobs *UserJobService, userEmail string, logger *zap.Logger) *EmailService {
	return &EmailService{
		DB:        db,
		Analyzer:  analyzer,
		Mailbox:   mailbox,
		Matcher:   matcher,
		UserJobs:  userJobs,
		UserEmail: normalizeEmail(userEmail),
		Logger:    logger,
	}
}

// StartWatcher polls the mailbox every interval until ctx is cancelled.
func (s *EmailService) StartWatcher(ctx context.Context, interval time.Duration) {
	if s.Mailbox == nil || s.Analyzer == nil {
		s.Logger.Warn("inbox watcher disabled: mailbox or LLM not configured")
		return
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			if err := s.SyncEmails(ctx); err != nil {
				s.Logger.Error("inbox sync failed", zap.Error(err))
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

// SyncEmails runs one sync cycle.
func (s *EmailService) SyncEmails(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	var user models.User
	if err := s.DB.WithContext(ctx).Where("email = ?", s.UserEmail).First(&user).Error; err != nil {
		return notFound("inbox user "+s.UserEmail, err)
	}
	if !user.Settings.EmailSync {
		s.Logger.Debug("inbox sync switched off in settings", zap.String("user_id", user.ID.String()))
		return nil
	}

	var (
		ids          []string
		newHistoryID uint64
		err          error
	)
	if user.LastHistoryID == 0 {
		s.Logger.Info("first inbox run, running full sync")
		ids, newHistoryID, err = s.Mailbox.FullSync(ctx)
	} else {
		ids, newHistoryID, err = s.Mailbox.IncrementalSync(ctx, user.LastHistoryID)
		if errors.Is(err, ErrHistoryExpired) {
			s.Logger.Warn("inbox history expired, falling back to full sync")
			ids, newHistoryID, err = s.Mailbox.FullSync(ctx)
		}
	}
	if err != nil {
		return fmt.Errorf("list messages: %w", err)
	}

	s.Logger.Info("inbox sync", zap.Int("candidates", len(ids)))
	failed := 0
	for _, id := range ids {
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.ProcessedEmail{}).Where("id = ?", id).Count(&count).Error; err != nil {
			s.Logger.Warn("dedup lookup failed, skipping message", zap.String("message_id", id), zap.Error(err))
			emailsProcessed.WithLabelValues(outcomeError).Inc()
			failed++
			continue
		}
		if count > 0 {
			emailsProcessed.WithLabelValues("duplicate").Inc()
			continue
		}

		msg, err := s.Mailbox.Get(ctx, id)
		if err != nil {
			s.Logger.Warn("fetch message failed", zap.String("message_id", id), zap.Error(err))
			failed++
			continue
		}
		outcome := s.processSingleEmail(ctx, &user, msg)
		emailsProcessed.WithLabelValues(outcome).Inc()
		// Failed messages stay unrecorded so the next cycle retries them.
		if outcome == outcomeError {
			failed++
			continue
		}

		if err := s.DB.WithContext(ctx).Create(&models.ProcessedEmail{ID: id}).Error; err != nil {
			s.Logger.Warn("mark message processed failed", zap.String("message_id", id), zap.Error(err))
		}
	}

	// The bookmark only moves once every message got a final outcome, so the
	// next cycle lists the failed ones again.
	if failed > 0 {
		s.Logger.Warn("inbox bookmark kept for retry", zap.Int("failed", failed))
		return nil
	}
	if newHistoryID > user.LastHistoryID {
		err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("last_history_id", newHistoryID).Error
		if err != nil {
			return fmt.Errorf("save history bookmark: %w", err)
		}
		s.Logger.Debug("inbox bookmark updated", zap.Uint64("history_id", newHistoryID))
	}
	return nil
}

// processSingleEmail runs match -> pick job -> analyze -> update and returns
// an outcome label.
func (s *EmailService) processSingleEmail(ctx context.Context, user *models.User, msg *MailMessage) string {
	log := s.Logger.With(zap.String("message_id", msg.ID), zap.String("from", msg.From))

	company, err := s.Matcher.FindCompanyFromEmail(ctx, user.ID, msg.Subject, msg.From)
	if err != nil {
		log.Warn("company match failed", zap.Error(err))
		return outcomeError
	}
	if company == nil {
		log.Debug("skipped: sender and subject match no tracked employer")
		return "unmatched"
	}
	log = log.With(zap.String("company", company.Name))

	var active []models.UserJob
	err = s.DB.WithContext(ctx).
		Preload("Job").
		Joins("JOIN jobs ON jobs.id = user_jobs.job_id AND jobs.deleted_at IS NULL").
		Where("user_jobs.user_id = ? AND jobs.company_id = ?", user.ID, company.ID).
		Where("user_jobs.status NOT IN ?", []models.Status{models.StatusAccepted, models.StatusRejected, models.StatusPass, models.StatusArchived}).
		Order("user_jobs.created_at, user_jobs.id").
		Find(&active).Error
	if err != nil {
		log.Warn("load active applications failed", zap.Error(err))
		return outcomeError
	}
	if len(active) == 0 {
		log.Debug("skipped: no active applications for employer")
		return "no_active_job"
	}

	target := &active[0]
	if len(active) > 1 {
		titles := make([]string, 0, len(active))
		for _, uj := range active {
			titles = append(titles, uj.Job.Title)
		}
		idx := s.Analyzer.IdentifyJobRole(ctx, titles, msg.Subject, msg.Body)
		if idx < 0 || idx >= len(active) {
			log.Info("skipped: could not tell which application the email is about", zap.Strings("titles", titles))
			return "ambiguous"
		}
		target = &active[idx]
	}

	analysis, err := s.Analyzer.AnalyzeEmailStatus(ctx, company.Name, msg.Subject, msg.Body)
	if err != nil {
		log.Warn("email analysis failed", zap.Error(err))
		return outcomeError
	}
	var result struct {
		Status  string `json:"status"`
		Summary string `json:"summary"`
	}
	if err := json.Unmarshal([]byte(analysis), &result); err != nil {
		log.Warn("email analysis is not JSON", zap.Error(err), zap.String("raw", analysis))
		return outcomeError
	}
	if result.Status == "NO_CHANGE" || result.Status == "UNKNOWN" {
		return "no_change"
	}
	status, err := models.ParseStatus(result.Status)
	if err != nil {
		log.Warn("email analysis returned unknown status", zap.String("status", result.Status))
		return outcomeError
	}
	if status == target.Status {
		return "no_change"
	}

	details := fmt.Sprintf("Status changed to %s from email. Summary: %s", status, result.Summary)
	if _, err := s.UserJobs.UpdateStatus(ctx, user.ID, target.ID, status, nil, models.EventEmailUpdate, details); err != nil {
		log.Warn("status update failed", zap.Error(err))
		return outcomeError
	}
	log.Info("application updated from email",
		zap.String("job", target.Job.Title),
		zap.String("from_status", string(target.Status)),
		zap.String("to_status", string(status)))
	return "updated"
}
