package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)

type UserService struct {
	DB     *gorm.DB
	Tokens *auth.Issuer
	Logger *zap.Logger
}

func NewUserService(db *gorm.DB, tokens *auth.Issuer, logger *zap.Logger) *UserService {
	return &UserService{DB: db, Tokens: tokens, Logger: logger}
}

func (s *UserService) Register(ctx context.Context, req *dtos.RegisterRequest) (auth.TokenPair, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return auth.TokenPair{}, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return auth.TokenPair{}, fmt.Errorf("%w: email is already registered", ErrConflict)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Settings: models.UserSettings{
			DefaultPageSize: dtos.DefaultPageSize,
			SalaryCurrency:  "USD",
		},
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		return auth.TokenPair{}, fmt.Errorf("create user: %w", err)
	}
	s.Logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.Tokens.Issue(user.ID, user.Email)
}

func (s *UserService) Login(ctx context.Context, req *dtos.LoginRequest) (auth.TokenPair, error) {
	var user models.User
	err := s.DB.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return auth.TokenPair{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
		}
		return auth.TokenPair{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return auth.TokenPair{}, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}
	return s.Tokens.Issue(user.ID, user.Email)
}

// Refresh exchanges a refresh token for a new token pair.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	claims, err := s.Tokens.Verify(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	user, err := s.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return auth.TokenPair{}, fmt.Errorf("%w: user no longer exists", ErrUnauthorized)
		}
		return auth.TokenPair{}, err
	}
	return s.Tokens.Issue(user.ID, user.Email)
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return nil, notFound("user", err)
	}
	return &user, nil
}

func (s *UserService) Settings(ctx context.Context, userID uuid.UUID) (dtos.SettingsResponse, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return dtos.SettingsResponse{}, err
	}
	return settingsResponse(user), nil
}

func (s *UserService) UpdateSettings(ctx context.Context, userID uuid.UUID, req *dtos.SettingsRequest) (dtos.SettingsResponse, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return dtos.SettingsResponse{}, err
	}

	if req.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.DefaultPageSize != nil {
		if *req.DefaultPageSize < 1 || *req.DefaultPageSize > dtos.MaxPageSize {
			return dtos.SettingsResponse{}, fmt.Errorf("%w: defaultPageSize must be between 1 and %d", ErrInvalidInput, dtos.MaxPageSize)
		}
		user.Settings.DefaultPageSize = *req.DefaultPageSize
	}
	if req.SalaryCurrency != nil {
		cur := strings.ToUpper(strings.TrimSpace(*req.SalaryCurrency))
		if !currencyPattern.MatchString(cur) {
			return dtos.SettingsResponse{}, fmt.Errorf("%w: salaryCurrency must be a 3-letter code", ErrInvalidInput)
		}
		user.Settings.SalaryCurrency = cur
	}
	if req.WeeklyGoal != nil {
		if *req.WeeklyGoal < 0 {
			return dtos.SettingsResponse{}, fmt.Errorf("%w: weeklyGoal cannot be negative", ErrInvalidInput)
		}
		user.Settings.WeeklyGoal = *req.WeeklyGoal
	}
	if req.EmailSync != nil {
		user.Settings.EmailSync = *req.EmailSync
	}

	err = s.DB.WithContext(ctx).Model(user).Select(
		"display_name",
		"settings_default_page_size",
		"settings_salary_currency",
		"settings_weekly_goal",
		"settings_email_sync",
	).Updates(user).Error
	if err != nil {
		return dtos.SettingsResponse{}, fmt.Errorf("update settings: %w", err)
	}
	return settingsResponse(user), nil
}

// PageSize returns the user's default page size, or the global default.
func (s *UserService) PageSize(ctx context.Context, userID uuid.UUID) int {
	user, err := s.Get(ctx, userID)
	if err != nil || user.Settings.DefaultPageSize <= 0 {
		return dtos.DefaultPageSize
	}
	return user.Settings.DefaultPageSize
}

func settingsResponse(u *models.User) dtos.SettingsResponse {
	return dtos.SettingsResponse{
		Email:           u.Email,
		DisplayName:     u.DisplayName,
		DefaultPageSize: u.Settings.DefaultPageSize,
		SalaryCurrency:  u.Settings.SalaryCurrency,
		WeeklyGoal:      u.Settings.WeeklyGoal,
		EmailSync:       u.Settings.EmailSync,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
