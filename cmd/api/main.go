package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/config"
	"github.com/justsurfingit/jobdash/internal/database"
	"github.com/justsurfingit/jobdash/internal/handlers"
	"github.com/justsurfingit/jobdash/internal/services"
	"go.uber.org/zap"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

func main() {
	// A missing .env is fine outside development.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("invalid configuration", zap.Error(err))
	}

	logger := newLogger(cfg)
	defer logger.Sync()
	if envErr != nil {
		logger.Debug("no .env file loaded", zap.Error(envErr))
	}

	db, err := database.Connect(cfg, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cache services.StatusCache
	if cfg.RedisAddr != "" {
		redisCache := services.NewRedisStatusCache(cfg.RedisAddr, 10*time.Minute, logger)
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unreachable, status counts are not cached", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		} else {
			cache = redisCache
			defer redisCache.Close()
		}
	}

	tokens := auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	users := services.NewUserService(db, tokens, logger)
	userJobs := services.NewUserJobService(db, cache, logger)
	jobs := services.NewJobService(db, userJobs, logger)
	documents := services.NewDocumentService(db, logger)
	analytics := services.NewAnalyticsService(db, users, cfg.SalaryBucketWidth)

	llm, err := services.NewLLMService(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		logger.Warn("LLM features disabled", zap.Error(err))
	}

	if cfg.InboxEnabled() && llm != nil {
		startInboxWatcher(ctx, cfg, logger, db, llm, userJobs)
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.Deps{
		DB:          db,
		Tokens:      tokens,
		Users:       users,
		UserJobs:    userJobs,
		Jobs:        jobs,
		Documents:   documents,
		Analytics:   analytics,
		LLM:         llm,
		Logger:      logger,
		CORSOrigins: cfg.CORSOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.Development() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewExample()
	}
	return logger
}

// startInboxWatcher connects to Gmail and polls the inbox in the background.
// Failures only disable the watcher.
func startInboxWatcher(ctx context.Context, cfg config.Config, logger *zap.Logger, db *gorm.DB, llm *services.LLMService, userJobs *services.UserJobService) {
	httpClient, err := auth.GmailClient(ctx, cfg.GmailCredentialsFile, cfg.GmailTokenFile, os.Stdin, os.Stdout, logger)
	if err != nil {
		logger.Warn("gmail authorization failed, inbox watcher disabled", zap.Error(err))
		return
	}
	gmailService, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		logger.Warn("gmail service unavailable, inbox watcher disabled", zap.Error(err))
		return
	}
	logger.Info("gmail connected", zap.String("inbox", cfg.InboxUserEmail))

	mailbox := services.NewGmailMailbox(gmailService, logger)
	emails := services.NewEmailService(db, llm, mailbox, services.NewMatcherService(db), userJobs, cfg.InboxUserEmail, logger)
	emails.StartWatcher(ctx, cfg.InboxPollInterval)
}
