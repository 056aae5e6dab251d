package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	Env      string

	DBDriver    string
	DatabaseDSN string

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	RedisAddr   string
	CORSOrigins []string

	GeminiAPIKey string
	GeminiModel  string

	GmailCredentialsFile string
	GmailTokenFile       string
	InboxUserEmail       string
	InboxPollInterval    time.Duration

	SalaryBucketWidth int64
}

// Load reads configuration from the environment. Call godotenv.Load first to
// pick up a local .env file.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		Env:                  getEnv("APP_ENV", "production"),
		DBDriver:             getEnv("DB_DRIVER", "postgres"),
		DatabaseDSN:          getEnv("DATABASE_DSN", "host=localhost user=postgres password=password dbname=jobtracker port=5432 sslmode=disable"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		AccessTokenTTL:       getDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:      getDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		CORSOrigins:          splitList(getEnv("CORS_ORIGINS", "*")),
		GeminiAPIKey:         os.Getenv("GEMINI_API_KEY"),
		GeminiModel:          getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GmailCredentialsFile: os.Getenv("GMAIL_CREDENTIALS_FILE"),
		GmailTokenFile:       getEnv("GMAIL_TOKEN_FILE", "token.json"),
		InboxUserEmail:       os.Getenv("INBOX_USER_EMAIL"),
		InboxPollInterval:    getDuration("INBOX_POLL_INTERVAL", 15*time.Minute),
		SalaryBucketWidth:    getInt("SALARY_BUCKET_WIDTH", 20000),
	}

	if cfg.JWTSecret == "" {
		return cfg, errors.New("JWT_SECRET must be set")
	}
	switch cfg.DBDriver {
	case "postgres", "sqlite":
	default:
		return cfg, errors.New("DB_DRIVER must be postgres or sqlite")
	}
	if cfg.SalaryBucketWidth <= 0 {
		return cfg, errors.New("SALARY_BUCKET_WIDTH must be positive")
	}
	return cfg, nil
}

// InboxEnabled reports whether the Gmail watcher has enough configuration to run.
func (c Config) InboxEnabled() bool {
	return c.GmailCredentialsFile != "" && c.InboxUserEmail != ""
}

func (c Config) Development() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}

func getInt(key string, fallback int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil {
		return n
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
