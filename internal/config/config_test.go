package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "")
	t.Setenv("ACCESS_TOKEN_TTL", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, time.Hour, cfg.AccessTokenTTL)
	assert.Equal(t, int64(20000), cfg.SalaryBucketWidth)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.False(t, cfg.InboxEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("ACCESS_TOKEN_TTL", "15m")
	t.Setenv("CORS_ORIGINS", "http://a.test, http://b.test")
	t.Setenv("GMAIL_CREDENTIALS_FILE", "credentials.json")
	t.Setenv("INBOX_USER_EMAIL", "me@example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins)
	assert.True(t, cfg.InboxEnabled())
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("DB_DRIVER", "mysql")
	_, err = Load()
	require.Error(t, err)
}
