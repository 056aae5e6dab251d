package services

import (
	"context"
	"testing"

	"github.com/justsurfingit/jobdash/internal/auth"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pair, err := env.users.Register(ctx, &dtos.RegisterRequest{Email: " Ada@Example.com ", Password: "password123", DisplayName: "Ada"})
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)

	_, err = env.users.Register(ctx, &dtos.RegisterRequest{Email: "ada@example.com", Password: "password456"})
	assert.ErrorIs(t, err, ErrConflict)

	pair, err = env.users.Login(ctx, &dtos.LoginRequest{Email: "ADA@example.com", Password: "password123"})
	require.NoError(t, err)
	claims, err := env.users.Tokens.Verify(pair.AccessToken, auth.TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", claims.Email)

	_, err = env.users.Login(ctx, &dtos.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.users.Login(ctx, &dtos.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pair, err := env.users.Register(ctx, &dtos.RegisterRequest{Email: "a@example.com", Password: "password123"})
	require.NoError(t, err)

	next, err := env.users.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.AccessToken)

	_, err = env.users.Refresh(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized, "access tokens cannot refresh")

	_, err = env.users.Refresh(ctx, "garbage")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestSettings(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "a@example.com")

	s, err := env.users.Settings(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, dtos.DefaultPageSize, s.DefaultPageSize)
	assert.Equal(t, "USD", s.SalaryCurrency)
	assert.False(t, s.EmailSync)

	size, cur, goal, sync := 25, "eur", 5, true
	s, err = env.users.UpdateSettings(ctx, user, &dtos.SettingsRequest{
		DefaultPageSize: &size, SalaryCurrency: &cur, WeeklyGoal: &goal, EmailSync: &sync,
	})
	require.NoError(t, err)
	assert.Equal(t, 25, s.DefaultPageSize)
	assert.Equal(t, "EUR", s.SalaryCurrency)

	s, err = env.users.Settings(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, 5, s.WeeklyGoal)
	assert.True(t, s.EmailSync)
	assert.Equal(t, 25, env.users.PageSize(ctx, user))

	tooBig := 500
	_, err = env.users.UpdateSettings(ctx, user, &dtos.SettingsRequest{DefaultPageSize: &tooBig})
	assert.ErrorIs(t, err, ErrInvalidInput)
	badCur := "dollars"
	_, err = env.users.UpdateSettings(ctx, user, &dtos.SettingsRequest{SalaryCurrency: &badCur})
	assert.ErrorIs(t, err, ErrInvalidInput)
	negative := -1
	_, err = env.users.UpdateSettings(ctx, user, &dtos.SettingsRequest{WeeklyGoal: &negative})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
