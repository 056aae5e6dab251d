package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResumes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "a@example.com")
	other := env.newUser(t, "b@example.com")

	first, err := env.docs.CreateResume(ctx, user, &dtos.ResumeRequest{Title: "Backend", Content: "Go, Postgres", IsDefault: true})
	require.NoError(t, err)
	second, err := env.docs.CreateResume(ctx, user, &dtos.ResumeRequest{Title: "Platform", IsDefault: true})
	require.NoError(t, err)

	got, err := env.docs.GetResume(ctx, user, first.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault, "only one default resume")

	list, err := env.docs.ListResumes(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = env.docs.ListResumes(ctx, other)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = env.docs.GetResume(ctx, other, first.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := env.docs.UpdateResume(ctx, user, first.ID, &dtos.ResumeRequest{Title: "Backend v2", Content: "Go", IsDefault: true})
	require.NoError(t, err)
	assert.Equal(t, "Backend v2", updated.Title)
	assert.True(t, updated.IsDefault)
	got, err = env.docs.GetResume(ctx, user, second.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)

	_, err = env.docs.UpdateResume(ctx, user, first.ID, &dtos.ResumeRequest{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.ErrorIs(t, env.docs.DeleteResume(ctx, other, first.ID), ErrForbidden)
	require.NoError(t, env.docs.DeleteResume(ctx, user, first.ID))
	_, err = env.docs.GetResume(ctx, user, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCoverLetters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.newUser(t, "a@example.com")
	other := env.newUser(t, "b@example.com")
	uj := env.newJob(t, user, "Stripe", "Backend Engineer")

	jobID := uj.JobID.String()
	letter, err := env.docs.CreateCoverLetter(ctx, user, &dtos.CoverLetterRequest{Title: "Stripe letter", Content: "Dear Stripe", JobID: &jobID})
	require.NoError(t, err)
	require.NotNil(t, letter.JobID)
	assert.Equal(t, uj.JobID, *letter.JobID)

	bad := "not-a-uuid"
	_, err = env.docs.CreateCoverLetter(ctx, user, &dtos.CoverLetterRequest{Title: "x", JobID: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	missing := uuid.NewString()
	_, err = env.docs.CreateCoverLetter(ctx, user, &dtos.CoverLetterRequest{Title: "x", JobID: &missing})
	assert.ErrorIs(t, err, ErrNotFound)

	updated, err := env.docs.UpdateCoverLetter(ctx, user, letter.ID, &dtos.CoverLetterRequest{Title: "Generic letter", Content: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, "Generic letter", updated.Title)
	assert.Nil(t, updated.JobID)

	_, err = env.docs.UpdateCoverLetter(ctx, other, letter.ID, &dtos.CoverLetterRequest{Title: "mine now"})
	assert.ErrorIs(t, err, ErrForbidden)

	list, err := env.docs.ListCoverLetters(ctx, user)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, env.docs.DeleteCoverLetter(ctx, user, letter.ID))
	list, err = env.docs.ListCoverLetters(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, list)
}
