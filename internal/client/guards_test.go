package client

import (
	"testing"

	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/stretchr/testify/assert"
)

type flag bool

func (f flag) Authenticated() bool { return bool(f) }

func TestGuards(t *testing.T) {
	assert.ErrorIs(t, RequireAuth(flag(false)), ErrLoginRequired)
	assert.NoError(t, RequireAuth(flag(true)))
	assert.ErrorIs(t, GuestOnly(flag(true)), ErrAlreadyLoggedIn)
	assert.NoError(t, GuestOnly(flag(false)))
}

func TestStatusStoreZeroFills(t *testing.T) {
	s := NewStatusStore()
	snap := s.Snapshot()
	assert.Len(t, snap.Counts, len(models.AllStatuses))

	s.Replace(StatusState{Counts: map[models.Status]int64{models.StatusApplied: 3}, Total: 3})
	snap = s.Snapshot()
	assert.Equal(t, int64(3), snap.Counts[models.StatusApplied])
	assert.Equal(t, int64(0), snap.Counts[models.StatusRejected])
	assert.Len(t, snap.Counts, len(models.AllStatuses))

	// Snapshots are copies.
	snap.Counts[models.StatusApplied] = 99
	assert.Equal(t, int64(3), s.Snapshot().Counts[models.StatusApplied])
}
