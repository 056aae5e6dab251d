package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"New":                  StatusNew,
		"applied":              StatusApplied,
		"Technical Assessment": StatusTechnicalAssessment,
		"technical-assessment": StatusTechnicalAssessment,
		"TECHNICAL_ASSESSMENT": StatusTechnicalAssessment,
		" ghosting ":           StatusGhosting,
	}
	for in, want := range cases {
		got, err := ParseStatus(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStatus("hired")
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = ParseStatus("")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatusRankAndResponse(t *testing.T) {
	assert.Equal(t, 0, StatusNew.Rank())
	assert.Equal(t, 6, StatusAccepted.Rank())
	assert.Equal(t, -1, StatusRejected.Rank())
	assert.Equal(t, -1, StatusGhosting.Rank())

	assert.True(t, StatusRejected.Responded())
	assert.True(t, StatusInterviewing.Responded())
	assert.False(t, StatusGhosting.Responded())
	assert.False(t, StatusApplied.Responded())

	assert.True(t, Status("Technical Assessment").Valid())
	assert.False(t, Status("technical-assessment").Valid())
	assert.Len(t, AllStatuses, 11)
}
