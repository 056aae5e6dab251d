package database

import (
	"testing"

	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAndRoundTrip(t *testing.T) {
	db := NewTestDB(t)

	company := models.Company{Name: "Stripe"}
	require.NoError(t, db.Create(&company).Error)

	job := models.Job{
		CompanyID: company.ID,
		Title:     "Backend Engineer",
		PayMin:    decimal.NewNullDecimal(decimal.NewFromInt(120000)),
	}
	require.NoError(t, db.Create(&job).Error)
	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", job.ID.String())

	var got models.Job
	require.NoError(t, db.Preload("Company").First(&got, "id = ?", job.ID).Error)
	assert.Equal(t, "Stripe", got.Company.Name)
	assert.True(t, got.PayMin.Valid)
	assert.True(t, got.PayMin.Decimal.Equal(decimal.NewFromInt(120000)))
	assert.False(t, got.PayMax.Valid)
}
