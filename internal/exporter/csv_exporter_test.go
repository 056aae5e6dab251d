package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/justsurfingit/jobdash/internal/client"
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleJobs() []client.Job {
	title, employer, city := "Backend Engineer", "Stripe, Inc.", "Dublin"
	posted := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return []client.Job{
		client.AdaptJob(dtos.JobResponse{ID: "j1", Title: &title, EmployerName: &employer, City: &city, DatePosted: &posted}),
		client.AdaptJob(dtos.JobResponse{ID: "j2"}),
	}
}

func TestWriteJobs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJobs(&buf, sampleJobs()))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, jobHeaders, rows[0])
	assert.Equal(t, "Stripe, Inc.", rows[1][0])
	assert.Equal(t, "Dublin", rows[1][5])
	assert.Equal(t, "2026-03-14", rows[1][7])
	assert.Equal(t, client.DefaultTitle, rows[2][1])
	assert.Equal(t, "New", rows[2][2])
	assert.Equal(t, "", rows[2][7])
}

func TestExportJobsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.csv")
	require.NoError(t, NewCSVExporter(path).ExportJobs(sampleJobs()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
