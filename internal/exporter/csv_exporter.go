package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/justsurfingit/jobdash/internal/client"
)

var jobHeaders = []string{
	"Employer",
	"Title",
	"Status",
	"Work Type",
	"Job Type",
	"Location",
	"Pay",
	"Posted",
	"Updated",
	"URL",
	"Job ID",
	"Tracking ID",
}

type CSVExporter struct {
	filename string
}

func NewCSVExporter(filename string) *CSVExporter {
	return &CSVExporter{filename: filename}
}

// ExportJobs writes jobs to the exporter's file, replacing it.
func (ce *CSVExporter) ExportJobs(jobs []client.Job) error {
	file, err := os.Create(ce.filename)
	if err != nil {
		return fmt.Errorf("create CSV file: %w", err)
	}
	defer file.Close()

	if err := WriteJobs(file, jobs); err != nil {
		return err
	}
	return file.Close()
}

func WriteJobs(w io.Writer, jobs []client.Job) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(jobHeaders); err != nil {
		return fmt.Errorf("write CSV headers: %w", err)
	}
	for _, job := range jobs {
		record := []string{
			job.EmployerName,
			job.Title,
			string(job.Status),
			job.WorkType,
			job.JobType,
			job.Location,
			job.PayDisplay,
			formatDate(job.PostedDate),
			formatDate(job.UpdatedAt),
			job.URL,
			job.ID,
			job.UserJobID,
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush CSV: %w", err)
	}
	return nil
}
