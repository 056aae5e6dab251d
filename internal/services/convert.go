package services

import (
	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
)

// ToJobResponse renders a job, plus the caller's tracking row when there is
// one, in the backend wire shape. Empty strings become nulls.
func ToJobResponse(job models.Job, uj *models.UserJob) dtos.JobResponse {
	resp := dtos.JobResponse{
		ID:             job.ID.String(),
		Title:          nullable(job.Title),
		EmployerName:   nullable(job.Company.Name),
		WorkType:       nullable(job.WorkType),
		JobType:        nullable(job.JobType),
		MinSalary:      job.PayMin,
		MaxSalary:      job.PayMax,
		SalaryCurrency: nullable(job.PayCurrency),
		City:           nullable(job.City),
		State:          nullable(job.State),
		Country:        nullable(job.Country),
		URL:            nullable(job.URL),
		DatePosted:     job.DatePosted,
		Description:    nullable(job.Description),
	}
	updated := job.UpdatedAt
	if uj != nil {
		id := uj.ID.String()
		resp.UserJobID = &id
		resp.Status = nullable(string(uj.Status))
		updated = uj.UpdatedAt
	}
	if !updated.IsZero() {
		resp.UpdatedAt = &updated
	}
	return resp
}

func userJobResponses(ujs []models.UserJob) []dtos.JobResponse {
	out := make([]dtos.JobResponse, 0, len(ujs))
	for i := range ujs {
		out = append(out, ToJobResponse(ujs[i].Job, &ujs[i]))
	}
	return out
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
