package dtos

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// JobResponse is the backend job shape. Every field except ID may be null;
// the dashboard substitutes defaults.
type JobResponse struct {
	ID             string              `json:"id"`
	UserJobID      *string             `json:"userJobId"`
	Title          *string             `json:"title"`
	EmployerName   *string             `json:"employerName"`
	WorkType       *string             `json:"workType"`
	JobType        *string             `json:"jobType"`
	MinSalary      decimal.NullDecimal `json:"minSalary"`
	MaxSalary      decimal.NullDecimal `json:"maxSalary"`
	SalaryCurrency *string             `json:"salaryCurrency"`
	City           *string             `json:"city"`
	State          *string             `json:"state"`
	Country        *string             `json:"country"`
	URL            *string             `json:"url"`
	Status         *string             `json:"status"`
	DatePosted     *time.Time          `json:"datePosted"`
	Description    *string             `json:"description"`
	UpdatedAt      *time.Time          `json:"updatedAt"`
}

// PagedResponse is the {items, totalCount} envelope of every list endpoint.
type PagedResponse[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
}

// ListQuery carries the list parameters shared by the paged endpoints.
type ListQuery struct {
	Page           int    `form:"page"`
	PageSize       int    `form:"pageSize"`
	SortColumn     string `form:"sortColumn"`
	SortDescending bool   `form:"sortDescending"`
	SearchTerm     string `form:"searchTerm"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// MaxOffset is the largest row offset a list query may reach.
const MaxOffset = math.MaxInt32

// Normalize fills defaults and clamps the page size and page.
func (q *ListQuery) Normalize(defaultPageSize int) {
	if q.Page < 1 {
		q.Page = 1
	}
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > MaxPageSize {
		q.PageSize = MaxPageSize
	}
	if maxPage := MaxOffset/q.PageSize + 1; q.Page > maxPage {
		q.Page = maxPage
	}
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

type JobExtractionRequest struct {
	RawHTML string `json:"raw_html" binding:"required"`
	URL     string `json:"url"`
}

type JobCreationRequest struct {
	EmployerName string `json:"employerName" binding:"required"`
	Title        string `json:"title" binding:"required"`

	// Optional fields
	WorkType       string           `json:"workType"`
	JobType        string           `json:"jobType"`
	MinSalary      *decimal.Decimal `json:"minSalary"`
	MaxSalary      *decimal.Decimal `json:"maxSalary"`
	SalaryCurrency string           `json:"salaryCurrency"`
	City           string           `json:"city"`
	State          string           `json:"state"`
	Country        string           `json:"country"`
	URL            string           `json:"url"`
	DatePosted     *time.Time       `json:"datePosted"`
	Description    string           `json:"description"`
	Status         string           `json:"status"` // defaults to "New" if empty
}

// JobUpdateRequest changes only the fields that are present.
type JobUpdateRequest struct {
	EmployerName   *string          `json:"employerName"`
	Title          *string          `json:"title"`
	WorkType       *string          `json:"workType"`
	JobType        *string          `json:"jobType"`
	MinSalary      *decimal.Decimal `json:"minSalary"`
	MaxSalary      *decimal.Decimal `json:"maxSalary"`
	SalaryCurrency *string          `json:"salaryCurrency"`
	City           *string          `json:"city"`
	State          *string          `json:"state"`
	Country        *string          `json:"country"`
	URL            *string          `json:"url"`
	DatePosted     *time.Time       `json:"datePosted"`
	Description    *string          `json:"description"`
}

type TrackJobRequest struct {
	JobID  string `json:"jobId" binding:"required"`
	Status string `json:"status"`
}

type StatusUpdateRequest struct {
	Status string  `json:"status" binding:"required"`
	Notes  *string `json:"notes"`
}

// StatusCountsResponse is the job status state: a count for every status.
type StatusCountsResponse struct {
	Counts   map[string]int64 `json:"counts"`
	Total    int64            `json:"total"`
	NewCount int64            `json:"newCount"`
}
