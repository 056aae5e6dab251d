package client

import (
	"strings"
	"time"

	"github.com/justsurfingit/jobdash/internal/dtos"
	"github.com/justsurfingit/jobdash/internal/models"
	"github.com/shopspring/decimal"
)

const (
	DefaultTitle    = "Untitled position"
	DefaultEmployer = "Unknown employer"
	NotSpecified    = "Not specified"
	NoLocation      = "Location not specified"
)

type PayRange struct {
	Min      *decimal.Decimal
	Max      *decimal.Decimal
	Currency string
}

// Job is the display shape of a job. Every field is filled.
type Job struct {
	ID           string
	UserJobID    string
	Title        string
	EmployerName string
	WorkType     string
	JobType      string
	Pay          PayRange
	PayDisplay   string
	City         string
	State        string
	Country      string
	Location     string
	URL          string
	Status       models.Status
	PostedDate   *time.Time
	Description  string
	UpdatedAt    *time.Time
}

// AdaptJob maps the backend shape to a Job, substituting defaults for
// missing fields.
func AdaptJob(r dtos.JobResponse) Job {
	job := Job{
		ID:           r.ID,
		UserJobID:    str(r.UserJobID),
		Title:        or(str(r.Title), DefaultTitle),
		EmployerName: or(str(r.EmployerName), DefaultEmployer),
		WorkType:     or(str(r.WorkType), NotSpecified),
		JobType:      or(str(r.JobType), NotSpecified),
		City:         str(r.City),
		State:        str(r.State),
		Country:      str(r.Country),
		URL:          str(r.URL),
		Status:       models.StatusNew,
		PostedDate:   r.DatePosted,
		Description:  str(r.Description),
		UpdatedAt:    r.UpdatedAt,
	}

	job.Pay.Currency = strings.ToUpper(or(str(r.SalaryCurrency), "USD"))
	if r.MinSalary.Valid {
		d := r.MinSalary.Decimal
		job.Pay.Min = &d
	}
	if r.MaxSalary.Valid {
		d := r.MaxSalary.Decimal
		job.Pay.Max = &d
	}
	job.PayDisplay = FormatPay(job.Pay)

	var parts []string
	for _, p := range []string{job.City, job.State, job.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	job.Location = NoLocation
	if len(parts) > 0 {
		job.Location = strings.Join(parts, ", ")
	}

	if st, err := models.ParseStatus(str(r.Status)); err == nil {
		job.Status = st
	}
	return job
}

func AdaptJobs(items []dtos.JobResponse) []Job {
	out := make([]Job, 0, len(items))
	for _, it := range items {
		out = append(out, AdaptJob(it))
	}
	return out
}

// FormatPay renders a pay range as "$X - $Y", "From $X", "Up to $Y" or
// "Not specified".
func FormatPay(p PayRange) string {
	switch {
	case p.Min != nil && p.Max != nil:
		return Money(p.Currency, *p.Min) + " - " + Money(p.Currency, *p.Max)
	case p.Min != nil:
		return "From " + Money(p.Currency, *p.Min)
	case p.Max != nil:
		return "Up to " + Money(p.Currency, *p.Max)
	}
	return NotSpecified
}

// Money formats d with thousands separators, e.g. "$120,000" or "€1,250.50".
func Money(currency string, d decimal.Decimal) string {
	s := d.StringFixed(0)
	if !d.Equal(d.Truncate(0)) {
		s = d.StringFixed(2)
	}
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + models.CurrencySymbol(currency) + b.String() + frac
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
