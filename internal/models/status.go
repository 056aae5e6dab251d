package models

import (
	"errors"
	"fmt"
	"strings"
)

// Status is a stage of the application pipeline. The string values are the
// wire names the dashboard uses.
type Status string

const (
	StatusNew                 Status = "New"
	StatusPending             Status = "Pending"
	StatusApplied             Status = "Applied"
	StatusArchived            Status = "Archived"
	StatusReviewed            Status = "Reviewed"
	StatusInterviewing        Status = "Interviewing"
	StatusTechnicalAssessment Status = "Technical Assessment"
	StatusAccepted            Status = "Accepted"
	StatusGhosting            Status = "Ghosting"
	StatusPass                Status = "Pass"
	StatusRejected            Status = "Rejected"
)

var ErrInvalidStatus = errors.New("invalid status")

// AllStatuses lists every status in display order.
var AllStatuses = []Status{
	StatusNew,
	StatusPending,
	StatusApplied,
	StatusArchived,
	StatusReviewed,
	StatusInterviewing,
	StatusTechnicalAssessment,
	StatusAccepted,
	StatusGhosting,
	StatusPass,
	StatusRejected,
}

// FunnelStages are the progress stages, in order, used by the interview funnel.
var FunnelStages = []Status{
	StatusNew,
	StatusPending,
	StatusApplied,
	StatusReviewed,
	StatusInterviewing,
	StatusTechnicalAssessment,
	StatusAccepted,
}

// ParseStatus accepts any casing, and '-' or '_' in place of spaces.
func ParseStatus(s string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("-", " ", "_", " ").Replace(norm)
	for _, st := range AllStatuses {
		if strings.ToLower(string(st)) == norm {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Valid reports whether s is one of the canonical wire names.
func (s Status) Valid() bool {
	for _, st := range AllStatuses {
		if st == s {
			return true
		}
	}
	return false
}

// Rank returns the position of s in the funnel, or -1 for side exits
// (Archived, Ghosting, Pass, Rejected).
func (s Status) Rank() int {
	for i, st := range FunnelStages {
		if st == s {
			return i
		}
	}
	return -1
}

// Responded reports whether an employer reacted to the application in any way.
func (s Status) Responded() bool {
	switch s {
	case StatusReviewed, StatusInterviewing, StatusTechnicalAssessment, StatusAccepted, StatusRejected, StatusPass:
		return true
	}
	return false
}

// Terminal statuses are skipped when matching inbox mail to applications.
func (s Status) Terminal() bool {
	switch s {
	case StatusAccepted, StatusRejected, StatusPass, StatusArchived:
		return true
	}
	return false
}
