package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	DisplayName  string       `json:"display_name"`
	Settings     UserSettings `gorm:"embedded;embeddedPrefix:settings_" json:"settings"`

	// Gmail history bookmark used by the inbox watcher.
	LastHistoryID uint64 `json:"-"`
}

// UserSettings backs the settings form.
type UserSettings struct {
	DefaultPageSize int    `gorm:"default:10" json:"defaultPageSize"`
	SalaryCurrency  string `gorm:"default:'USD'" json:"salaryCurrency"`
	WeeklyGoal      int    `json:"weeklyGoal"`
	EmailSync       bool   `json:"emailSync"`
}

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// 'omitempty' prevents loops when fetching Job -> Company -> Jobs.
	Jobs []Job `json:"jobs,omitempty"`
}

// Job is a posting in the shared catalog. A user's relation to it lives in UserJob.
type Job struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CompanyID uint    `json:"company_id"`
	Company   Company `json:"company"`

	Title       string              `gorm:"not null" json:"title"`
	WorkType    string              `json:"work_type"` // remote/hybrid/onsite
	JobType     string              `json:"job_type"`  // full-time/contract/...
	PayMin      decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"pay_min"`
	PayMax      decimal.NullDecimal `gorm:"type:numeric(14,2)" json:"pay_max"`
	PayCurrency string              `json:"pay_currency"`
	City        string              `json:"city"`
	State       string              `json:"state"`
	Country     string              `json:"country"`
	URL         string              `json:"url"`
	DatePosted  *time.Time          `json:"date_posted"`
	Description string              `gorm:"type:text" json:"description"`
	CreatedBy   uuid.UUID           `gorm:"type:uuid" json:"created_by"`
}

// UserJob tracks one user's application to one job.
type UserJob struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_job" json:"user_id"`
	JobID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_job" json:"job_id"`
	Job    Job       `json:"job"`

	Status    Status     `gorm:"not null;default:'New';index" json:"status"`
	AppliedAt *time.Time `json:"applied_at"`
	Notes     string     `gorm:"type:text" json:"notes"`
}

type JobEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UserJobID  uuid.UUID `gorm:"type:uuid;index" json:"user_job_id"`
	EventType  string    `json:"event_type"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	Details    string    `gorm:"type:text" json:"details"`
}

const (
	EventStatusChange = "STATUS_CHANGE"
	EventEmailUpdate  = "EMAIL_UPDATE"
)

type Resume struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"-"`
	Title     string    `gorm:"not null" json:"title"`
	Content   string    `gorm:"type:text" json:"content"`
	IsDefault bool      `json:"isDefault"`
}

type CoverLetter struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID  uuid.UUID  `gorm:"type:uuid;index;not null" json:"-"`
	JobID   *uuid.UUID `gorm:"type:uuid" json:"jobId"`
	Title   string     `gorm:"not null" json:"title"`
	Content string     `gorm:"type:text" json:"content"`
}

type ProcessedEmail struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time
}

func newID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error        { newID(&u.ID); return nil }
func (j *Job) BeforeCreate(*gorm.DB) error         { newID(&j.ID); return nil }
func (uj *UserJob) BeforeCreate(*gorm.DB) error    { newID(&uj.ID); return nil }
func (r *Resume) BeforeCreate(*gorm.DB) error      { newID(&r.ID); return nil }
func (c *CoverLetter) BeforeCreate(*gorm.DB) error { newID(&c.ID); return nil }

// All returns every model for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{}, &Company{}, &Job{}, &UserJob{}, &JobEvent{},
		&Resume{}, &CoverLetter{}, &ProcessedEmail{},
	}
}
