package domain

import "time"

// Canonical employment types.
const (
	EmploymentFullTime   = "full-time"
	EmploymentPartTime   = "part-time"
	EmploymentContract   = "contract"
	EmploymentTemporary  = "temporary"
	EmploymentInternship = "internship"
)

// Canonical experience levels.
const (
	ExperienceEntry     = "entry-level"
	ExperienceMid       = "mid-level"
	ExperienceSenior    = "senior"
	ExperienceExecutive = "executive"
)

// Canonical job statuses.
const (
	JobStatusActive = "active"
	JobStatusPaused = "paused"
	JobStatusClosed = "closed"
	JobStatusDraft  = "draft"
)

// JobPosting is the canonical mirror of one provider job record. One row per
// (connection, external id); every sighting fully overwrites the mapped
// fields.
type JobPosting struct {
	ID           string `gorm:"type:text;primaryKey" json:"id"`
	ConnectionID string `gorm:"type:text;not null;index:idx_jobs_external,unique" json:"connection_id"`
	ExternalID   string `gorm:"type:text;not null;index:idx_jobs_external,unique" json:"external_id"`

	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Location    string `gorm:"type:text" json:"location,omitempty"`
	Department  string `gorm:"type:text" json:"department,omitempty"`

	EmploymentType  string `gorm:"type:text;default:full-time" json:"employment_type"`
	ExperienceLevel string `gorm:"type:text;default:mid-level" json:"experience_level"`
	Status          string `gorm:"type:text;default:active;index:idx_jobs_status" json:"status"`

	SalaryMin *float64 `json:"salary_min,omitempty"`
	SalaryMax *float64 `json:"salary_max,omitempty"`
	Currency  string   `gorm:"type:text" json:"currency,omitempty"`

	PostedAt *time.Time `json:"posted_at,omitempty"`

	CustomFields JSONMap `gorm:"type:text" json:"custom_fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for JobPosting.
func (JobPosting) TableName() string {
	return "job_postings"
}
