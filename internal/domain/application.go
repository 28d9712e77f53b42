package domain

import "time"

// Canonical application statuses.
const (
	ApplicationStatusNew        = "new"
	ApplicationStatusScreening  = "screening"
	ApplicationStatusInterview  = "interview"
	ApplicationStatusAssessment = "assessment"
	ApplicationStatusOffer      = "offer"
	ApplicationStatusHired      = "hired"
	ApplicationStatusRejected   = "rejected"
	ApplicationStatusWithdrawn  = "withdrawn"
)

// Application links a mirrored candidate to a mirrored job posting. One row
// per (job posting, candidate); an application seen before both sides exist is
// dropped and counted as failed.
type Application struct {
	ID           string `gorm:"type:text;primaryKey" json:"id"`
	ConnectionID string `gorm:"type:text;not null;index:idx_applications_conn" json:"connection_id"`

	JobPostingID string `gorm:"type:text;not null;index:idx_applications_pair,unique" json:"job_posting_id"`
	CandidateID  string `gorm:"type:text;not null;index:idx_applications_pair,unique" json:"candidate_id"`

	ExternalID string `gorm:"type:text;index:idx_applications_ext" json:"external_id,omitempty"`
	Status     string `gorm:"type:text;default:new;index:idx_applications_status" json:"status"`

	AppliedAt *time.Time `json:"applied_at,omitempty"`

	CustomFields JSONMap `gorm:"type:text" json:"custom_fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Application.
func (Application) TableName() string {
	return "applications"
}
