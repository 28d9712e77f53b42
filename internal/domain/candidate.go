package domain

import "time"

// Canonical availability values.
const (
	AvailabilityImmediate = "immediate"
	AvailabilityTwoWeeks  = "2-weeks"
	AvailabilityOneMonth  = "1-month"
	AvailabilityFlexible  = "flexible"
)

// Candidate is the canonical mirror of one provider candidate record. One row
// per (connection, external id).
type Candidate struct {
	ID           string `gorm:"type:text;primaryKey" json:"id"`
	ConnectionID string `gorm:"type:text;not null;index:idx_candidates_external,unique" json:"connection_id"`
	ExternalID   string `gorm:"type:text;not null;index:idx_candidates_external,unique" json:"external_id"`

	FirstName string `gorm:"type:text" json:"first_name,omitempty"`
	LastName  string `gorm:"type:text" json:"last_name,omitempty"`
	Email     string `gorm:"type:text;index:idx_candidates_email" json:"email,omitempty"`
	Phone     string `gorm:"type:text" json:"phone,omitempty"`
	Location  string `gorm:"type:text" json:"location,omitempty"`

	CurrentTitle    string      `gorm:"type:text" json:"current_title,omitempty"`
	ExperienceYears *float64    `json:"experience_years,omitempty"`
	Skills          StringArray `gorm:"type:text" json:"skills"`
	ResumeURL       string      `gorm:"type:text" json:"resume_url,omitempty"`
	Availability    string      `gorm:"type:text;default:immediate" json:"availability"`

	CustomFields JSONMap `gorm:"type:text" json:"custom_fields"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Candidate.
func (Candidate) TableName() string {
	return "candidates"
}
