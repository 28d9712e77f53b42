package domain

import "time"

// SyncType selects which entity types a run covers.
type SyncType string

const (
	SyncTypeJobs         SyncType = "jobs"
	SyncTypeCandidates   SyncType = "candidates"
	SyncTypeApplications SyncType = "applications"
	SyncTypeFull         SyncType = "full"
)

// SyncStatus tracks a run's lifecycle. Terminal once completed or failed.
type SyncStatus string

const (
	SyncStatusStarted   SyncStatus = "started"
	SyncStatusCompleted SyncStatus = "completed"
	SyncStatusFailed    SyncStatus = "failed"
)

// SyncLog is the audit record for one orchestrated sync run. Counts only ever
// increase; errors accumulate until the terminal transition.
type SyncLog struct {
	ID           string     `gorm:"type:text;primaryKey" json:"id"`
	ConnectionID string     `gorm:"type:text;not null;index:idx_sync_logs_conn" json:"connection_id"`
	SyncType     SyncType   `gorm:"type:text;not null" json:"sync_type"`
	Status       SyncStatus `gorm:"type:text;default:started;index:idx_sync_logs_status" json:"status"`

	RecordsProcessed int `gorm:"default:0" json:"records_processed"`
	RecordsCreated   int `gorm:"default:0" json:"records_created"`
	RecordsUpdated   int `gorm:"default:0" json:"records_updated"`
	RecordsFailed    int `gorm:"default:0" json:"records_failed"`

	// Counts breaks the totals down per entity type for full runs, keyed by
	// "jobs"/"candidates"/"applications".
	Counts JSONMap     `gorm:"type:text" json:"counts"`
	Errors StringArray `gorm:"type:text" json:"errors"`

	StartedAt       time.Time  `gorm:"index:idx_sync_logs_started" json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	DurationSeconds float64    `gorm:"default:0" json:"duration_seconds"`
}

// TableName returns the database table name for SyncLog.
func (SyncLog) TableName() string {
	return "sync_logs"
}
