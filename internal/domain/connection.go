package domain

import "time"

// Provider identifies an external ATS vendor.
type Provider string

const (
	ProviderWorkday        Provider = "workday"
	ProviderGreenhouse     Provider = "greenhouse"
	ProviderLever          Provider = "lever"
	ProviderBambooHR       Provider = "bamboohr"
	ProviderSuccessFactors Provider = "successfactors"
	ProviderTaleo          Provider = "taleo"
	ProviderICIMS          Provider = "icims"
	ProviderJazzHR         Provider = "jazzhr"
	ProviderBullhorn       Provider = "bullhorn"
	ProviderJobvite        Provider = "jobvite"
)

// Providers lists every supported ATS vendor.
var Providers = []Provider{
	ProviderWorkday,
	ProviderGreenhouse,
	ProviderLever,
	ProviderBambooHR,
	ProviderSuccessFactors,
	ProviderTaleo,
	ProviderICIMS,
	ProviderJazzHR,
	ProviderBullhorn,
	ProviderJobvite,
}

// IsValid reports whether p is one of the supported providers.
func (p Provider) IsValid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Connection binds one external ATS account: provider, endpoint, sealed
// credentials, field mappings, and rolling sync statistics.
//
// The credential bundle is provider-specific and opaque; its shape is only
// validated at use time, never at write time.
type Connection struct {
	ID          string   `gorm:"type:text;primaryKey" json:"id"`
	Name        string   `gorm:"type:text;not null" json:"name"`
	Provider    Provider `gorm:"type:text;not null;index:idx_connections_provider" json:"provider"`
	APIEndpoint string   `gorm:"type:text;not null" json:"api_endpoint"`

	// Credentials holds the AES-GCM sealed credential bundle. Decrypted only
	// through secret.Box at use time.
	Credentials string  `gorm:"type:text" json:"-"`
	Settings    JSONMap `gorm:"type:text" json:"settings"`

	FieldMappings []FieldMapping `gorm:"foreignKey:ConnectionID;constraint:OnDelete:CASCADE" json:"field_mappings,omitempty"`

	IsActive bool `gorm:"default:true;index:idx_connections_active" json:"is_active"`

	LastSyncAt         *time.Time `json:"last_sync_at,omitempty"`
	TotalRecordsSynced int64      `gorm:"default:0" json:"total_records_synced"`
	TotalRuns          int64      `gorm:"default:0" json:"total_runs"`
	SuccessfulRuns     int64      `gorm:"default:0" json:"successful_runs"`
	SyncSuccessRate    float64    `gorm:"default:0" json:"sync_success_rate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Connection.
func (Connection) TableName() string {
	return "connections"
}
