package domain

import "time"

// WebhookStatus tracks inbound event processing. pending is re-enterable via
// retry; processed and exhausted failed are terminal.
type WebhookStatus string

const (
	WebhookStatusPending   WebhookStatus = "pending"
	WebhookStatusProcessed WebhookStatus = "processed"
	WebhookStatusFailed    WebhookStatus = "failed"
)

// MaxWebhookRetries caps processing attempts for a failed webhook.
const MaxWebhookRetries = 3

// WebhookEvent is one inbound push event from a provider, persisted verbatim
// before any processing. Redelivery of the same external id is accepted as a
// new event; deduplication happens only through the entity upsert path.
type WebhookEvent struct {
	ID           string `gorm:"type:text;primaryKey" json:"id"`
	ConnectionID string `gorm:"type:text;not null;index:idx_webhooks_conn" json:"connection_id"`

	// ExternalID is the provider's webhook id when the payload carries one,
	// otherwise a generated UUID.
	ExternalID string `gorm:"type:text;index:idx_webhooks_ext" json:"external_id"`
	EventType  string `gorm:"type:text;not null" json:"event_type"`
	Payload    JSONMap `gorm:"type:text" json:"payload"`

	Status       WebhookStatus `gorm:"type:text;default:pending;index:idx_webhooks_status" json:"status"`
	ErrorMessage string        `gorm:"type:text" json:"error_message,omitempty"`
	RetryCount   int           `gorm:"default:0" json:"retry_count"`

	ReceivedAt  time.Time  `json:"received_at"`
	ProcessedAt *time.Time `json:"processed_at,omitempty"`
}

// TableName returns the database table name for WebhookEvent.
func (WebhookEvent) TableName() string {
	return "webhook_events"
}

// CanRetry reports whether a failed event is still eligible for another
// processing attempt.
func (w *WebhookEvent) CanRetry() bool {
	return w.Status == WebhookStatusFailed && w.RetryCount < MaxWebhookRetries
}
