package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// ============================================
// Standard Tracing Fields (Context level)
// These fields are propagated through the call chain
// ============================================

const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldConnectionID is the ATS connection being synced
	FieldConnectionID = "connection_id"

	// FieldSyncID is the sync run (SyncLog) ID
	FieldSyncID = "sync_id"

	// FieldWebhookID is the inbound webhook event ID
	FieldWebhookID = "webhook_id"

	// FieldProvider is the ATS provider identifier
	FieldProvider = "provider"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldEntityType is the canonical entity being processed
	FieldEntityType = "entity_type"
)

// ============================================
// Standard Metric Fields (Entry level)
// These fields are used for aggregation and alerting
// ============================================

const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
