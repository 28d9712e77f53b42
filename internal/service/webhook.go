package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/logger"
	"github.com/hirewire/atsync/internal/repository"
)

// Event types the processor understands, after canonicalization. Everything
// else is persisted but left pending.
var webhookEntityByEvent = map[string]domain.EntityType{
	"job_created":           domain.EntityJob,
	"job_updated":           domain.EntityJob,
	"candidate_created":     domain.EntityCandidate,
	"candidate_updated":     domain.EntityCandidate,
	"application_submitted": domain.EntityApplication,
	"application_updated":   domain.EntityApplication,
}

// WebhookService ingests provider push events. Receipt and processing are
// separate steps: every inbound payload is persisted verbatim first, so a
// processing crash never loses the event.
type WebhookService struct {
	webhooks    *repository.WebhookRepository
	connections *repository.ConnectionRepository
	writer      *mirrorWriter
}

func NewWebhookService(
	webhooks *repository.WebhookRepository,
	connections *repository.ConnectionRepository,
	jobs *repository.JobPostingRepository,
	candidates *repository.CandidateRepository,
	apps *repository.ApplicationRepository,
) *WebhookService {
	return &WebhookService{
		webhooks:    webhooks,
		connections: connections,
		writer:      newMirrorWriter(jobs, candidates, apps),
	}
}

// Receive persists an inbound webhook payload and immediately attempts to
// process it. The returned event reflects the post-processing state. A
// redelivered external id is stored as a separate event; the entity upsert
// keeps the mirror idempotent.
func (s *WebhookService) Receive(ctx context.Context, connectionID string, payload []byte) (*domain.WebhookEvent, error) {
	ctx = logger.SetComponent(ctx, "webhook")
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}

	event := &domain.WebhookEvent{
		ID:           uuid.New().String(),
		ConnectionID: conn.ID,
		ExternalID:   extractWebhookID(payload),
		EventType:    extractEventType(payload),
		Payload:      payloadMap(payload),
		Status:       domain.WebhookStatusPending,
		ReceivedAt:   time.Now().UTC(),
	}
	if err := s.webhooks.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("store webhook: %w", err)
	}

	ctx = logger.WithFields(ctx, logger.Fields{
		logger.FieldWebhookID:    event.ID,
		logger.FieldConnectionID: conn.ID,
	})
	logger.CtxInfo(ctx, "webhook received: event_type=%s", event.EventType)

	if err := s.process(ctx, conn, event); err != nil {
		logger.CtxWarn(ctx, "webhook processing failed: %v", err)
	}
	return event, nil
}

// Retry resets a failed event to pending and processes it again. Events past
// the retry budget are refused with ErrRetryExhausted.
func (s *WebhookService) Retry(ctx context.Context, eventID string) (*domain.WebhookEvent, error) {
	event, err := s.webhooks.GetByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load webhook: %w", err)
	}
	if !event.CanRetry() {
		return nil, ErrRetryExhausted
	}

	event.Status = domain.WebhookStatusPending
	event.ErrorMessage = ""
	if err := s.webhooks.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("reset webhook: %w", err)
	}

	conn, err := s.connections.GetByID(ctx, event.ConnectionID)
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}

	ctx = logger.SetWebhookID(ctx, event.ID)
	if err := s.process(ctx, conn, event); err != nil {
		logger.CtxWarn(ctx, "webhook retry failed: %v", err)
	}
	return event, nil
}

// ProcessPending drains up to limit pending events. Events with an
// unrecognized type stay pending and are skipped again next sweep.
func (s *WebhookService) ProcessPending(ctx context.Context, limit int) (int, error) {
	events, err := s.webhooks.ListPending(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list pending webhooks: %w", err)
	}

	processed := 0
	for i := range events {
		event := &events[i]
		conn, err := s.connections.GetByID(ctx, event.ConnectionID)
		if err != nil {
			logger.CtxError(ctx, "webhook %s: load connection: %v", event.ID, err)
			continue
		}
		if err := s.process(logger.SetWebhookID(ctx, event.ID), conn, event); err == nil && event.Status == domain.WebhookStatusProcessed {
			processed++
		}
	}
	return processed, nil
}

// RetryFailed re-runs up to limit failed events that still have retry
// attempts left, oldest first. Returns the number of events that reached
// processed status.
func (s *WebhookService) RetryFailed(ctx context.Context, limit int) (int, error) {
	events, err := s.webhooks.ListRetryable(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list retryable webhooks: %w", err)
	}

	recovered := 0
	for i := range events {
		event, err := s.Retry(ctx, events[i].ID)
		if err != nil {
			logger.CtxError(ctx, "webhook %s: retry: %v", events[i].ID, err)
			continue
		}
		if event.Status == domain.WebhookStatusProcessed {
			recovered++
		}
	}
	return recovered, nil
}

// process routes one event to the entity writer and records the outcome. An
// unrecognized event type is logged and left pending; a writer failure marks
// the event failed and spends one retry.
func (s *WebhookService) process(ctx context.Context, conn *domain.Connection, event *domain.WebhookEvent) error {
	entity, ok := webhookEntityByEvent[canonicalEventType(event.EventType)]
	if !ok {
		logger.CtxWarn(ctx, "unrecognized webhook event type %q, leaving pending", event.EventType)
		return nil
	}

	raw, err := json.Marshal(event.Payload)
	if err != nil {
		return s.fail(ctx, event, fmt.Errorf("re-encode payload: %w", err))
	}
	record := gjson.ParseBytes(raw)
	if data := record.Get("data"); data.IsObject() {
		record = data
	}

	if _, err := s.writer.upsert(ctx, conn, entity, record); err != nil {
		return s.fail(ctx, event, err)
	}

	now := time.Now().UTC()
	event.Status = domain.WebhookStatusProcessed
	event.ErrorMessage = ""
	event.ProcessedAt = &now
	if err := s.webhooks.Update(ctx, event); err != nil {
		return fmt.Errorf("mark processed: %w", err)
	}
	logger.CtxInfo(ctx, "webhook processed: event_type=%s", event.EventType)
	return nil
}

// fail marks the event failed and spends one retry attempt.
func (s *WebhookService) fail(ctx context.Context, event *domain.WebhookEvent, cause error) error {
	event.Status = domain.WebhookStatusFailed
	event.ErrorMessage = cause.Error()
	event.RetryCount++
	if err := s.webhooks.Update(ctx, event); err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	return cause
}

// canonicalEventType lowers and normalizes separator characters so
// "job.created", "Job-Created" and "job_created" all route the same way.
func canonicalEventType(eventType string) string {
	replaced := strings.NewReplacer(".", "_", "-", "_", " ", "_").Replace(strings.ToLower(eventType))
	return replaced
}

// extractWebhookID pulls the provider's event id from the payload when it
// carries one, falling back to a generated UUID.
func extractWebhookID(payload []byte) string {
	for _, path := range []string{"id", "webhook_id", "event_id"} {
		if v := gjson.GetBytes(payload, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return uuid.New().String()
}

// extractEventType pulls the event type from the usual payload keys, or
// "unknown" when none is present.
func extractEventType(payload []byte) string {
	for _, path := range []string{"event_type", "event", "type", "action"} {
		if v := gjson.GetBytes(payload, path); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return "unknown"
}

// payloadMap decodes the raw body into a map for storage. A body that is not
// a JSON object is kept under a "raw" key so nothing is dropped.
func payloadMap(payload []byte) domain.JSONMap {
	m := domain.JSONMap{}
	if err := json.Unmarshal(payload, &m); err != nil {
		return domain.JSONMap{"raw": string(payload)}
	}
	return m
}
