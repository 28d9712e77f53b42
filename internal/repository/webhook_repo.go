package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/hirewire/atsync/internal/domain"
)

// WebhookRepository handles inbound webhook event records.
type WebhookRepository struct {
	db *gorm.DB
}

// NewWebhookRepository creates a new WebhookRepository.
func NewWebhookRepository(db *gorm.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// Create persists a newly received event.
func (r *WebhookRepository) Create(ctx context.Context, event *domain.WebhookEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// Update saves processing state changes.
func (r *WebhookRepository) Update(ctx context.Context, event *domain.WebhookEvent) error {
	return r.db.WithContext(ctx).Save(event).Error
}

// GetByID retrieves a webhook event.
func (r *WebhookRepository) GetByID(ctx context.Context, id string) (*domain.WebhookEvent, error) {
	var event domain.WebhookEvent
	if err := r.db.WithContext(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListPending retrieves unprocessed events, oldest first.
func (r *WebhookRepository) ListPending(ctx context.Context, limit int) ([]domain.WebhookEvent, error) {
	var events []domain.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("status = ?", domain.WebhookStatusPending).
		Order("received_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// ListRetryable retrieves failed events that still have retry budget.
func (r *WebhookRepository) ListRetryable(ctx context.Context, limit int) ([]domain.WebhookEvent, error) {
	var events []domain.WebhookEvent
	if err := r.db.WithContext(ctx).
		Where("status = ? AND retry_count < ?", domain.WebhookStatusFailed, domain.MaxWebhookRetries).
		Order("received_at ASC").
		Limit(limit).
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
