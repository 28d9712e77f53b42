package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hirewire/atsync/internal/domain"
)

// SyncLogRepository handles sync run audit records.
type SyncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository creates a new SyncLogRepository.
func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Create inserts a new sync log in started state.
func (r *SyncLogRepository) Create(ctx context.Context, log *domain.SyncLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// Update saves accumulated counts, errors, and the terminal transition.
func (r *SyncLogRepository) Update(ctx context.Context, log *domain.SyncLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// GetByID retrieves a sync log.
func (r *SyncLogRepository) GetByID(ctx context.Context, id string) (*domain.SyncLog, error) {
	var log domain.SyncLog
	if err := r.db.WithContext(ctx).First(&log, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &log, nil
}

// CountStartedSince counts runs started for a connection after the cutoff.
// Feeds the advisory rate gate.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - connectionID: connection to count runs for.
//   - since: trailing-window cutoff.
// Returns:
//   - int64: number of runs started in the window.
//   - error: non-nil if the query fails.
func (r *SyncLogRepository) CountStartedSince(ctx context.Context, connectionID string, since time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&domain.SyncLog{}).
		Where("connection_id = ? AND started_at >= ?", connectionID, since).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByConnection retrieves recent runs for a connection, newest first.
func (r *SyncLogRepository) ListByConnection(ctx context.Context, connectionID string, limit, offset int) ([]domain.SyncLog, error) {
	var logs []domain.SyncLog
	if err := r.db.WithContext(ctx).
		Where("connection_id = ?", connectionID).
		Order("started_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}
