package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hirewire/atsync/internal/domain"
)

// ConnectionRepository handles connection and field-mapping persistence.
type ConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new ConnectionRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *ConnectionRepository: repository instance bound to db.
func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// Create inserts a new connection with its field mappings.
func (r *ConnectionRepository) Create(ctx context.Context, conn *domain.Connection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

// Update saves connection fields and replaces the field mapping set. The
// delete-then-recreate keeps the (connection, entity, field) unique index
// clean when mappings are swapped out.
func (r *ConnectionRepository) Update(ctx context.Context, conn *domain.Connection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if conn.FieldMappings != nil {
			if err := tx.Where("connection_id = ?", conn.ID).Delete(&domain.FieldMapping{}).Error; err != nil {
				return err
			}
			if len(conn.FieldMappings) > 0 {
				if err := tx.Create(&conn.FieldMappings).Error; err != nil {
					return err
				}
			}
		}
		return tx.Omit("FieldMappings").Save(conn).Error
	})
}

// GetByID retrieves a connection with its field mappings preloaded.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: connection ID.
// Returns:
//   - *domain.Connection: connection if found.
//   - error: non-nil if lookup fails.
func (r *ConnectionRepository) GetByID(ctx context.Context, id string) (*domain.Connection, error) {
	var conn domain.Connection
	if err := r.db.WithContext(ctx).
		Preload("FieldMappings").
		First(&conn, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// List retrieves connections with pagination, newest first.
func (r *ConnectionRepository) List(ctx context.Context, limit, offset int) ([]domain.Connection, error) {
	var conns []domain.Connection
	if err := r.db.WithContext(ctx).
		Limit(limit).
		Offset(offset).
		Order("created_at DESC").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// SetActive flips the soft-disable flag.
func (r *ConnectionRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).
		Model(&domain.Connection{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}

// RecordRun updates the rolling sync statistics after a run reaches a
// terminal state. Counts only accumulate.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: connection ID.
//   - synced: records processed successfully in this run.
//   - succeeded: whether the run completed.
// Returns:
//   - error: non-nil if the update fails.
func (r *ConnectionRepository) RecordRun(ctx context.Context, id string, synced int, succeeded bool) error {
	succ := 0
	if succeeded {
		succ = 1
	}

	// Single UPDATE with SQL expressions so concurrent runs of the same
	// connection never lose an increment. Every expression reads the
	// pre-update column values, so the rate stays consistent with the counts.
	return r.db.WithContext(ctx).Model(&domain.Connection{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"last_sync_at":         time.Now(),
			"total_records_synced": gorm.Expr("total_records_synced + ?", synced),
			"total_runs":           gorm.Expr("total_runs + 1"),
			"successful_runs":      gorm.Expr("successful_runs + ?", succ),
			"sync_success_rate":    gorm.Expr("(successful_runs + ?) * 1.0 / (total_runs + 1)", succ),
		}).Error
}

// Delete removes a connection; mapped rows cascade through foreign keys.
func (r *ConnectionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Select("FieldMappings").Delete(&domain.Connection{ID: id}).Error
}
