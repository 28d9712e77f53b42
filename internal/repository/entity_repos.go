package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirewire/atsync/internal/domain"
)

// JobPostingRepository handles mirrored job postings.
type JobPostingRepository struct {
	db *gorm.DB
}

// NewJobPostingRepository creates a new JobPostingRepository.
func NewJobPostingRepository(db *gorm.DB) *JobPostingRepository {
	return &JobPostingRepository{db: db}
}

// GetByExternalID retrieves a job by its dedup key (connection, external id).
func (r *JobPostingRepository) GetByExternalID(ctx context.Context, connectionID, externalID string) (*domain.JobPosting, error) {
	var job domain.JobPosting
	if err := r.db.WithContext(ctx).
		First(&job, "connection_id = ? AND external_id = ?", connectionID, externalID).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// Upsert creates or fully overwrites a job keyed by (connection, external id).
// Concurrent inserts for the same key resolve through the unique constraint,
// not insert-then-catch.
func (r *JobPostingRepository) Upsert(ctx context.Context, job *domain.JobPosting) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "connection_id"}, {Name: "external_id"}},
		UpdateAll: true,
	}).Create(job).Error
}

// CountByConnection counts mirrored jobs for a connection.
func (r *JobPostingRepository) CountByConnection(ctx context.Context, connectionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.JobPosting{}).
		Where("connection_id = ?", connectionID).Count(&count).Error
	return count, err
}

// CandidateRepository handles mirrored candidates.
type CandidateRepository struct {
	db *gorm.DB
}

// NewCandidateRepository creates a new CandidateRepository.
func NewCandidateRepository(db *gorm.DB) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// GetByExternalID retrieves a candidate by its dedup key (connection, external id).
func (r *CandidateRepository) GetByExternalID(ctx context.Context, connectionID, externalID string) (*domain.Candidate, error) {
	var cand domain.Candidate
	if err := r.db.WithContext(ctx).
		First(&cand, "connection_id = ? AND external_id = ?", connectionID, externalID).Error; err != nil {
		return nil, err
	}
	return &cand, nil
}

// Upsert creates or fully overwrites a candidate keyed by (connection, external id).
func (r *CandidateRepository) Upsert(ctx context.Context, cand *domain.Candidate) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "connection_id"}, {Name: "external_id"}},
		UpdateAll: true,
	}).Create(cand).Error
}

// CountByConnection counts mirrored candidates for a connection.
func (r *CandidateRepository) CountByConnection(ctx context.Context, connectionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Candidate{}).
		Where("connection_id = ?", connectionID).Count(&count).Error
	return count, err
}

// ApplicationRepository handles mirrored applications.
type ApplicationRepository struct {
	db *gorm.DB
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// GetByPair retrieves an application by its dedup key (job, candidate).
func (r *ApplicationRepository) GetByPair(ctx context.Context, jobPostingID, candidateID string) (*domain.Application, error) {
	var app domain.Application
	if err := r.db.WithContext(ctx).
		First(&app, "job_posting_id = ? AND candidate_id = ?", jobPostingID, candidateID).Error; err != nil {
		return nil, err
	}
	return &app, nil
}

// Upsert creates or fully overwrites an application keyed by (job, candidate).
func (r *ApplicationRepository) Upsert(ctx context.Context, app *domain.Application) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "job_posting_id"}, {Name: "candidate_id"}},
		UpdateAll: true,
	}).Create(app).Error
}

// CountByConnection counts mirrored applications for a connection.
func (r *ApplicationRepository) CountByConnection(ctx context.Context, connectionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Application{}).
		Where("connection_id = ?", connectionID).Count(&count).Error
	return count, err
}
