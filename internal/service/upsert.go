package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"

	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/normalize"
	"github.com/hirewire/atsync/internal/repository"
)

// mirrorWriter normalizes raw provider records and writes them into the local
// mirror. It is shared between the batch sync path and the webhook path so
// both converge on the same dedup rules.
type mirrorWriter struct {
	norm       *normalize.Normalizer
	jobs       *repository.JobPostingRepository
	candidates *repository.CandidateRepository
	apps       *repository.ApplicationRepository
}

func newMirrorWriter(jobs *repository.JobPostingRepository, candidates *repository.CandidateRepository, apps *repository.ApplicationRepository) *mirrorWriter {
	return &mirrorWriter{
		norm:       normalize.New(),
		jobs:       jobs,
		candidates: candidates,
		apps:       apps,
	}
}

// upsertJob normalizes one raw job record and upserts it by
// (connection_id, external_id). Returns whether a new row was created.
func (m *mirrorWriter) upsertJob(ctx context.Context, conn *domain.Connection, raw gjson.Result) (bool, error) {
	job, err := m.norm.Job(conn, raw)
	if err != nil {
		return false, err
	}

	existing, err := m.jobs.GetByExternalID(ctx, conn.ID, job.ExternalID)
	created := false
	switch {
	case err == nil:
		job.ID = existing.ID
		job.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		job.ID = uuid.New().String()
		job.CreatedAt = time.Now().UTC()
		created = true
	default:
		return false, fmt.Errorf("lookup job %s: %w", job.ExternalID, err)
	}
	job.UpdatedAt = time.Now().UTC()

	if err := m.jobs.Upsert(ctx, job); err != nil {
		return false, fmt.Errorf("upsert job %s: %w", job.ExternalID, err)
	}
	return created, nil
}

// upsertCandidate mirrors upsertJob for candidate records.
func (m *mirrorWriter) upsertCandidate(ctx context.Context, conn *domain.Connection, raw gjson.Result) (bool, error) {
	cand, err := m.norm.Candidate(conn, raw)
	if err != nil {
		return false, err
	}

	existing, err := m.candidates.GetByExternalID(ctx, conn.ID, cand.ExternalID)
	created := false
	switch {
	case err == nil:
		cand.ID = existing.ID
		cand.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		cand.ID = uuid.New().String()
		cand.CreatedAt = time.Now().UTC()
		created = true
	default:
		return false, fmt.Errorf("lookup candidate %s: %w", cand.ExternalID, err)
	}
	cand.UpdatedAt = time.Now().UTC()

	if err := m.candidates.Upsert(ctx, cand); err != nil {
		return false, fmt.Errorf("upsert candidate %s: %w", cand.ExternalID, err)
	}
	return created, nil
}

// upsertApplication normalizes one raw application record, resolves its job
// and candidate by external id, and upserts by (job_posting_id, candidate_id).
// An application whose job or candidate has not been mirrored yet is rejected
// with ErrMissingDependency; the caller counts it as failed.
func (m *mirrorWriter) upsertApplication(ctx context.Context, conn *domain.Connection, raw gjson.Result) (bool, error) {
	norm, err := m.norm.Application(conn, raw)
	if err != nil {
		return false, err
	}

	job, err := m.jobs.GetByExternalID(ctx, conn.ID, norm.JobExternalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("job %s: %w", norm.JobExternalID, ErrMissingDependency)
		}
		return false, fmt.Errorf("lookup job %s: %w", norm.JobExternalID, err)
	}
	cand, err := m.candidates.GetByExternalID(ctx, conn.ID, norm.CandidateExternalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("candidate %s: %w", norm.CandidateExternalID, ErrMissingDependency)
		}
		return false, fmt.Errorf("lookup candidate %s: %w", norm.CandidateExternalID, err)
	}

	app := norm.Application
	app.JobPostingID = job.ID
	app.CandidateID = cand.ID

	existing, err := m.apps.GetByPair(ctx, job.ID, cand.ID)
	created := false
	switch {
	case err == nil:
		app.ID = existing.ID
		app.CreatedAt = existing.CreatedAt
	case errors.Is(err, gorm.ErrRecordNotFound):
		app.ID = uuid.New().String()
		app.CreatedAt = time.Now().UTC()
		created = true
	default:
		return false, fmt.Errorf("lookup application pair: %w", err)
	}
	app.UpdatedAt = time.Now().UTC()

	if err := m.apps.Upsert(ctx, &app); err != nil {
		return false, fmt.Errorf("upsert application %s: %w", app.ExternalID, err)
	}
	return created, nil
}

// upsert dispatches a raw record to the writer for its entity type.
func (m *mirrorWriter) upsert(ctx context.Context, conn *domain.Connection, entity domain.EntityType, raw gjson.Result) (bool, error) {
	switch entity {
	case domain.EntityJob:
		return m.upsertJob(ctx, conn, raw)
	case domain.EntityCandidate:
		return m.upsertCandidate(ctx, conn, raw)
	case domain.EntityApplication:
		return m.upsertApplication(ctx, conn, raw)
	default:
		return false, fmt.Errorf("unsupported entity type %q", entity)
	}
}
