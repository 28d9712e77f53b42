package service

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/logger"
	"github.com/hirewire/atsync/internal/normalize"
	"github.com/hirewire/atsync/internal/provider"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/secret"
)

// maxRunErrors caps the per-run error list persisted on the sync log.
const maxRunErrors = 50

// EntityCounts aggregates the outcome of one entity type within a run.
type EntityCounts struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Failed    int `json:"failed"`
}

// SyncResult summarizes a finished run for the caller. The persisted SyncLog
// carries the same numbers.
type SyncResult struct {
	SyncLogID string                             `json:"sync_log_id"`
	Status    domain.SyncStatus                  `json:"status"`
	Counts    map[domain.EntityType]EntityCounts `json:"counts"`
	Errors    []string                           `json:"errors,omitempty"`
	Duration  time.Duration                      `json:"-"`
}

// SyncService orchestrates pull-based synchronization runs: it gates on the
// rate limiter, fetches each entity collection from the provider, fans the
// records out to a bounded worker pool, and records the run outcome.
type SyncService struct {
	connections *repository.ConnectionRepository
	syncLogs    *repository.SyncLogRepository
	writer      *mirrorWriter
	limiter     *RateLimiter
	box         *secret.Box
	client      *resty.Client
	workers     int
}

func NewSyncService(
	connections *repository.ConnectionRepository,
	jobs *repository.JobPostingRepository,
	candidates *repository.CandidateRepository,
	apps *repository.ApplicationRepository,
	syncLogs *repository.SyncLogRepository,
	limiter *RateLimiter,
	box *secret.Box,
	cfg *config.SyncConfig,
) *SyncService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	// No transport-level retry: a failed fetch surfaces on the run and the
	// caller or scheduler decides whether to run again.
	client := resty.New().SetTimeout(timeout)

	return &SyncService{
		connections: connections,
		syncLogs:    syncLogs,
		writer:      newMirrorWriter(jobs, candidates, apps),
		limiter:     limiter,
		box:         box,
		client:      client,
		workers:     workers,
	}
}

// entityOrder returns the entity types a run covers, dependency-first:
// applications reference jobs and candidates, so a full run mirrors those
// before it touches applications.
func entityOrder(syncType domain.SyncType) []domain.EntityType {
	switch syncType {
	case domain.SyncTypeJobs:
		return []domain.EntityType{domain.EntityJob}
	case domain.SyncTypeCandidates:
		return []domain.EntityType{domain.EntityCandidate}
	case domain.SyncTypeApplications:
		return []domain.EntityType{domain.EntityApplication}
	default:
		return []domain.EntityType{domain.EntityJob, domain.EntityCandidate, domain.EntityApplication}
	}
}

// Sync runs one synchronization for the connection. A denied rate gate or a
// bad credential blob returns an error without creating a run; once a SyncLog
// exists it always reaches a terminal status. For a full run the log is
// marked failed only when every entity fetch failed; partial fetch failures
// leave the run completed with errors attached.
func (s *SyncService) Sync(ctx context.Context, connectionID string, syncType domain.SyncType, filters provider.Filters) (*SyncResult, error) {
	conn, err := s.connections.GetByID(ctx, connectionID)
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}

	ctx = logger.SetComponent(ctx, "sync")
	ctx = logger.SetConnectionID(ctx, conn.ID)
	ctx = logger.SetProvider(ctx, string(conn.Provider))

	if !conn.IsActive {
		return nil, ErrInactiveConnection
	}
	allowed, err := s.limiter.CanSync(ctx, conn)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	creds, err := s.box.Open(conn.Credentials)
	if err != nil {
		return nil, fmt.Errorf("open credentials: %w", err)
	}
	adapter := provider.ForProvider(conn.Provider)

	run := &domain.SyncLog{
		ID:           uuid.New().String(),
		ConnectionID: conn.ID,
		SyncType:     syncType,
		Status:       domain.SyncStatusStarted,
		Counts:       domain.JSONMap{},
		StartedAt:    time.Now().UTC(),
	}
	if err := s.syncLogs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("create sync log: %w", err)
	}

	ctx = logger.SetSyncID(ctx, run.ID)
	logger.CtxInfo(ctx, "sync started: type=%s", syncType)

	order := entityOrder(syncType)
	result := &SyncResult{
		SyncLogID: run.ID,
		Counts:    make(map[domain.EntityType]EntityCounts, len(order)),
	}
	var fetchErrs []error

	for _, entity := range order {
		counts, recordErrs, err := s.syncEntity(ctx, conn, creds, adapter, entity, filters)
		result.Counts[entity] = counts

		run.RecordsProcessed += counts.Processed
		run.RecordsCreated += counts.Created
		run.RecordsUpdated += counts.Updated
		run.RecordsFailed += counts.Failed
		for _, msg := range recordErrs {
			if len(run.Errors) >= maxRunErrors {
				break
			}
			run.Errors = append(run.Errors, msg)
		}
		run.Counts[pluralEntity(entity)] = map[string]interface{}{
			"processed": counts.Processed,
			"created":   counts.Created,
			"updated":   counts.Updated,
			"failed":    counts.Failed,
		}
		if err != nil {
			fetchErrs = append(fetchErrs, err)
			run.Errors = append(run.Errors, err.Error())
			logger.CtxError(ctx, "entity fetch failed: entity=%s err=%v", entity, err)
		}
	}

	now := time.Now().UTC()
	run.CompletedAt = &now
	run.DurationSeconds = now.Sub(run.StartedAt).Seconds()
	if len(fetchErrs) == len(order) {
		run.Status = domain.SyncStatusFailed
	} else {
		run.Status = domain.SyncStatusCompleted
	}
	if err := s.syncLogs.Update(ctx, run); err != nil {
		return nil, fmt.Errorf("finalize sync log: %w", err)
	}

	synced := run.RecordsCreated + run.RecordsUpdated
	if err := s.connections.RecordRun(ctx, conn.ID, synced, run.Status == domain.SyncStatusCompleted); err != nil {
		logger.CtxError(ctx, "record run stats: %v", err)
	}

	result.Status = run.Status
	result.Errors = run.Errors
	result.Duration = now.Sub(run.StartedAt)

	logger.With(logger.Fields{logger.FieldStatus: string(run.Status)}).
		WithDuration(result.Duration.Milliseconds()).
		WithCount(run.RecordsProcessed).
		Info(ctx, "sync finished: created=%d updated=%d failed=%d",
			run.RecordsCreated, run.RecordsUpdated, run.RecordsFailed)

	if run.Status == domain.SyncStatusFailed {
		return result, fmt.Errorf("sync failed: %s", strings.Join(run.Errors, "; "))
	}
	return result, nil
}

// syncEntity fetches one entity collection and mirrors every record through
// the worker pool. A transport or HTTP-level failure returns zero counts and
// the error; record-level failures only bump the failed counter.
func (s *SyncService) syncEntity(ctx context.Context, conn *domain.Connection, creds map[string]string, adapter provider.Adapter, entity domain.EntityType, filters provider.Filters) (EntityCounts, []string, error) {
	ctx = logger.WithField(ctx, logger.FieldEntityType, string(entity))

	url := entityURL(adapter, conn, entity)
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeaders(adapter.Headers(conn, creds)).
		SetQueryParams(adapter.DefaultParams(conn, filters)).
		Get(url)
	if err != nil {
		return EntityCounts{}, nil, fmt.Errorf("fetch %s: %w", entity, err)
	}
	if resp.IsError() {
		return EntityCounts{}, nil, fmt.Errorf("fetch %s: provider returned %d", entity, resp.StatusCode())
	}

	records := normalize.UnwrapRecords(resp.Body(), responsePath(conn, entity))
	logger.CtxDebug(ctx, "fetched %d raw records", len(records))

	var processed, created, updated, failed int64
	var errMu sync.Mutex
	var recordErrs []string

	tasks := make(chan gjson.Result)
	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for raw := range tasks {
				atomic.AddInt64(&processed, 1)
				wasCreated, err := s.writer.upsert(ctx, conn, entity, raw)
				if err != nil {
					atomic.AddInt64(&failed, 1)
					errMu.Lock()
					if len(recordErrs) < maxRunErrors {
						recordErrs = append(recordErrs, fmt.Sprintf("%s: %v", entity, err))
					}
					errMu.Unlock()
					logger.CtxDebug(ctx, "record rejected: %v", err)
					continue
				}
				if wasCreated {
					atomic.AddInt64(&created, 1)
				} else {
					atomic.AddInt64(&updated, 1)
				}
			}
		}()
	}
	for _, raw := range records {
		tasks <- raw
	}
	close(tasks)
	wg.Wait()

	counts := EntityCounts{
		Processed: int(processed),
		Created:   int(created),
		Updated:   int(updated),
		Failed:    int(failed),
	}
	return counts, recordErrs, nil
}

// entityURL resolves the collection endpoint for an entity type.
func entityURL(adapter provider.Adapter, conn *domain.Connection, entity domain.EntityType) string {
	switch entity {
	case domain.EntityCandidate:
		return adapter.CandidatesURL(conn)
	case domain.EntityApplication:
		return adapter.ApplicationsURL(conn)
	default:
		return adapter.JobsURL(conn)
	}
}

// responsePath reads an envelope override from connection settings, either a
// per-entity "<entity>_response_path" or a shared "response_path".
func responsePath(conn *domain.Connection, entity domain.EntityType) string {
	if conn.Settings == nil {
		return ""
	}
	if v, ok := conn.Settings[string(entity)+"_response_path"].(string); ok && v != "" {
		return v
	}
	if v, ok := conn.Settings["response_path"].(string); ok && v != "" {
		return v
	}
	return ""
}

// pluralEntity maps an entity type to its per-entity counts key.
func pluralEntity(entity domain.EntityType) string {
	switch entity {
	case domain.EntityJob:
		return "jobs"
	case domain.EntityCandidate:
		return "candidates"
	case domain.EntityApplication:
		return "applications"
	default:
		return string(entity)
	}
}
