package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/provider"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/secret"
)

// testEnv wires a full service stack against a temp-file SQLite database and
// an httptest provider.
type testEnv struct {
	db       *gorm.DB
	conns    *repository.ConnectionRepository
	jobs     *repository.JobPostingRepository
	cands    *repository.CandidateRepository
	apps     *repository.ApplicationRepository
	syncLogs *repository.SyncLogRepository
	webhooks *repository.WebhookRepository
	box      *secret.Box
	sync     *SyncService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "atsync_test.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	box, err := secret.NewBox("test-passphrase")
	require.NoError(t, err)

	env := &testEnv{
		db:       db,
		conns:    repository.NewConnectionRepository(db),
		jobs:     repository.NewJobPostingRepository(db),
		cands:    repository.NewCandidateRepository(db),
		apps:     repository.NewApplicationRepository(db),
		syncLogs: repository.NewSyncLogRepository(db),
		webhooks: repository.NewWebhookRepository(db),
		box:      box,
	}

	limiter := NewRateLimiter(env.syncLogs, 100)
	env.sync = NewSyncService(env.conns, env.jobs, env.cands, env.apps, env.syncLogs, limiter, box,
		&config.SyncConfig{Workers: 2, RequestTimeout: 5 * time.Second})
	return env
}

// newConnection stores an active greenhouse connection pointing at endpoint.
func (env *testEnv) newConnection(t *testing.T, endpoint string) *domain.Connection {
	t.Helper()

	sealed, err := env.box.Seal(map[string]string{"api_key": "gh-test-key"})
	require.NoError(t, err)

	conn := &domain.Connection{
		ID:          uuid.New().String(),
		Name:        "acme recruiting",
		Provider:    domain.ProviderGreenhouse,
		APIEndpoint: endpoint,
		Credentials: sealed,
		IsActive:    true,
	}
	require.NoError(t, env.conns.Create(context.Background(), conn))
	return conn
}

// greenhouseServer serves canned JSON per harvest path; paths without an
// entry return 404.
func greenhouseServer(t *testing.T, responses map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSyncJobsCreateThenUpdate(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{
		"/v1/jobs": `[
			{"id": "J1", "title": "Backend Engineer", "location": "Berlin"},
			{"id": "J2", "title": "Data Analyst", "location": "Remote"}
		]`,
	})
	conn := env.newConnection(t, srv.URL)
	ctx := context.Background()

	first, err := env.sync.Sync(ctx, conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.NoError(t, err)
	require.Equal(t, domain.SyncStatusCompleted, first.Status)
	require.Equal(t, 2, first.Counts[domain.EntityJob].Processed)
	require.Equal(t, 2, first.Counts[domain.EntityJob].Created)
	require.Equal(t, 0, first.Counts[domain.EntityJob].Updated)

	// Re-running the same payload must update in place, not duplicate.
	second, err := env.sync.Sync(ctx, conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.NoError(t, err)
	require.Equal(t, 0, second.Counts[domain.EntityJob].Created)
	require.Equal(t, 2, second.Counts[domain.EntityJob].Updated)

	count, err := env.jobs.CountByConnection(ctx, conn.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestSyncMalformedRecordDoesNotAbortBatch(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{
		"/v1/jobs": `[
			{"id": "J1", "title": "Backend Engineer"},
			{"title": "No External ID"},
			{"id": "J3", "title": "SRE"}
		]`,
	})
	conn := env.newConnection(t, srv.URL)

	result, err := env.sync.Sync(context.Background(), conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.NoError(t, err)
	require.Equal(t, domain.SyncStatusCompleted, result.Status)

	counts := result.Counts[domain.EntityJob]
	require.Equal(t, 3, counts.Processed)
	require.Equal(t, 2, counts.Created)
	require.Equal(t, 1, counts.Failed)
	require.NotEmpty(t, result.Errors)
}

func TestSyncEnvelopeUnwrap(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{
		"/v1/jobs": `{"data": [{"id": "J1", "title": "Backend Engineer"}]}`,
	})
	conn := env.newConnection(t, srv.URL)

	result, err := env.sync.Sync(context.Background(), conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.NoError(t, err)
	require.Equal(t, 1, result.Counts[domain.EntityJob].Created)
}

func TestSyncInactiveConnectionRefused(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{"/v1/jobs": `[]`})
	conn := env.newConnection(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, env.conns.SetActive(ctx, conn.ID, false))

	_, err := env.sync.Sync(ctx, conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.ErrorIs(t, err, ErrInactiveConnection)

	// A refused run leaves no sync log behind.
	logs, err := env.syncLogs.ListByConnection(ctx, conn.ID, 10, 0)
	require.NoError(t, err)
	require.Empty(t, logs)
}

func TestSyncRateLimitCeiling(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{"/v1/jobs": `[]`})
	conn := env.newConnection(t, srv.URL)
	ctx := context.Background()

	// Fill the trailing hour up to the greenhouse ceiling.
	for i := 0; i < 100; i++ {
		require.NoError(t, env.syncLogs.Create(ctx, &domain.SyncLog{
			ID:           uuid.New().String(),
			ConnectionID: conn.ID,
			SyncType:     domain.SyncTypeJobs,
			Status:       domain.SyncStatusCompleted,
			StartedAt:    time.Now().UTC().Add(-10 * time.Minute),
		}))
	}

	_, err := env.sync.Sync(ctx, conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestFullSyncPartialFetchFailureCompletes(t *testing.T) {
	env := newTestEnv(t)
	// Applications endpoint missing: that single fetch fails, the run does not.
	srv := greenhouseServer(t, map[string]string{
		"/v1/jobs":       `[{"id": "J1", "title": "Backend Engineer"}]`,
		"/v1/candidates": `[{"id": "C1", "first_name": "Dana", "email": "dana@example.com"}]`,
	})
	conn := env.newConnection(t, srv.URL)

	result, err := env.sync.Sync(context.Background(), conn.ID, domain.SyncTypeFull, provider.Filters{})
	require.NoError(t, err)
	require.Equal(t, domain.SyncStatusCompleted, result.Status)
	require.NotEmpty(t, result.Errors)
	require.Equal(t, 1, result.Counts[domain.EntityJob].Created)
	require.Equal(t, 1, result.Counts[domain.EntityCandidate].Created)
}

func TestFullSyncAllFetchesFailedMarksRunFailed(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{})
	conn := env.newConnection(t, srv.URL)
	ctx := context.Background()

	result, err := env.sync.Sync(ctx, conn.ID, domain.SyncTypeFull, provider.Filters{})
	require.Error(t, err)
	require.NotNil(t, result)
	require.Equal(t, domain.SyncStatusFailed, result.Status)

	logs, err := env.syncLogs.ListByConnection(ctx, conn.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, domain.SyncStatusFailed, logs[0].Status)
	require.NotNil(t, logs[0].CompletedAt)
}

func TestFullSyncLinksApplications(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{
		"/v1/jobs":       `[{"id": "J1", "title": "Backend Engineer"}]`,
		"/v1/candidates": `[{"id": "C1", "first_name": "Dana", "last_name": "Reyes", "email": "dana@example.com"}]`,
		"/v1/applications": `[
			{"id": "A1", "job_id": "J1", "candidate_id": "C1", "status": "onsite"},
			{"id": "A2", "job_id": "MISSING", "candidate_id": "C1", "status": "new"}
		]`,
	})
	conn := env.newConnection(t, srv.URL)
	ctx := context.Background()

	result, err := env.sync.Sync(ctx, conn.ID, domain.SyncTypeFull, provider.Filters{})
	require.NoError(t, err)

	appCounts := result.Counts[domain.EntityApplication]
	require.Equal(t, 2, appCounts.Processed)
	require.Equal(t, 1, appCounts.Created)
	require.Equal(t, 1, appCounts.Failed)

	job, err := env.jobs.GetByExternalID(ctx, conn.ID, "J1")
	require.NoError(t, err)
	cand, err := env.cands.GetByExternalID(ctx, conn.ID, "C1")
	require.NoError(t, err)

	app, err := env.apps.GetByPair(ctx, job.ID, cand.ID)
	require.NoError(t, err)
	require.Equal(t, domain.ApplicationStatusInterview, app.Status)
}

func TestSyncFetchFailureIsNotRetried(t *testing.T) {
	env := newTestEnv(t)

	// Drop every connection mid-request; a single run must hit the
	// provider exactly once per fetch and report the failure upward.
	var attempts int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		hj, ok := w.(http.Hijacker)
		if !ok {
			return
		}
		if conn, _, err := hj.Hijack(); err == nil {
			conn.Close()
		}
	}))
	t.Cleanup(srv.Close)
	conn := env.newConnection(t, srv.URL)

	result, err := env.sync.Sync(context.Background(), conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.Error(t, err)
	require.NotNil(t, result)
	require.Equal(t, domain.SyncStatusFailed, result.Status)
	require.EqualValues(t, 1, atomic.LoadInt32(&attempts))
}

func TestSyncRecordsRollingStats(t *testing.T) {
	env := newTestEnv(t)
	srv := greenhouseServer(t, map[string]string{
		"/v1/jobs": `[{"id": "J1", "title": "Backend Engineer"}]`,
	})
	conn := env.newConnection(t, srv.URL)
	ctx := context.Background()

	_, err := env.sync.Sync(ctx, conn.ID, domain.SyncTypeJobs, provider.Filters{})
	require.NoError(t, err)

	got, err := env.conns.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, got.TotalRuns)
	require.EqualValues(t, 1, got.SuccessfulRuns)
	require.EqualValues(t, 1, got.TotalRecordsSynced)
	require.InDelta(t, 1.0, got.SyncSuccessRate, 0.001)
	require.NotNil(t, got.LastSyncAt)
}
