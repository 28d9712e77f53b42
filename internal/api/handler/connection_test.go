package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/secret"
	"github.com/hirewire/atsync/internal/service"
)

func TestConnectionGetIncludesRecordCounts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	db, err := repository.InitDB(&config.DatabaseConfig{
		Driver:      "sqlite",
		Path:        filepath.Join(t.TempDir(), "atsync_test.db"),
		AutoMigrate: true,
	})
	require.NoError(t, err)

	box, err := secret.NewBox("test-passphrase")
	require.NoError(t, err)

	connRepo := repository.NewConnectionRepository(db)
	jobRepo := repository.NewJobPostingRepository(db)
	candRepo := repository.NewCandidateRepository(db)
	appRepo := repository.NewApplicationRepository(db)

	connService := service.NewConnectionService(connRepo, box, &config.SyncConfig{})
	conn, err := connService.Create(ctx, &service.ConnectionInput{
		Name:        "Greenhouse Prod",
		Provider:    "greenhouse",
		APIEndpoint: "https://harvest.greenhouse.io",
		Credentials: map[string]string{"api_key": "gh-test-key"},
	})
	require.NoError(t, err)

	for _, extID := range []string{"J1", "J2"} {
		require.NoError(t, jobRepo.Upsert(ctx, &domain.JobPosting{
			ID:           uuid.New().String(),
			ConnectionID: conn.ID,
			ExternalID:   extID,
			Title:        "Backend Engineer",
		}))
	}
	require.NoError(t, candRepo.Upsert(ctx, &domain.Candidate{
		ID:           uuid.New().String(),
		ConnectionID: conn.ID,
		ExternalID:   "C1",
	}))

	h := NewConnectionHandler(connService, nil, repository.NewSyncLogRepository(db), jobRepo, candRepo, appRepo)
	r := gin.New()
	r.GET("/api/v1/connections/:id", h.Get)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/connections/"+conn.ID, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Connection struct {
			ID string `json:"id"`
		} `json:"connection"`
		Records struct {
			Jobs         int64 `json:"jobs"`
			Candidates   int64 `json:"candidates"`
			Applications int64 `json:"applications"`
		} `json:"records"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, conn.ID, body.Connection.ID)
	require.EqualValues(t, 2, body.Records.Jobs)
	require.EqualValues(t, 1, body.Records.Candidates)
	require.Zero(t, body.Records.Applications)
}
