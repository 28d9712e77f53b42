package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/domain"
)

func newConnectionService(env *testEnv) *ConnectionService {
	return NewConnectionService(env.conns, env.box, &config.SyncConfig{TestTimeout: 5 * time.Second})
}

func TestConnectionCreateSealsCredentials(t *testing.T) {
	env := newTestEnv(t)
	svc := newConnectionService(env)
	ctx := context.Background()

	conn, err := svc.Create(ctx, &ConnectionInput{
		Name:        "acme recruiting",
		Provider:    "greenhouse",
		APIEndpoint: "https://harvest.example.com",
		Credentials: map[string]string{"api_key": "gh-secret"},
		FieldMappings: []domain.FieldMapping{
			{EntityType: domain.EntityJob, InternalField: "title", ExternalField: "name"},
		},
	})
	require.NoError(t, err)
	require.True(t, conn.IsActive)
	require.NotContains(t, conn.Credentials, "gh-secret")

	stored, err := env.conns.GetByID(ctx, conn.ID)
	require.NoError(t, err)
	require.Len(t, stored.FieldMappings, 1)
	require.Equal(t, conn.ID, stored.FieldMappings[0].ConnectionID)
	require.NotEmpty(t, stored.FieldMappings[0].ID)

	creds, err := env.box.Open(stored.Credentials)
	require.NoError(t, err)
	require.Equal(t, "gh-secret", creds["api_key"])
}

func TestConnectionCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	svc := newConnectionService(env)
	ctx := context.Background()

	_, err := svc.Create(ctx, &ConnectionInput{
		Provider:    "greenhouse",
		APIEndpoint: "https://harvest.example.com",
	})
	require.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Create(ctx, &ConnectionInput{
		Name:        "acme",
		Provider:    "notarealats",
		APIEndpoint: "https://harvest.example.com",
	})
	require.ErrorIs(t, err, ErrUnknownProvider)

	_, err = svc.Create(ctx, &ConnectionInput{
		Name:        "acme",
		Provider:    "greenhouse",
		APIEndpoint: "harvest.example.com",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestConnectionUpdateReSealsOnlyWhenProvided(t *testing.T) {
	env := newTestEnv(t)
	svc := newConnectionService(env)
	ctx := context.Background()

	conn, err := svc.Create(ctx, &ConnectionInput{
		Name:        "acme",
		Provider:    "greenhouse",
		APIEndpoint: "https://harvest.example.com",
		Credentials: map[string]string{"api_key": "original"},
	})
	require.NoError(t, err)
	sealed := conn.Credentials

	updated, err := svc.Update(ctx, conn.ID, &ConnectionInput{Name: "acme eu"})
	require.NoError(t, err)
	require.Equal(t, "acme eu", updated.Name)
	require.Equal(t, sealed, updated.Credentials)

	updated, err = svc.Update(ctx, conn.ID, &ConnectionInput{
		Credentials: map[string]string{"api_key": "rotated"},
	})
	require.NoError(t, err)
	require.NotEqual(t, sealed, updated.Credentials)

	creds, err := env.box.Open(updated.Credentials)
	require.NoError(t, err)
	require.Equal(t, "rotated", creds["api_key"])
}

func TestConnectionTestSendsCredentials(t *testing.T) {
	env := newTestEnv(t)
	svc := newConnectionService(env)
	ctx := context.Background()

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	conn, err := svc.Create(ctx, &ConnectionInput{
		Name:        "acme",
		Provider:    "greenhouse",
		APIEndpoint: srv.URL,
		Credentials: map[string]string{"api_key": "gh-secret"},
	})
	require.NoError(t, err)

	result, err := svc.Test(ctx, conn.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, http.StatusOK, result.StatusCode)
	require.Contains(t, gotAuth, "Basic ")
}

func TestConnectionTestFailureIsResult(t *testing.T) {
	env := newTestEnv(t)
	svc := newConnectionService(env)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	conn, err := svc.Create(ctx, &ConnectionInput{
		Name:        "acme",
		Provider:    "greenhouse",
		APIEndpoint: srv.URL,
		Credentials: map[string]string{"api_key": "wrong"},
	})
	require.NoError(t, err)

	result, err := svc.Test(ctx, conn.ID)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Equal(t, http.StatusUnauthorized, result.StatusCode)
	require.NotEmpty(t, result.Message)
}
