package service

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/hirewire/atsync/internal/config"
	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/logger"
	"github.com/hirewire/atsync/internal/provider"
	"github.com/hirewire/atsync/internal/repository"
	"github.com/hirewire/atsync/internal/secret"
)

// ConnectionInput carries the writable fields of a connection. Credentials
// arrive in plaintext and are sealed before they reach the database.
type ConnectionInput struct {
	Name          string                `json:"name"`
	Provider      string                `json:"provider"`
	APIEndpoint   string                `json:"api_endpoint"`
	Credentials   map[string]string     `json:"credentials"`
	Settings      domain.JSONMap        `json:"settings"`
	FieldMappings []domain.FieldMapping `json:"field_mappings"`
	IsActive      *bool                 `json:"is_active"`
}

// TestResult reports a connectivity check against the provider.
type TestResult struct {
	Success    bool          `json:"success"`
	Message    string        `json:"message"`
	StatusCode int           `json:"status_code,omitempty"`
	Latency    time.Duration `json:"-"`
	LatencyMs  int64         `json:"latency_ms"`
}

// ConnectionService manages connection lifecycle: validation, credential
// sealing, and connectivity checks.
type ConnectionService struct {
	connections *repository.ConnectionRepository
	box         *secret.Box
	client      *resty.Client
}

func NewConnectionService(connections *repository.ConnectionRepository, box *secret.Box, cfg *config.SyncConfig) *ConnectionService {
	timeout := cfg.TestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ConnectionService{
		connections: connections,
		box:         box,
		client:      resty.New().SetTimeout(timeout),
	}
}

// Create validates and stores a new connection. The provider must be one of
// the supported set; credential contents are not validated here.
func (s *ConnectionService) Create(ctx context.Context, input *ConnectionInput) (*domain.Connection, error) {
	if input.Name == "" {
		return nil, fmt.Errorf("%w: connection name is required", ErrInvalidInput)
	}
	p := domain.Provider(input.Provider)
	if !p.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, input.Provider)
	}
	if err := validateEndpoint(input.APIEndpoint); err != nil {
		return nil, err
	}

	sealed, err := s.box.Seal(input.Credentials)
	if err != nil {
		return nil, fmt.Errorf("seal credentials: %w", err)
	}

	conn := &domain.Connection{
		ID:          uuid.New().String(),
		Name:        input.Name,
		Provider:    p,
		APIEndpoint: input.APIEndpoint,
		Credentials: sealed,
		Settings:    input.Settings,
		IsActive:    true,
	}
	if input.IsActive != nil {
		conn.IsActive = *input.IsActive
	}
	conn.FieldMappings = prepareMappings(conn.ID, input.FieldMappings)

	if err := s.connections.Create(ctx, conn); err != nil {
		return nil, fmt.Errorf("create connection: %w", err)
	}
	logger.CtxInfo(logger.SetConnectionID(ctx, conn.ID), "connection created: provider=%s", conn.Provider)
	return conn, nil
}

// Update applies the supplied fields to an existing connection. Empty input
// fields are left unchanged; credentials are re-sealed only when provided.
func (s *ConnectionService) Update(ctx context.Context, id string, input *ConnectionInput) (*domain.Connection, error) {
	conn, err := s.connections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}

	if input.Name != "" {
		conn.Name = input.Name
	}
	if input.Provider != "" {
		p := domain.Provider(input.Provider)
		if !p.IsValid() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, input.Provider)
		}
		conn.Provider = p
	}
	if input.APIEndpoint != "" {
		if err := validateEndpoint(input.APIEndpoint); err != nil {
			return nil, err
		}
		conn.APIEndpoint = input.APIEndpoint
	}
	if input.Credentials != nil {
		sealed, err := s.box.Seal(input.Credentials)
		if err != nil {
			return nil, fmt.Errorf("seal credentials: %w", err)
		}
		conn.Credentials = sealed
	}
	if input.Settings != nil {
		conn.Settings = input.Settings
	}
	if input.IsActive != nil {
		conn.IsActive = *input.IsActive
	}
	if input.FieldMappings != nil {
		conn.FieldMappings = prepareMappings(conn.ID, input.FieldMappings)
	}

	if err := s.connections.Update(ctx, conn); err != nil {
		return nil, fmt.Errorf("update connection: %w", err)
	}
	return conn, nil
}

// Get loads one connection with its field mappings.
func (s *ConnectionService) Get(ctx context.Context, id string) (*domain.Connection, error) {
	return s.connections.GetByID(ctx, id)
}

// List returns a page of connections.
func (s *ConnectionService) List(ctx context.Context, limit, offset int) ([]domain.Connection, error) {
	return s.connections.List(ctx, limit, offset)
}

// Delete removes a connection and its field mappings.
func (s *ConnectionService) Delete(ctx context.Context, id string) error {
	return s.connections.Delete(ctx, id)
}

// SetActive toggles the connection's sync eligibility.
func (s *ConnectionService) SetActive(ctx context.Context, id string, active bool) error {
	return s.connections.SetActive(ctx, id, active)
}

// Test calls the provider's jobs endpoint with the connection's credentials.
// Failures are reported in the result, not as an error; only an unloadable
// connection errors.
func (s *ConnectionService) Test(ctx context.Context, id string) (*TestResult, error) {
	conn, err := s.connections.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load connection: %w", err)
	}

	creds, err := s.box.Open(conn.Credentials)
	if err != nil {
		return &TestResult{Success: false, Message: fmt.Sprintf("credentials unreadable: %v", err)}, nil
	}

	adapter := provider.ForProvider(conn.Provider)
	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeaders(adapter.Headers(conn, creds)).
		SetQueryParams(adapter.DefaultParams(conn, provider.Filters{})).
		Get(adapter.JobsURL(conn))
	latency := time.Since(start)

	result := &TestResult{Latency: latency, LatencyMs: latency.Milliseconds()}
	switch {
	case err != nil:
		result.Message = fmt.Sprintf("request failed: %v", err)
	case resp.IsError():
		result.StatusCode = resp.StatusCode()
		result.Message = fmt.Sprintf("provider returned %d", resp.StatusCode())
	default:
		result.Success = true
		result.StatusCode = resp.StatusCode()
		result.Message = "connection ok"
	}
	return result, nil
}

// prepareMappings stamps ids and the owning connection onto inbound mappings.
func prepareMappings(connectionID string, mappings []domain.FieldMapping) []domain.FieldMapping {
	out := make([]domain.FieldMapping, len(mappings))
	for i, m := range mappings {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		m.ConnectionID = connectionID
		out[i] = m
	}
	return out
}

// validateEndpoint requires an absolute http(s) URL.
func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%w: api_endpoint must be an absolute http(s) URL", ErrInvalidInput)
	}
	return nil
}
