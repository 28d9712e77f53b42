package service

import "errors"

// Sentinel errors returned across the service boundary. Callers distinguish
// them with errors.Is; record-level failures never surface here.
var (
	// ErrInactiveConnection is returned when a sync is requested for a
	// soft-disabled connection.
	ErrInactiveConnection = errors.New("connection is inactive")

	// ErrRateLimited is returned when the trailing-hour run count has
	// reached the provider's ceiling. Nothing is logged as a run.
	ErrRateLimited = errors.New("hourly sync limit reached")

	// ErrMissingDependency marks an application whose job or candidate has
	// not been mirrored yet. The record is dropped and counted as failed.
	ErrMissingDependency = errors.New("job or candidate not yet synced")

	// ErrRetryExhausted is returned when a webhook's retry budget is spent.
	ErrRetryExhausted = errors.New("webhook retry limit exhausted")

	// ErrUnknownProvider is returned at connection-create time for a
	// provider outside the supported set.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidInput wraps connection input validation failures so the API
	// layer can map them to a client error.
	ErrInvalidInput = errors.New("invalid input")
)
