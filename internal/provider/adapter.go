// Package provider builds the request shape for each supported ATS vendor:
// authentication headers, entity endpoints, and default query parameters.
// Adapters are pure and total; they never touch the network.
package provider

import (
	"strings"

	"github.com/hirewire/atsync/internal/domain"
)

// Filters carries the optional sync-trigger filters into provider query
// parameters.
type Filters struct {
	Location   string
	Keywords   string
	Department string
}

// Adapter describes one provider's fixed request shape.
//
// Headers receives the decrypted credential bundle; a missing credential key
// yields an empty header value, never an error. Credential validity only
// surfaces when the provider rejects the request.
type Adapter interface {
	// Provider returns the vendor this adapter serves.
	Provider() domain.Provider

	// Headers builds the authentication and content headers for a request.
	Headers(conn *domain.Connection, creds map[string]string) map[string]string

	// JobsURL returns the absolute jobs collection endpoint.
	JobsURL(conn *domain.Connection) string

	// CandidatesURL returns the absolute candidates collection endpoint.
	CandidatesURL(conn *domain.Connection) string

	// ApplicationsURL returns the absolute applications collection endpoint.
	ApplicationsURL(conn *domain.Connection) string

	// DefaultParams returns the provider's default query parameters merged
	// with any caller-supplied filters.
	DefaultParams(conn *domain.Connection, filters Filters) map[string]string
}

var registry = map[domain.Provider]Adapter{
	domain.ProviderWorkday:        workdayAdapter{},
	domain.ProviderGreenhouse:     greenhouseAdapter{},
	domain.ProviderLever:          leverAdapter{},
	domain.ProviderBambooHR:       bambooAdapter{},
	domain.ProviderSuccessFactors: successFactorsAdapter{},
	domain.ProviderTaleo:          taleoAdapter{},
	domain.ProviderICIMS:          icimsAdapter{},
	domain.ProviderJazzHR:         jazzAdapter{},
	domain.ProviderBullhorn:       bullhornAdapter{},
	domain.ProviderJobvite:        jobviteAdapter{},
}

// ForProvider returns the adapter for p, or the permissive generic adapter
// when p is unknown. The fallback is deliberate: an unrecognized provider
// degrades to plain /jobs, /candidates, /applications suffixes instead of
// refusing to sync.
func ForProvider(p domain.Provider) Adapter {
	if a, ok := registry[p]; ok {
		return a
	}
	return genericAdapter{}
}

// baseURL strips a trailing slash so suffix joins stay clean.
func baseURL(conn *domain.Connection) string {
	return strings.TrimRight(conn.APIEndpoint, "/")
}

// filterParams maps the common sync filters onto provider-agnostic parameter
// names. Adapters that need vendor-specific names override individual keys.
func filterParams(filters Filters) map[string]string {
	params := map[string]string{}
	if filters.Location != "" {
		params["location"] = filters.Location
	}
	if filters.Keywords != "" {
		params["keywords"] = filters.Keywords
	}
	if filters.Department != "" {
		params["department"] = filters.Department
	}
	return params
}

// mergeParams overlays filters onto defaults without mutating either input.
func mergeParams(defaults map[string]string, filters Filters) map[string]string {
	merged := make(map[string]string, len(defaults)+3)
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range filterParams(filters) {
		merged[k] = v
	}
	return merged
}
