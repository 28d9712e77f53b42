package provider

import (
	"strings"
	"testing"

	"github.com/hirewire/atsync/internal/domain"
)

func testConnection(p domain.Provider) *domain.Connection {
	return &domain.Connection{
		ID:          "conn-1",
		Provider:    p,
		APIEndpoint: "https://ats.example.com/",
	}
}

// TestAdaptersAreTotal exercises every registered provider plus the unknown
// fallback with empty credentials: no panics, absolute URLs, non-nil maps.
func TestAdaptersAreTotal(t *testing.T) {
	providers := append([]domain.Provider{}, domain.Providers...)
	providers = append(providers, domain.Provider("somebody-new"))

	for _, p := range providers {
		t.Run(string(p), func(t *testing.T) {
			conn := testConnection(p)
			adapter := ForProvider(p)

			headers := adapter.Headers(conn, map[string]string{})
			if headers == nil {
				t.Fatal("expected non-nil headers")
			}
			if headers["Content-Type"] != "application/json" {
				t.Errorf("expected JSON content type, got %q", headers["Content-Type"])
			}

			for name, url := range map[string]string{
				"jobs":         adapter.JobsURL(conn),
				"candidates":   adapter.CandidatesURL(conn),
				"applications": adapter.ApplicationsURL(conn),
			} {
				if !strings.HasPrefix(url, "https://ats.example.com/") {
					t.Errorf("%s endpoint not rooted at the connection endpoint: %q", name, url)
				}
				if strings.Contains(url, "//jobs") || strings.Contains(url, ".com//") {
					t.Errorf("%s endpoint has a doubled slash: %q", name, url)
				}
			}

			params := adapter.DefaultParams(conn, Filters{})
			if params == nil {
				t.Fatal("expected non-nil params")
			}
		})
	}
}

func TestUnknownProviderFallback(t *testing.T) {
	conn := testConnection("mystery-ats")
	adapter := ForProvider(conn.Provider)

	if got := adapter.JobsURL(conn); got != "https://ats.example.com/jobs" {
		t.Errorf("jobs URL = %q", got)
	}
	if got := adapter.CandidatesURL(conn); got != "https://ats.example.com/candidates" {
		t.Errorf("candidates URL = %q", got)
	}
	if got := adapter.ApplicationsURL(conn); got != "https://ats.example.com/applications" {
		t.Errorf("applications URL = %q", got)
	}

	headers := adapter.Headers(conn, nil)
	if len(headers) != 1 || headers["Content-Type"] != "application/json" {
		t.Errorf("fallback headers = %v, want content type only", headers)
	}
}

func TestAuthSchemes(t *testing.T) {
	creds := map[string]string{
		"access_token": "tok",
		"api_key":      "key",
		"api_secret":   "sec",
		"username":     "user",
		"password":     "pass",
		"auth_token":   "cookie-tok",
		"rest_token":   "bh-tok",
	}

	tests := []struct {
		provider domain.Provider
		header   string
		want     string
	}{
		{domain.ProviderWorkday, "Authorization", "Bearer tok"},
		{domain.ProviderGreenhouse, "Authorization", "Basic a2V5Og=="},
		{domain.ProviderLever, "Authorization", "Basic a2V5Og=="},
		{domain.ProviderBambooHR, "Authorization", "Basic a2V5Ong="},
		{domain.ProviderSuccessFactors, "Authorization", "Basic dXNlcjpwYXNz"},
		{domain.ProviderTaleo, "Cookie", "authToken=cookie-tok"},
		{domain.ProviderICIMS, "Authorization", "Bearer tok"},
		{domain.ProviderJazzHR, "X-API-Key", "key"},
		{domain.ProviderBullhorn, "BhRestToken", "bh-tok"},
		{domain.ProviderJobvite, "x-jvi-api", "key"},
	}

	for _, tc := range tests {
		t.Run(string(tc.provider), func(t *testing.T) {
			conn := testConnection(tc.provider)
			headers := ForProvider(tc.provider).Headers(conn, creds)
			if headers[tc.header] != tc.want {
				t.Errorf("%s = %q, want %q", tc.header, headers[tc.header], tc.want)
			}
		})
	}
}

func TestDefaultParamsMergeFilters(t *testing.T) {
	conn := testConnection(domain.ProviderGreenhouse)
	adapter := ForProvider(conn.Provider)

	params := adapter.DefaultParams(conn, Filters{
		Location:   "Berlin",
		Keywords:   "golang",
		Department: "Engineering",
	})

	if params["per_page"] != "100" {
		t.Errorf("expected provider default preserved, got %v", params)
	}
	if params["location"] != "Berlin" || params["keywords"] != "golang" || params["department"] != "Engineering" {
		t.Errorf("filters not merged: %v", params)
	}

	// Merging must not mutate the defaults for subsequent calls.
	clean := adapter.DefaultParams(conn, Filters{})
	if _, ok := clean["location"]; ok {
		t.Error("filters leaked into a later DefaultParams call")
	}
}
