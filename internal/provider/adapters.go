package provider

import (
	"encoding/base64"

	"github.com/hirewire/atsync/internal/domain"
)

const contentTypeJSON = "application/json"

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": contentTypeJSON}
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// workdayAdapter: OAuth bearer token against the recruiting API.
type workdayAdapter struct{}

func (workdayAdapter) Provider() domain.Provider { return domain.ProviderWorkday }

func (workdayAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["Authorization"] = "Bearer " + creds["access_token"]
	return h
}

func (workdayAdapter) JobsURL(c *domain.Connection) string {
	return baseURL(c) + "/ccx/api/recruiting/v2/jobPostings"
}

func (workdayAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/ccx/api/recruiting/v2/candidates"
}

func (workdayAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/ccx/api/recruiting/v2/jobApplications"
}

func (workdayAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"limit": "100", "offset": "0"}, f)
}

// greenhouseAdapter: Harvest-style basic auth, API key as the username.
type greenhouseAdapter struct{}

func (greenhouseAdapter) Provider() domain.Provider { return domain.ProviderGreenhouse }

func (greenhouseAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["Authorization"] = basicAuth(creds["api_key"], "")
	return h
}

func (greenhouseAdapter) JobsURL(c *domain.Connection) string { return baseURL(c) + "/v1/jobs" }

func (greenhouseAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/v1/candidates"
}

func (greenhouseAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/v1/applications"
}

func (greenhouseAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"per_page": "100"}, f)
}

// leverAdapter: basic auth, API key as the username, postings/opportunities
// endpoint naming.
type leverAdapter struct{}

func (leverAdapter) Provider() domain.Provider { return domain.ProviderLever }

func (leverAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["Authorization"] = basicAuth(creds["api_key"], "")
	return h
}

func (leverAdapter) JobsURL(c *domain.Connection) string { return baseURL(c) + "/v1/postings" }

func (leverAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/v1/opportunities"
}

func (leverAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/v1/opportunities/applications"
}

func (leverAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"limit": "100"}, f)
}

// bambooAdapter: basic auth with the API key and a fixed dummy password.
type bambooAdapter struct{}

func (bambooAdapter) Provider() domain.Provider { return domain.ProviderBambooHR }

func (bambooAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["Authorization"] = basicAuth(creds["api_key"], "x")
	h["Accept"] = contentTypeJSON
	return h
}

func (bambooAdapter) JobsURL(c *domain.Connection) string {
	return baseURL(c) + "/v1/applicant_tracking/jobs"
}

func (bambooAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/v1/applicant_tracking/applications/candidates"
}

func (bambooAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/v1/applicant_tracking/applications"
}

func (bambooAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{}, f)
}

// successFactorsAdapter: OData API, basic auth with username@company.
type successFactorsAdapter struct{}

func (successFactorsAdapter) Provider() domain.Provider { return domain.ProviderSuccessFactors }

func (successFactorsAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["Authorization"] = basicAuth(creds["username"], creds["password"])
	h["Accept"] = contentTypeJSON
	return h
}

func (successFactorsAdapter) JobsURL(c *domain.Connection) string {
	return baseURL(c) + "/odata/v2/JobRequisition"
}

func (successFactorsAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/odata/v2/Candidate"
}

func (successFactorsAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/odata/v2/JobApplication"
}

func (successFactorsAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"$format": "json", "$top": "100"}, f)
}

// taleoAdapter: session token carried in a cookie.
type taleoAdapter struct{}

func (taleoAdapter) Provider() domain.Provider { return domain.ProviderTaleo }

func (taleoAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["Cookie"] = "authToken=" + creds["auth_token"]
	return h
}

func (taleoAdapter) JobsURL(c *domain.Connection) string {
	return baseURL(c) + "/object/requisition"
}

func (taleoAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/object/candidate"
}

func (taleoAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/object/application"
}

func (taleoAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"limit": "100", "start": "1"}, f)
}

// icimsAdapter: bearer token.
type icimsAdapter struct{}

func (icimsAdapter) Provider() domain.Provider { return domain.ProviderICIMS }

func (icimsAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["Authorization"] = "Bearer " + creds["access_token"]
	return h
}

func (icimsAdapter) JobsURL(c *domain.Connection) string { return baseURL(c) + "/search/jobs" }

func (icimsAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/search/people"
}

func (icimsAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/search/applicantworkflows"
}

func (icimsAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"limit": "100"}, f)
}

// jazzAdapter: API key in a custom header and mirrored as a query parameter,
// as the vendor accepts both.
type jazzAdapter struct{}

func (jazzAdapter) Provider() domain.Provider { return domain.ProviderJazzHR }

func (jazzAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["X-API-Key"] = creds["api_key"]
	return h
}

func (jazzAdapter) JobsURL(c *domain.Connection) string { return baseURL(c) + "/jobs" }

func (jazzAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/applicants"
}

func (jazzAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/applicants2jobs"
}

func (jazzAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"page": "1"}, f)
}

// bullhornAdapter: REST session token in the BhRestToken header.
type bullhornAdapter struct{}

func (bullhornAdapter) Provider() domain.Provider { return domain.ProviderBullhorn }

func (bullhornAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["BhRestToken"] = creds["rest_token"]
	return h
}

func (bullhornAdapter) JobsURL(c *domain.Connection) string {
	return baseURL(c) + "/query/JobOrder"
}

func (bullhornAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/query/Candidate"
}

func (bullhornAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/query/JobSubmission"
}

func (bullhornAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"count": "100", "start": "0"}, f)
}

// jobviteAdapter: paired API key and secret carried in vendor headers.
type jobviteAdapter struct{}

func (jobviteAdapter) Provider() domain.Provider { return domain.ProviderJobvite }

func (jobviteAdapter) Headers(_ *domain.Connection, creds map[string]string) map[string]string {
	h := jsonHeaders()
	h["x-jvi-api"] = creds["api_key"]
	h["x-jvi-sc"] = creds["api_secret"]
	return h
}

func (jobviteAdapter) JobsURL(c *domain.Connection) string { return baseURL(c) + "/api/v2/job" }

func (jobviteAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/api/v2/candidate"
}

func (jobviteAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/api/v2/application"
}

func (jobviteAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{"count": "100", "start": "1"}, f)
}

// genericAdapter is the permissive fallback for unknown providers: bare
// entity suffixes and a JSON content type, no authentication.
type genericAdapter struct{}

func (genericAdapter) Provider() domain.Provider { return domain.Provider("generic") }

func (genericAdapter) Headers(_ *domain.Connection, _ map[string]string) map[string]string {
	return jsonHeaders()
}

func (genericAdapter) JobsURL(c *domain.Connection) string { return baseURL(c) + "/jobs" }

func (genericAdapter) CandidatesURL(c *domain.Connection) string {
	return baseURL(c) + "/candidates"
}

func (genericAdapter) ApplicationsURL(c *domain.Connection) string {
	return baseURL(c) + "/applications"
}

func (genericAdapter) DefaultParams(_ *domain.Connection, f Filters) map[string]string {
	return mergeParams(map[string]string{}, f)
}
