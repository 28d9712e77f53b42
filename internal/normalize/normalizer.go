// Package normalize maps one raw provider record into the canonical
// Job/Candidate/Application shape. Declared field mappings run through the
// transformation pipeline; everything else falls back to provider default
// paths and the fixed categorical tables. Unmapped fields land verbatim in
// the custom-fields bag so no provider data is silently discarded.
package normalize

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
	"github.com/tidwall/gjson"

	"github.com/hirewire/atsync/internal/domain"
	"github.com/hirewire/atsync/internal/transform"
)

// NormalizedApplication is an application record before its job and candidate
// references are resolved against the mirror.
type NormalizedApplication struct {
	Application         domain.Application
	JobExternalID       string
	CandidateExternalID string
}

// Alternative default paths per canonical field, tried in order when no
// mapping is declared. Providers disagree even on "id".
var (
	idPaths        = []string{"id", "external_id", "externalId", "jobId", "requisitionId"}
	titlePaths     = []string{"title", "name", "text", "jobTitle", "jobPostingTitle"}
	descPaths      = []string{"description", "content", "jobDescription", "descriptionPlain"}
	locationPaths  = []string{"location", "location.name", "city", "categories.location"}
	deptPaths      = []string{"department", "department.name", "departments.0.name", "categories.department", "categories.team"}
	empTypePaths   = []string{"employment_type", "employmentType", "type", "categories.commitment"}
	expLevelPaths  = []string{"experience_level", "experienceLevel", "level", "seniority"}
	jobStatusPaths = []string{"status", "state", "jobStatus"}
	salaryPaths    = []string{"salary", "compensation", "salary_range", "salaryRange", "pay"}
	currencyPaths  = []string{"currency", "salary_currency", "compensation.currency"}
	postedAtPaths  = []string{"posted_at", "postedAt", "created_at", "createdAt", "datePosted"}

	firstNamePaths = []string{"first_name", "firstName", "name.first"}
	lastNamePaths  = []string{"last_name", "lastName", "name.last"}
	emailPaths     = []string{"email", "email_address", "emailAddress", "emails.0"}
	phonePaths     = []string{"phone", "phone_number", "phoneNumber", "phones.0.value"}
	currTitlePaths = []string{"current_title", "currentTitle", "headline", "job_title"}
	expYearsPaths  = []string{"experience_years", "experienceYears", "years_of_experience"}
	skillsPaths    = []string{"skills", "tags", "keywords"}
	resumePaths    = []string{"resume_url", "resumeUrl", "resume", "attachments.0.url"}
	availPaths     = []string{"availability", "available_from", "notice_period", "noticePeriod"}
	fullNamePaths  = []string{"name", "full_name", "fullName"}
	appJobPaths    = []string{"job_id", "jobId", "job.id", "posting_id", "postingId", "requisition_id", "jobOrder.id"}
	appCandPaths   = []string{"candidate_id", "candidateId", "candidate.id", "applicant_id", "applicantId", "person.id"}
	appStatusPaths = []string{"status", "stage", "current_stage.name", "workflow_status"}
	appliedAtPaths = []string{"applied_at", "appliedAt", "applied_on", "created_at", "createdAt", "dateAdded"}
)

// Standard top-level keys per entity, excluded from the custom-fields bag.
var (
	jobStandardKeys = keySet(
		idPaths, titlePaths, descPaths, locationPaths, deptPaths, empTypePaths,
		expLevelPaths, jobStatusPaths, salaryPaths, currencyPaths, postedAtPaths,
		[]string{"salary_min", "salary_max"},
	)
	candidateStandardKeys = keySet(
		idPaths, firstNamePaths, lastNamePaths, fullNamePaths, emailPaths,
		phonePaths, locationPaths, currTitlePaths, expYearsPaths, skillsPaths,
		resumePaths, availPaths,
	)
	applicationStandardKeys = keySet(
		idPaths, appJobPaths, appCandPaths, appStatusPaths, appliedAtPaths,
	)
)

func keySet(groups ...[]string) map[string]bool {
	set := map[string]bool{}
	for _, group := range groups {
		for _, path := range group {
			root, _, _ := strings.Cut(path, ".")
			set[root] = true
		}
	}
	return set
}

// Normalizer turns raw provider records into canonical entities using a
// connection's declared field mappings.
type Normalizer struct{}

// New creates a Normalizer.
func New() *Normalizer {
	return &Normalizer{}
}

// Job normalizes one raw job record.
// Parameters:
//   - conn: connection owning the record, with field mappings loaded.
//   - raw: one record from the provider response.
// Returns:
//   - *domain.JobPosting: canonical job, without an assigned row ID.
//   - error: non-nil when a required mapped field is empty or the record has
//     no usable external id or title.
func (n *Normalizer) Job(conn *domain.Connection, raw gjson.Result) (*domain.JobPosting, error) {
	mappings := mappingsFor(conn, domain.EntityJob)

	job := &domain.JobPosting{
		ConnectionID: conn.ID,
		CustomFields: domain.JSONMap{},
	}

	job.ExternalID = n.stringField(raw, mappings, "external_id", idPaths)
	job.Title = n.stringField(raw, mappings, "title", titlePaths)
	job.Description = n.stringField(raw, mappings, "description", descPaths)
	job.Location = n.stringField(raw, mappings, "location", locationPaths)
	job.Department = n.stringField(raw, mappings, "department", deptPaths)

	job.EmploymentType = EmploymentType(n.stringField(raw, mappings, "employment_type", empTypePaths))
	job.ExperienceLevel = ExperienceLevel(n.stringField(raw, mappings, "experience_level", expLevelPaths))
	job.Status = JobStatus(n.stringField(raw, mappings, "status", jobStatusPaths))

	job.SalaryMin, job.SalaryMax = n.salaryField(raw, mappings)
	job.Currency = n.stringField(raw, mappings, "currency", currencyPaths)
	job.PostedAt = n.timeField(raw, mappings, "posted_at", postedAtPaths)

	if err := checkRequired(raw, mappings); err != nil {
		return nil, err
	}
	if job.ExternalID == "" {
		return nil, fmt.Errorf("job record has no external id")
	}
	if job.Title == "" {
		return nil, fmt.Errorf("job record %q has no title", job.ExternalID)
	}

	collectCustomFields(raw, jobStandardKeys, mappings, job.CustomFields)
	return job, nil
}

// Candidate normalizes one raw candidate record.
func (n *Normalizer) Candidate(conn *domain.Connection, raw gjson.Result) (*domain.Candidate, error) {
	mappings := mappingsFor(conn, domain.EntityCandidate)

	cand := &domain.Candidate{
		ConnectionID: conn.ID,
		CustomFields: domain.JSONMap{},
	}

	cand.ExternalID = n.stringField(raw, mappings, "external_id", idPaths)
	cand.FirstName = n.stringField(raw, mappings, "first_name", firstNamePaths)
	cand.LastName = n.stringField(raw, mappings, "last_name", lastNamePaths)

	// Split a combined name when the provider only ships one field.
	if cand.FirstName == "" && cand.LastName == "" {
		if full := lookupFirst(raw, fullNamePaths); full.Exists() {
			first, last, _ := strings.Cut(strings.TrimSpace(full.String()), " ")
			cand.FirstName, cand.LastName = first, last
		}
	}

	cand.Email = n.stringField(raw, mappings, "email", emailPaths)
	cand.Phone = n.stringField(raw, mappings, "phone", phonePaths)
	cand.Location = n.stringField(raw, mappings, "location", locationPaths)
	cand.CurrentTitle = n.stringField(raw, mappings, "current_title", currTitlePaths)
	cand.ExperienceYears = n.floatField(raw, mappings, "experience_years", expYearsPaths)
	cand.Skills = n.sliceField(raw, mappings, "skills", skillsPaths)
	cand.ResumeURL = n.stringField(raw, mappings, "resume_url", resumePaths)
	cand.Availability = Availability(n.stringField(raw, mappings, "availability", availPaths))

	if err := checkRequired(raw, mappings); err != nil {
		return nil, err
	}
	if cand.ExternalID == "" {
		return nil, fmt.Errorf("candidate record has no external id")
	}
	if cand.FirstName == "" && cand.LastName == "" && cand.Email == "" {
		return nil, fmt.Errorf("candidate record %q has no name or email", cand.ExternalID)
	}

	collectCustomFields(raw, candidateStandardKeys, mappings, cand.CustomFields)
	return cand, nil
}

// Application normalizes one raw application record. Job and candidate
// references stay external; the orchestrator resolves them against the
// mirror before upserting.
func (n *Normalizer) Application(conn *domain.Connection, raw gjson.Result) (*NormalizedApplication, error) {
	mappings := mappingsFor(conn, domain.EntityApplication)

	app := &NormalizedApplication{
		Application: domain.Application{
			ConnectionID: conn.ID,
			CustomFields: domain.JSONMap{},
		},
	}

	app.Application.ExternalID = n.stringField(raw, mappings, "external_id", idPaths)
	app.JobExternalID = n.stringField(raw, mappings, "job_id", appJobPaths)
	app.CandidateExternalID = n.stringField(raw, mappings, "candidate_id", appCandPaths)
	app.Application.Status = ApplicationStatus(n.stringField(raw, mappings, "status", appStatusPaths))
	app.Application.AppliedAt = n.timeField(raw, mappings, "applied_at", appliedAtPaths)

	if err := checkRequired(raw, mappings); err != nil {
		return nil, err
	}
	if app.JobExternalID == "" || app.CandidateExternalID == "" {
		return nil, fmt.Errorf("application record %q is missing job or candidate reference", app.Application.ExternalID)
	}

	collectCustomFields(raw, applicationStandardKeys, mappings, app.Application.CustomFields)
	return app, nil
}

// field resolves a canonical field: declared mapping (extract → rules →
// cast) when present, otherwise the first matching default path.
// mappingPath rewrites bracket-addressed segments of an ExternalField into
// gjson dot syntax: `offices[0].name` becomes `offices.0.name` and
// `custom["team"]` becomes `custom.team`. Dot-only paths pass through.
func mappingPath(path string) string {
	if !strings.Contains(path, "[") {
		return path
	}
	var b strings.Builder
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c != '[' {
			b.WriteByte(c)
			continue
		}
		end := strings.IndexByte(path[i:], ']')
		if end < 0 {
			b.WriteString(path[i:])
			break
		}
		seg := strings.Trim(path[i+1:i+end], `"'`)
		if b.Len() > 0 && path[i-1] != '.' {
			b.WriteByte('.')
		}
		b.WriteString(seg)
		i += end
	}
	return b.String()
}

func (n *Normalizer) field(raw gjson.Result, mappings map[string]*domain.FieldMapping, name string, defaults []string) interface{} {
	if m, ok := mappings[name]; ok {
		value := gjson.Get(raw.Raw, mappingPath(m.ExternalField)).Value()
		if value == nil && m.DefaultValue != "" {
			value = m.DefaultValue
		}
		value = transform.Apply(value, m.TransformationRules)
		return transform.Cast(value, m.FieldType)
	}

	if r := lookupFirst(raw, defaults); r.Exists() {
		return r.Value()
	}
	return nil
}

func (n *Normalizer) stringField(raw gjson.Result, mappings map[string]*domain.FieldMapping, name string, defaults []string) string {
	v := n.field(raw, mappings, name, defaults)
	if v == nil {
		return ""
	}
	return strings.TrimSpace(cast.ToString(v))
}

func (n *Normalizer) floatField(raw gjson.Result, mappings map[string]*domain.FieldMapping, name string, defaults []string) *float64 {
	v := n.field(raw, mappings, name, defaults)
	if v == nil {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return nil
	}
	return &f
}

func (n *Normalizer) sliceField(raw gjson.Result, mappings map[string]*domain.FieldMapping, name string, defaults []string) domain.StringArray {
	v := n.field(raw, mappings, name, defaults)
	if v == nil {
		return domain.StringArray{}
	}
	if parts, err := cast.ToStringSliceE(v); err == nil {
		return parts
	}
	return domain.StringArray{cast.ToString(v)}
}

func (n *Normalizer) timeField(raw gjson.Result, mappings map[string]*domain.FieldMapping, name string, defaults []string) *time.Time {
	v := n.field(raw, mappings, name, defaults)
	if v == nil {
		return nil
	}
	if t, ok := v.(time.Time); ok {
		return &t
	}
	if t, ok := transform.Cast(v, domain.FieldTypeDate).(time.Time); ok {
		return &t
	}
	return nil
}

// salaryField handles the one field with two outputs: a declared mapping
// points at the salary source, which may be a {min,max} object or free text.
func (n *Normalizer) salaryField(raw gjson.Result, mappings map[string]*domain.FieldMapping) (*float64, *float64) {
	if m, ok := mappings["salary"]; ok {
		return Salary(gjson.Get(raw.Raw, mappingPath(m.ExternalField)))
	}
	if minM, ok := mappings["salary_min"]; ok {
		var min, max *float64
		min = toFloatPtr(transform.Cast(gjson.Get(raw.Raw, mappingPath(minM.ExternalField)).Value(), domain.FieldTypeNumber))
		if maxM, ok := mappings["salary_max"]; ok {
			max = toFloatPtr(transform.Cast(gjson.Get(raw.Raw, mappingPath(maxM.ExternalField)).Value(), domain.FieldTypeNumber))
		}
		return min, max
	}
	if r := lookupFirst(raw, salaryPaths); r.Exists() {
		return Salary(r)
	}
	return nil, nil
}

func toFloatPtr(v interface{}) *float64 {
	if f, ok := v.(float64); ok {
		return &f
	}
	return nil
}

// checkRequired fails the record when any required mapping resolved empty.
func checkRequired(raw gjson.Result, mappings map[string]*domain.FieldMapping) error {
	for _, m := range mappings {
		if !m.IsRequired {
			continue
		}
		value := gjson.Get(raw.Raw, mappingPath(m.ExternalField)).Value()
		if value == nil && m.DefaultValue != "" {
			value = m.DefaultValue
		}
		value = transform.Cast(transform.Apply(value, m.TransformationRules), m.FieldType)
		if !transform.Validate(value, m) {
			return fmt.Errorf("required field %q is empty", m.InternalField)
		}
	}
	return nil
}

// collectCustomFields copies every top-level key that is neither a standard
// field nor claimed by a mapping into the custom-fields bag.
func collectCustomFields(raw gjson.Result, standard map[string]bool, mappings map[string]*domain.FieldMapping, bag domain.JSONMap) {
	claimed := map[string]bool{}
	for _, m := range mappings {
		root, _, _ := strings.Cut(mappingPath(m.ExternalField), ".")
		claimed[root] = true
	}

	raw.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if standard[k] || claimed[k] {
			return true
		}
		bag[k] = value.Value()
		return true
	})
}

func mappingsFor(conn *domain.Connection, entity domain.EntityType) map[string]*domain.FieldMapping {
	out := map[string]*domain.FieldMapping{}
	for i := range conn.FieldMappings {
		m := &conn.FieldMappings[i]
		if m.EntityType == entity {
			out[m.InternalField] = m
		}
	}
	return out
}

func lookupFirst(raw gjson.Result, paths []string) gjson.Result {
	for _, path := range paths {
		if r := gjson.Get(raw.Raw, path); r.Exists() {
			return r
		}
	}
	return gjson.Result{}
}
