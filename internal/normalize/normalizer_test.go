package normalize

import (
	"testing"

	"github.com/tidwall/gjson"

	"github.com/hirewire/atsync/internal/domain"
)

func conn(mappings ...domain.FieldMapping) *domain.Connection {
	return &domain.Connection{
		ID:            "conn-1",
		Provider:      domain.ProviderGreenhouse,
		FieldMappings: mappings,
	}
}

func TestJobSalaryFromText(t *testing.T) {
	// Declared salary mapping pointing at a free-text field.
	c := conn(domain.FieldMapping{
		ConnectionID:  "conn-1",
		EntityType:    domain.EntityJob,
		InternalField: "salary",
		ExternalField: "salary",
	})

	raw := gjson.Parse(`{"id":"J1","name":"Engineer","salary":"$50,000 - $70,000"}`)

	job, err := New().Job(c, raw)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}

	if job.ExternalID != "J1" {
		t.Errorf("ExternalID = %q", job.ExternalID)
	}
	if job.Title != "Engineer" {
		t.Errorf("Title = %q (name fallback should apply)", job.Title)
	}
	if job.SalaryMin == nil || *job.SalaryMin != 50000 {
		t.Errorf("SalaryMin = %v, want 50000", job.SalaryMin)
	}
	if job.SalaryMax == nil || *job.SalaryMax != 70000 {
		t.Errorf("SalaryMax = %v, want 70000", job.SalaryMax)
	}
}

func TestJobSalaryFromStructuredObject(t *testing.T) {
	raw := gjson.Parse(`{"id":"J2","title":"Analyst","salary":{"min":40000,"max":55000}}`)

	job, err := New().Job(conn(), raw)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.SalaryMin == nil || *job.SalaryMin != 40000 || job.SalaryMax == nil || *job.SalaryMax != 55000 {
		t.Errorf("salary = %v/%v", job.SalaryMin, job.SalaryMax)
	}
}

func TestJobCategoricalDefaults(t *testing.T) {
	raw := gjson.Parse(`{"id":"J3","title":"Engineer"}`)

	job, err := New().Job(conn(), raw)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.EmploymentType != domain.EmploymentFullTime {
		t.Errorf("EmploymentType = %q", job.EmploymentType)
	}
	if job.ExperienceLevel != domain.ExperienceMid {
		t.Errorf("ExperienceLevel = %q", job.ExperienceLevel)
	}
	if job.Status != domain.JobStatusActive {
		t.Errorf("Status = %q", job.Status)
	}
}

func TestJobCustomFieldsBag(t *testing.T) {
	raw := gjson.Parse(`{"id":"J4","title":"Engineer","internal_req_code":"XY-9","hiring_pod":"alpha"}`)

	job, err := New().Job(conn(), raw)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.CustomFields["internal_req_code"] != "XY-9" {
		t.Errorf("custom fields missing internal_req_code: %v", job.CustomFields)
	}
	if job.CustomFields["hiring_pod"] != "alpha" {
		t.Errorf("custom fields missing hiring_pod: %v", job.CustomFields)
	}
	if _, ok := job.CustomFields["title"]; ok {
		t.Error("standard field leaked into custom fields")
	}
}

func TestJobMappedFieldWithRules(t *testing.T) {
	c := conn(domain.FieldMapping{
		EntityType:    domain.EntityJob,
		InternalField: "department",
		ExternalField: "dept.label",
		FieldType:     domain.FieldTypeString,
		TransformationRules: domain.RuleList{
			{Type: domain.RuleTrim},
			{Type: domain.RuleUppercase},
		},
	})

	raw := gjson.Parse(`{"id":"J5","title":"Engineer","dept":{"label":"  platform  "}}`)

	job, err := New().Job(c, raw)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.Department != "PLATFORM" {
		t.Errorf("Department = %q", job.Department)
	}
}

func TestJobRequiredMappingRejects(t *testing.T) {
	c := conn(domain.FieldMapping{
		EntityType:    domain.EntityJob,
		InternalField: "location",
		ExternalField: "office",
		FieldType:     domain.FieldTypeString,
		IsRequired:    true,
	})

	raw := gjson.Parse(`{"id":"J6","title":"Engineer"}`)

	if _, err := New().Job(c, raw); err == nil {
		t.Fatal("expected required-field error")
	}
}

func TestJobMissingIdentity(t *testing.T) {
	if _, err := New().Job(conn(), gjson.Parse(`{"title":"Engineer"}`)); err == nil {
		t.Error("expected error for missing external id")
	}
	if _, err := New().Job(conn(), gjson.Parse(`{"id":"J7"}`)); err == nil {
		t.Error("expected error for missing title")
	}
}

func TestCandidateNameSplit(t *testing.T) {
	raw := gjson.Parse(`{"id":"C1","name":"Ada Lovelace","email":"ada@example.com"}`)

	cand, err := New().Candidate(conn(), raw)
	if err != nil {
		t.Fatalf("Candidate: %v", err)
	}
	if cand.FirstName != "Ada" || cand.LastName != "Lovelace" {
		t.Errorf("name split = %q %q", cand.FirstName, cand.LastName)
	}
}

func TestCandidateAvailability(t *testing.T) {
	tests := map[string]string{
		"Immediately":   domain.AvailabilityImmediate,
		"ASAP":          domain.AvailabilityImmediate,
		"2 weeks":       domain.AvailabilityTwoWeeks,
		"30 days":       domain.AvailabilityOneMonth,
		"negotiable":    domain.AvailabilityFlexible,
		"":              domain.AvailabilityImmediate,
		"next quarter":  domain.AvailabilityImmediate,
	}

	for raw, want := range tests {
		if got := Availability(raw); got != want {
			t.Errorf("Availability(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestApplicationStatusSynonyms(t *testing.T) {
	tests := map[string]string{
		"onsite":       domain.ApplicationStatusInterview,
		"not_selected": domain.ApplicationStatusRejected,
		"phone_screen": domain.ApplicationStatusScreening,
		"offered":      domain.ApplicationStatusOffer,
		"placed":       domain.ApplicationStatusHired,
		"withdrew":     domain.ApplicationStatusWithdrawn,
		"take_home":    domain.ApplicationStatusAssessment,
		"mystery":      domain.ApplicationStatusNew,
		"":             domain.ApplicationStatusNew,
	}

	for raw, want := range tests {
		if got := ApplicationStatus(raw); got != want {
			t.Errorf("ApplicationStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestApplicationReferences(t *testing.T) {
	raw := gjson.Parse(`{"id":"A1","job_id":"J1","candidate_id":"C1","status":"onsite"}`)

	app, err := New().Application(conn(), raw)
	if err != nil {
		t.Fatalf("Application: %v", err)
	}
	if app.JobExternalID != "J1" || app.CandidateExternalID != "C1" {
		t.Errorf("refs = %q/%q", app.JobExternalID, app.CandidateExternalID)
	}
	if app.Application.Status != domain.ApplicationStatusInterview {
		t.Errorf("Status = %q", app.Application.Status)
	}
}

func TestApplicationMissingReference(t *testing.T) {
	raw := gjson.Parse(`{"id":"A2","job_id":"J1"}`)

	if _, err := New().Application(conn(), raw); err == nil {
		t.Fatal("expected error for missing candidate reference")
	}
}

func TestEmploymentAndExperienceTables(t *testing.T) {
	if got := EmploymentType("Part time"); got != domain.EmploymentPartTime {
		t.Errorf("EmploymentType = %q", got)
	}
	if got := EmploymentType("Summer Internship"); got != domain.EmploymentInternship {
		t.Errorf("EmploymentType = %q", got)
	}
	if got := ExperienceLevel("Senior Staff"); got != domain.ExperienceSenior {
		t.Errorf("ExperienceLevel = %q", got)
	}
	if got := ExperienceLevel("Engineering Director"); got != domain.ExperienceExecutive {
		t.Errorf("ExperienceLevel = %q", got)
	}
	if got := ExperienceLevel("Junior Developer"); got != domain.ExperienceEntry {
		t.Errorf("ExperienceLevel = %q", got)
	}
	if got := JobStatus("Filled"); got != domain.JobStatusClosed {
		t.Errorf("JobStatus = %q", got)
	}
	if got := JobStatus("hold"); got != domain.JobStatusPaused {
		t.Errorf("JobStatus = %q", got)
	}
}

func TestUnwrapRecords(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		configured string
		wantLen    int
	}{
		{"bare array", `[{"id":1},{"id":2}]`, "", 2},
		{"data container", `{"data":[{"id":1}]}`, "", 1},
		{"results container", `{"results":[{"id":1},{"id":2},{"id":3}]}`, "", 3},
		{"odata container", `{"d":{"results":[{"id":1}]}}`, "", 1},
		{"configured path wins", `{"payload":{"rows":[{"id":1}]},"data":[]}`, "payload.rows", 1},
		{"object with no array", `{"id":1}`, "", 0},
		{"configured path falls back", `{"jobs":[{"id":1}]}`, "missing.path", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			records := UnwrapRecords([]byte(tc.body), tc.configured)
			if len(records) != tc.wantLen {
				t.Errorf("got %d records, want %d", len(records), tc.wantLen)
			}
		})
	}
}

func TestSalaryText(t *testing.T) {
	tests := []struct {
		text string
		min  float64
		max  float64
		none bool
	}{
		{`"$50,000 - $70,000"`, 50000, 70000, false},
		{`"$90000"`, 90000, 0, false},
		{`"competitive"`, 0, 0, true},
	}

	for _, tc := range tests {
		min, max := Salary(gjson.Parse(tc.text))
		if tc.none {
			if min != nil || max != nil {
				t.Errorf("Salary(%s) = %v/%v, want nil", tc.text, min, max)
			}
			continue
		}
		if min == nil || *min != tc.min {
			t.Errorf("Salary(%s) min = %v, want %v", tc.text, min, tc.min)
		}
		if tc.max != 0 && (max == nil || *max != tc.max) {
			t.Errorf("Salary(%s) max = %v, want %v", tc.text, max, tc.max)
		}
	}
}

func TestMappingPathBracketSegments(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"a.b.c", "a.b.c"},
		{"offices[0].name", "offices.0.name"},
		{"a[0][1]", "a.0.1"},
		{`custom["team"]`, "custom.team"},
		{`custom['team']`, "custom.team"},
		{"[0].name", "0.name"},
		{"a.[1].b", "a.1.b"},
	}
	for _, tt := range tests {
		if got := mappingPath(tt.in); got != tt.want {
			t.Errorf("mappingPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestJobBracketAddressedMapping(t *testing.T) {
	c := conn(domain.FieldMapping{
		ConnectionID:  "conn-1",
		EntityType:    domain.EntityJob,
		InternalField: "location",
		ExternalField: "offices[0].name",
		IsRequired:    true,
	})

	raw := gjson.Parse(`{"id":"J8","title":"Engineer","offices":[{"name":"Lilongwe"}]}`)

	job, err := New().Job(c, raw)
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if job.Location != "Lilongwe" {
		t.Errorf("Location = %q, want Lilongwe", job.Location)
	}
	// The claimed root must not leak into the custom-fields bag.
	if _, ok := job.CustomFields["offices"]; ok {
		t.Errorf("offices leaked into custom fields: %v", job.CustomFields)
	}
}
