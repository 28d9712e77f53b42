package normalize

import (
	"strings"

	"github.com/hirewire/atsync/internal/domain"
)

// EmploymentType collapses free-text employment descriptions into the
// canonical set. Defaults to full-time.
func EmploymentType(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case v == "":
		return domain.EmploymentFullTime
	case strings.Contains(v, "intern"):
		return domain.EmploymentInternship
	case strings.Contains(v, "temp"):
		return domain.EmploymentTemporary
	case strings.Contains(v, "contract") || strings.Contains(v, "freelance"):
		return domain.EmploymentContract
	case strings.Contains(v, "part"):
		return domain.EmploymentPartTime
	default:
		return domain.EmploymentFullTime
	}
}

// ExperienceLevel maps a free-text seniority onto the canonical ladder by
// substring match. Defaults to mid-level.
func ExperienceLevel(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(v, "executive"), strings.Contains(v, "director"), strings.Contains(v, "manager"):
		return domain.ExperienceExecutive
	case strings.Contains(v, "senior"), strings.Contains(v, "lead"):
		return domain.ExperienceSenior
	case strings.Contains(v, "entry"), strings.Contains(v, "junior"), strings.Contains(v, "associate"):
		return domain.ExperienceEntry
	default:
		return domain.ExperienceMid
	}
}

// JobStatus maps provider job lifecycle words onto the canonical four.
// Defaults to active.
func JobStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "paused", "hold", "on hold", "on_hold":
		return domain.JobStatusPaused
	case "closed", "filled", "expired", "archived":
		return domain.JobStatusClosed
	case "draft", "pending":
		return domain.JobStatusDraft
	case "open", "published", "live", "active":
		return domain.JobStatusActive
	default:
		return domain.JobStatusActive
	}
}

// applicationStatusSynonyms collapses the vendors' pipeline vocabularies
// into the canonical eight-stage funnel.
var applicationStatusSynonyms = map[string]string{
	"new":             domain.ApplicationStatusNew,
	"applied":         domain.ApplicationStatusNew,
	"received":        domain.ApplicationStatusNew,
	"submitted":       domain.ApplicationStatusNew,
	"active":          domain.ApplicationStatusNew,
	"screening":       domain.ApplicationStatusScreening,
	"screen":          domain.ApplicationStatusScreening,
	"phone_screen":    domain.ApplicationStatusScreening,
	"phone screen":    domain.ApplicationStatusScreening,
	"review":          domain.ApplicationStatusScreening,
	"in_review":       domain.ApplicationStatusScreening,
	"under review":    domain.ApplicationStatusScreening,
	"shortlisted":     domain.ApplicationStatusScreening,
	"interview":       domain.ApplicationStatusInterview,
	"interviewing":    domain.ApplicationStatusInterview,
	"onsite":          domain.ApplicationStatusInterview,
	"on-site":         domain.ApplicationStatusInterview,
	"phone_interview": domain.ApplicationStatusInterview,
	"final_interview": domain.ApplicationStatusInterview,
	"assessment":      domain.ApplicationStatusAssessment,
	"test":            domain.ApplicationStatusAssessment,
	"take_home":       domain.ApplicationStatusAssessment,
	"challenge":       domain.ApplicationStatusAssessment,
	"offer":           domain.ApplicationStatusOffer,
	"offered":         domain.ApplicationStatusOffer,
	"offer_extended":  domain.ApplicationStatusOffer,
	"negotiation":     domain.ApplicationStatusOffer,
	"hired":           domain.ApplicationStatusHired,
	"placed":          domain.ApplicationStatusHired,
	"onboarding":      domain.ApplicationStatusHired,
	"rejected":        domain.ApplicationStatusRejected,
	"declined":        domain.ApplicationStatusRejected,
	"not_selected":    domain.ApplicationStatusRejected,
	"not selected":    domain.ApplicationStatusRejected,
	"disqualified":    domain.ApplicationStatusRejected,
	"withdrawn":       domain.ApplicationStatusWithdrawn,
	"withdrew":        domain.ApplicationStatusWithdrawn,
	"candidate_withdrew": domain.ApplicationStatusWithdrawn,
}

// ApplicationStatus maps a provider pipeline status onto the canonical
// funnel. Defaults to new.
func ApplicationStatus(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if canonical, ok := applicationStatusSynonyms[v]; ok {
		return canonical
	}
	return domain.ApplicationStatusNew
}

// Availability maps free-text start availability onto the canonical set.
// Defaults to immediate.
func Availability(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(v, "immediate"), strings.Contains(v, "asap"), v == "now":
		return domain.AvailabilityImmediate
	case strings.Contains(v, "2 weeks"), strings.Contains(v, "two weeks"):
		return domain.AvailabilityTwoWeeks
	case strings.Contains(v, "1 month"), strings.Contains(v, "30 days"), strings.Contains(v, "one month"):
		return domain.AvailabilityOneMonth
	case strings.Contains(v, "flexible"), strings.Contains(v, "negotiable"):
		return domain.AvailabilityFlexible
	default:
		return domain.AvailabilityImmediate
	}
}
