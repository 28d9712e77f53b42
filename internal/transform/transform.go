// Package transform applies a field mapping's declared rule pipeline and the
// final type cast. The engine favors ingestion completeness: unknown rule
// types are identity, failed casts go soft to nil, and validation only
// rejects required-and-empty.
package transform

import (
	"regexp"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/hirewire/atsync/internal/domain"
)

// truthy is the set of boolean-true spellings accepted by the boolean rule
// and the boolean cast, compared case-insensitively.
var truthy = map[string]bool{
	"true": true, "1": true, "yes": true, "y": true, "on": true,
}

// dateLayouts are tried in order when a rule or cast has no declared source
// format. Providers are wildly inconsistent here.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	"Jan 2, 2006",
}

var numberPattern = regexp.MustCompile(`-?[\d,]+(?:\.\d+)?`)

// Apply runs value through rules in declared order.
// Parameters:
//   - value: raw extracted value.
//   - rules: ordered rule pipeline from the field mapping.
// Returns:
//   - interface{}: transformed value.
func Apply(value interface{}, rules []domain.TransformRule) interface{} {
	for _, rule := range rules {
		value = applyRule(value, rule)
	}
	return value
}

func applyRule(value interface{}, rule domain.TransformRule) interface{} {
	if value == nil {
		return nil
	}

	switch rule.Type {
	case domain.RuleReplace:
		return strings.ReplaceAll(cast.ToString(value), rule.Search, rule.Replace)

	case domain.RuleRegex:
		re, err := regexp.Compile(rule.Pattern)
		if err != nil {
			// A broken pattern degrades to identity, same as an unknown rule.
			return value
		}
		return re.ReplaceAllString(cast.ToString(value), rule.Replace)

	case domain.RuleUppercase:
		return strings.ToUpper(cast.ToString(value))

	case domain.RuleLowercase:
		return strings.ToLower(cast.ToString(value))

	case domain.RuleTrim:
		return strings.TrimSpace(cast.ToString(value))

	case domain.RuleDateFormat:
		parsed, ok := parseDate(cast.ToString(value), rule.SourceFormat)
		if !ok {
			return value
		}
		target := rule.TargetFormat
		if target == "" {
			target = time.RFC3339
		}
		return parsed.Format(target)

	case domain.RuleMapValues:
		key := cast.ToString(value)
		if mapped, ok := rule.Mapping[key]; ok {
			return mapped
		}
		if mapped, ok := rule.Mapping[strings.ToLower(key)]; ok {
			return mapped
		}
		return value

	case domain.RuleSplit:
		sep := rule.Separator
		if sep == "" {
			sep = ","
		}
		parts := strings.Split(cast.ToString(value), sep)
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			out = append(out, strings.TrimSpace(p))
		}
		return out

	case domain.RuleJoin:
		sep := rule.Separator
		if sep == "" {
			sep = ", "
		}
		if parts, err := cast.ToStringSliceE(value); err == nil {
			return strings.Join(parts, sep)
		}
		return value

	case domain.RuleExtractNumber:
		match := numberPattern.FindString(cast.ToString(value))
		if match == "" {
			return nil
		}
		n, err := cast.ToFloat64E(strings.ReplaceAll(match, ",", ""))
		if err != nil {
			return nil
		}
		return n

	case domain.RuleBoolean:
		return truthy[strings.ToLower(strings.TrimSpace(cast.ToString(value)))]

	default:
		// Unknown rule types are intentionally a no-op so a partially
		// misconfigured mapping still ingests.
		return value
	}
}

// Cast coerces value to the mapping's declared primitive. Numeric and date
// casts fail soft to nil rather than erroring.
// Parameters:
//   - value: transformed value.
//   - fieldType: declared target primitive.
// Returns:
//   - interface{}: coerced value or nil when coercion is impossible.
func Cast(value interface{}, fieldType domain.FieldType) interface{} {
	if value == nil {
		return nil
	}

	switch fieldType {
	case domain.FieldTypeString:
		return cast.ToString(value)

	case domain.FieldTypeNumber:
		if s, ok := value.(string); ok {
			s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
			n, err := cast.ToFloat64E(s)
			if err != nil {
				return nil
			}
			return n
		}
		n, err := cast.ToFloat64E(value)
		if err != nil {
			return nil
		}
		return n

	case domain.FieldTypeBoolean:
		switch v := value.(type) {
		case bool:
			return v
		default:
			return truthy[strings.ToLower(strings.TrimSpace(cast.ToString(value)))]
		}

	case domain.FieldTypeDate:
		if t, ok := value.(time.Time); ok {
			return t
		}
		parsed, ok := parseDate(cast.ToString(value), "")
		if !ok {
			return nil
		}
		return parsed

	case domain.FieldTypeArray:
		if parts, err := cast.ToStringSliceE(value); err == nil {
			return parts
		}
		return []string{cast.ToString(value)}

	case domain.FieldTypeObject:
		if m, ok := value.(map[string]interface{}); ok {
			return m
		}
		return map[string]interface{}{"value": value}

	default:
		return value
	}
}

// Validate rejects only a required field that ended up empty. Type mismatches
// are tolerated upstream; schema strictness loses to ingestion completeness.
// Parameters:
//   - value: value after Apply and Cast.
//   - mapping: field mapping being evaluated.
// Returns:
//   - bool: false only when the mapping is required and the value is empty.
func Validate(value interface{}, mapping *domain.FieldMapping) bool {
	if !mapping.IsRequired {
		return true
	}
	return !IsEmpty(value)
}

// IsEmpty reports whether a value counts as absent for required-field checks.
func IsEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []interface{}:
		return len(v) == 0
	case map[string]interface{}:
		return len(v) == 0
	default:
		return false
	}
}

func parseDate(s, sourceFormat string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if sourceFormat != "" {
		t, err := time.Parse(sourceFormat, s)
		return t, err == nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
