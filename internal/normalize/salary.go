package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	salaryRangePattern  = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)\s*-\s*\$?\s*([\d,]+(?:\.\d+)?)`)
	salarySinglePattern = regexp.MustCompile(`\$\s*([\d,]+(?:\.\d+)?)`)
)

// Salary extracts a min/max pair from either a structured {min,max} object or
// free text ("$50,000 - $70,000", "$90k base" without the k multiplier).
// Parameters:
//   - raw: the salary field as extracted from the provider payload.
// Returns:
//   - min: lower bound, nil when absent.
//   - max: upper bound, nil when absent.
func Salary(raw gjson.Result) (min, max *float64) {
	if !raw.Exists() {
		return nil, nil
	}

	if raw.IsObject() {
		if v := raw.Get("min"); v.Exists() {
			min = floatPtr(v.Float())
		}
		if v := raw.Get("max"); v.Exists() {
			max = floatPtr(v.Float())
		}
		return min, max
	}

	text := raw.String()
	if m := salaryRangePattern.FindStringSubmatch(text); m != nil {
		min = parseMoney(m[1])
		max = parseMoney(m[2])
		return min, max
	}
	if m := salarySinglePattern.FindStringSubmatch(text); m != nil {
		min = parseMoney(m[1])
		return min, nil
	}
	return nil, nil
}

func parseMoney(s string) *float64 {
	n, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return nil
	}
	return floatPtr(n)
}

func floatPtr(f float64) *float64 {
	return &f
}
