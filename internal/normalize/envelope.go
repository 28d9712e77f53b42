package normalize

import "github.com/tidwall/gjson"

// containerKeys are tried in order when a response envelope has no configured
// path. Covers the common vendor wrappers.
var containerKeys = []string{
	"data",
	"results",
	"items",
	"records",
	"jobs",
	"candidates",
	"applications",
	"applicants",
	"content",
	"entries",
	"d.results", // OData
}

// UnwrapRecords locates the record array inside a provider response body:
// the configured path first, then the common container keys, then the body
// itself when it already is an array.
// Parameters:
//   - body: raw response body.
//   - configuredPath: optional dot path from the connection settings.
// Returns:
//   - []gjson.Result: individual raw records; empty when no array was found.
func UnwrapRecords(body []byte, configuredPath string) []gjson.Result {
	if configuredPath != "" {
		if r := gjson.GetBytes(body, configuredPath); r.IsArray() {
			return r.Array()
		}
	}

	root := gjson.ParseBytes(body)
	if root.IsArray() {
		return root.Array()
	}

	for _, key := range containerKeys {
		if r := root.Get(key); r.IsArray() {
			return r.Array()
		}
	}

	return nil
}
