package agentic

import (
	"encoding/json"
	"strings"
)

// sanitizeJSON strips the markdown code fences smaller models wrap around
// JSON output.
func sanitizeJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// decodeJSON parses a fenced-or-bare JSON payload into T. The boolean
// reports success; parse failures never surface as errors because every
// call site has a structural fallback.
func decodeJSON[T any](s string) (T, bool) {
	var out T
	if err := json.Unmarshal([]byte(sanitizeJSON(s)), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}
