package utils

import "encoding/json"

// JSONToString returns the compact JSON encoding of v. It never fails: a
// marshal error is itself reported as a JSON object, so the result is always
// safe to hand back to a model or a log line.
func JSONToString(v any) string {
	encoded, err := json.Marshal(v)
	if err != nil {
		fallback, _ := json.Marshal(map[string]string{"error": "failed to marshal to JSON: " + err.Error()})
		return string(fallback)
	}
	return string(encoded)
}

// FirstNonEmpty returns the first argument that is not "".
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
