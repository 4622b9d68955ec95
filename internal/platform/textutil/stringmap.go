package textutil

import "strings"

// NormalizeStringMap returns a copy of values with every key and value
// trimmed. Entries whose key or value trims to empty are dropped, and an
// empty result collapses to nil so callers can omit the map entirely.
func NormalizeStringMap(values map[string]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	normalized := make(map[string]string, len(values))
	for key, value := range values {
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		normalized[key] = value
	}
	if len(normalized) == 0 {
		return nil
	}
	return normalized
}
