package shared

import "time"

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate accepts RFC3339 or plain YYYY-MM-DD. An empty value parses
// to the zero time without error.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
