package engagement

import (
	"fmt"
	"strings"
	"time"
)

// Accepted timestamp layouts. Fractional seconds are optional in every layout;
// layouts without a zone are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 sample timestamp.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format: %q", raw)
}

// secondsBetween returns the whole seconds from start to end, truncated toward zero.
func secondsBetween(start, end string) (int, error) {
	startTime, err := ParseTimestamp(start)
	if err != nil {
		return 0, fmt.Errorf("start: %w", err)
	}
	endTime, err := ParseTimestamp(end)
	if err != nil {
		return 0, fmt.Errorf("end: %w", err)
	}
	return int(endTime.Sub(startTime) / time.Second), nil
}
