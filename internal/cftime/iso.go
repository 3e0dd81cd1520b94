package cftime

import (
	"fmt"
	"strings"
	"time"
)

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"20060102T150405Z",
	"20060102",
}

// ParseISO parses an ISO-8601 timestamp as found in time_coverage_* attributes.
// Values without a zone are taken as UTC.
func ParseISO(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse %q as ISO-8601", s)
}
