package tools

import (
	"fmt"
	"strings"
	"time"
)

// ParseRangeBound parses an ISO-8601 date or date-time. Missing time
// components default per spec.md 4.4: "T00:00:00" when defaultEnd is
// false (a range start), "T23:59:59" when defaultEnd is true (a range
// end).
func ParseRangeBound(s string, defaultEnd bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if !strings.Contains(s, "T") {
		if defaultEnd {
			s += "T23:59:59"
		} else {
			s += "T00:00:00"
		}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
	}
	var lastErr error
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		} else {
			lastErr = err
		}
	}
	return time.Time{}, fmt.Errorf("parse date %q: %w", s, lastErr)
}

// Relevance converts a vector distance to [0,1]; lower distance is more
// similar. Used uniformly across every time-filtered tool per spec.md 4.4.
func Relevance(distance float64) float64 {
	r := 1 - distance
	if r < 0 {
		return 0
	}
	return r
}

// Recency converts an age in days to [0,1].
func Recency(ageDays, maxAgeDays float64) float64 {
	if maxAgeDays <= 0 {
		return 0
	}
	r := 1 - ageDays/maxAgeDays
	if r < 0 {
		return 0
	}
	return r
}

// Combined is the convex combination relevance*(1-w) + recency*w used by
// search-recent-relevant.
func Combined(relevance, recency, recencyWeight float64) float64 {
	return relevance*(1-recencyWeight) + recency*recencyWeight
}
