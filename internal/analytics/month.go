package analytics

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// MonthKeyOf returns the yyyy-MM key of t in t's own location.
// A zero time has no month.
func MonthKeyOf(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return t.Format(monthLayout), true
}

// ParseMonthKey parses a yyyy-MM key into the first instant of that month in UTC.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(monthLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse month key %q: %w", key, err)
	}
	return t, nil
}

// MonthRange returns every month key from startKey to endKey inclusive, in order.
// It returns an empty slice when endKey is before startKey or either key is malformed.
func MonthRange(startKey, endKey string) []string {
	months := []string{}
	start, err := ParseMonthKey(startKey)
	if err != nil {
		return months
	}
	end, err := ParseMonthKey(endKey)
	if err != nil {
		return months
	}
	for cur := start; !cur.After(end); cur = cur.AddDate(0, 1, 0) {
		months = append(months, cur.Format(monthLayout))
	}
	return months
}
