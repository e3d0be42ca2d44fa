package analytics

import (
	"math"
	"time"
)

// DurationHours returns the lesson length in hours.
// The second result is false when a timestamp is missing or finish is not after start.
func DurationHours(start, finish time.Time) (float64, bool) {
	if start.IsZero() || finish.IsZero() {
		return 0, false
	}
	h := finish.Sub(start).Hours()
	if h <= 0 || math.IsNaN(h) || math.IsInf(h, 0) {
		return 0, false
	}
	return h, true
}
