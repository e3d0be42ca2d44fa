package analytics

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// StatusUnknown is the bucket for records without a status.
const StatusUnknown = "unknown"

// NormalizeStatus lower-cases s so that case variants share one bucket.
func NormalizeStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return StatusUnknown
	}
	// a Caser keeps state, so one is made per call
	return cases.Lower(language.Und).String(s)
}
