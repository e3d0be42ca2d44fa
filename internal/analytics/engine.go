package analytics

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

// ErrInvalidRange is returned when a requested month bound is not a yyyy-MM key.
var ErrInvalidRange = errors.New("invalid month range")

// Engine derives month-indexed analytics from a snapshot of synced records.
// It keeps no state between calls and is safe for concurrent use.
type Engine struct {
	loc        *time.Location
	finishDays int
	now        func() time.Time
}

// New creates an analytics engine.
func New(c *Config) (*Engine, error) {
	if c == nil {
		dc := DefaultConfig()
		c = &dc
	}
	loc := time.Local
	if c.Timezone != "" {
		l, err := time.LoadLocation(c.Timezone)
		if err != nil {
			return nil, fmt.Errorf("can't load timezone %q: %w", c.Timezone, err)
		}
		loc = l
	}
	days := c.FinishInactivityDays
	if days <= 0 {
		days = 28
	}
	return &Engine{
		loc:        loc,
		finishDays: days,
		now:        time.Now,
	}, nil
}

// WithClock returns a copy of the engine evaluating "now" with the given function.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

// Location returns the location used for month assignment.
func (e *Engine) Location() *time.Location {
	return e.loc
}

// Range limits a series to the inclusive months Start..End.
// An empty bound defaults to the first or last month observed in the data.
type Range struct {
	Start string
	End   string
}

// ParseRange validates optional yyyy-MM bounds.
func ParseRange(start, end string) (Range, error) {
	for _, k := range []string{start, end} {
		if k == "" {
			continue
		}
		if _, err := ParseMonthKey(k); err != nil {
			return Range{}, fmt.Errorf("%w: %q", ErrInvalidRange, k)
		}
	}
	return Range{Start: start, End: end}, nil
}

// months resolves r against the sorted observed months of a metric.
func (e *Engine) months(r Range, observed []string) []string {
	start, end := r.Start, r.End
	if len(observed) > 0 {
		if start == "" {
			start = observed[0]
		}
		if end == "" {
			end = observed[len(observed)-1]
		}
	}
	if start == "" || end == "" {
		return []string{}
	}
	return MonthRange(start, end)
}

func (e *Engine) monthOf(t time.Time) (string, bool) {
	if t.IsZero() {
		return "", false
	}
	return MonthKeyOf(t.In(e.loc))
}
