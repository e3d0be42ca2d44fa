package analytics

import (
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
)

// completedSpan returns the first and last completed lesson start per student.
func (e *Engine) completedSpan(s *entity.Snapshot) (first, last map[int]time.Time) {
	first = make(map[int]time.Time)
	last = make(map[int]time.Time)
	for _, l := range e.lessons(s) {
		if !l.complete() {
			continue
		}
		for _, id := range l.recipients {
			if f, ok := first[id]; !ok || l.start.Before(f) {
				first[id] = l.start
			}
			if la, ok := last[id]; !ok || l.start.After(la) {
				last[id] = l.start
			}
		}
	}
	return first, last
}

// StudentStarts counts students by the month of their first completed lesson.
func (e *Engine) StudentStarts(s *entity.Snapshot, r Range) entity.FlatSeries {
	first, _ := e.completedSpan(s)
	counts := NewCountBucket()
	for _, t := range first {
		if m, ok := e.monthOf(t); ok {
			counts.Inc(m, flatStatus)
		}
	}
	months := e.months(r, counts.Months())
	return entity.FlatSeries{
		Months: months,
		Data:   flatData(counts.Buckets, months, countValue),
	}
}

// StudentFinishes counts students whose last completed lesson is more than the inactivity
// window before now, in the month of that last lesson.
func (e *Engine) StudentFinishes(s *entity.Snapshot, r Range) entity.FlatSeries {
	_, last := e.completedSpan(s)
	now := e.now()
	counts := NewCountBucket()
	for _, t := range last {
		if !t.AddDate(0, 0, e.finishDays).Before(now) {
			continue
		}
		if m, ok := e.monthOf(t); ok {
			counts.Inc(m, flatStatus)
		}
	}
	months := e.months(r, counts.Months())
	return entity.FlatSeries{
		Months: months,
		Data:   flatData(counts.Buckets, months, countValue),
	}
}
