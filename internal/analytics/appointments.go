package analytics

import (
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

// LessonHours sums lesson hours per month and status regardless of rates.
func (e *Engine) LessonHours(s *entity.Snapshot, r Range) entity.StatusSeries {
	hours := NewSumBucket()
	for _, l := range e.lessons(s) {
		if l.validHours {
			hours.Add(l.month, l.status, l.hours)
		}
	}
	months := e.months(r, hours.Months())
	return entity.StatusSeries{
		Months:   months,
		Statuses: FillSeries(hours.Buckets, months, identity[float64]),
	}
}

func (e *Engine) studentSets(lessons []lesson) SetBucket {
	sets := NewSetBucket()
	for _, l := range lessons {
		if !l.validHours {
			continue
		}
		for _, id := range l.recipients {
			sets.Insert(l.month, l.status, id)
		}
	}
	return sets
}

// UniqueStudents counts distinct students per month across the selected statuses,
// all statuses when none are given. A student seen under two statuses counts once.
func (e *Engine) UniqueStudents(s *entity.Snapshot, r Range, statuses ...string) entity.FlatSeries {
	sets := e.studentSets(e.lessons(s))
	selected := lo.Uniq(lo.Map(statuses, func(st string, _ int) string { return NormalizeStatus(st) }))
	if len(selected) == 0 {
		selected = sets.Statuses()
	}
	months := e.months(r, sets.Months())
	data := make([]float64, len(months))
	for i, m := range months {
		data[i] = float64(len(sets.Union(m, selected)))
	}
	return entity.FlatSeries{Months: months, Data: data}
}

// AppointmentSummary reports, per month and status, the number of appointments, the lesson
// hours and the ids of the students taught. Appointments without a valid duration are not
// counted, but their month and status still appear with zero values.
func (e *Engine) AppointmentSummary(s *entity.Snapshot, r Range) entity.AppointmentSummary {
	lessons := e.lessons(s)
	counts := NewCountBucket()
	hours := NewSumBucket()
	for _, l := range lessons {
		if !l.validHours {
			counts.Touch(l.month, l.status)
			continue
		}
		counts.Inc(l.month, l.status)
		hours.Add(l.month, l.status, l.hours)
	}
	sets := e.studentSets(lessons)

	statuses := counts.Statuses()
	months := e.months(r, counts.Months())
	summary := entity.AppointmentSummary{
		Months:                 months,
		Statuses:               FillSeriesFor(counts.Buckets, statuses, months, countValue),
		LessonHoursPerMonthRaw: make([]map[string]float64, len(months)),
		StudentMapPerMonthRaw:  make([]map[string][]int, len(months)),
	}
	for i, m := range months {
		h := make(map[string]float64, len(statuses))
		st := make(map[string][]int, len(statuses))
		for _, status := range statuses {
			h[status], _ = hours.at(m, status)
			set, _ := sets.at(m, status)
			st[status] = sortedIds(set)
		}
		summary.LessonHoursPerMonthRaw[i] = h
		summary.StudentMapPerMonthRaw[i] = st
	}
	return summary
}
