package analytics

import (
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
)

// FillSeries emits one dense line per status observed anywhere in b.
func FillSeries[T, R any](b *Buckets[T], months []string, project func(T) R) []entity.StatusData[R] {
	return FillSeriesFor(b, b.Statuses(), months, project)
}

// FillSeriesFor emits one line per given status with exactly one entry per month.
// Months without data get project applied to the zero accumulator.
func FillSeriesFor[T, R any](b *Buckets[T], statuses, months []string, project func(T) R) []entity.StatusData[R] {
	out := make([]entity.StatusData[R], 0, len(statuses))
	for _, st := range statuses {
		st = NormalizeStatus(st)
		data := make([]R, len(months))
		for i, m := range months {
			v, _ := b.at(m, st)
			data[i] = project(v)
		}
		out = append(out, entity.StatusData[R]{Status: st, Data: data})
	}
	return out
}

func flatData[T any](b *Buckets[T], months []string, project func(T) float64) []float64 {
	return FillSeriesFor(b, []string{flatStatus}, months, project)[0].Data
}

func identity[T any](v T) T { return v }

func countValue(c int) float64 { return float64(c) }
