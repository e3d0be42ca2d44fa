package analytics

import (
	"cmp"
	"slices"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
)

// TotalCommission sums (client rate - tutor rate) * hours per month and status.
func (e *Engine) TotalCommission(s *entity.Snapshot, r Range) entity.StatusSeries {
	sums := NewSumBucket()
	for _, l := range e.lessons(s) {
		if c, ok := l.commission(); ok {
			sums.Add(l.month, l.status, c)
		}
	}
	months := e.months(r, sums.Months())
	return entity.StatusSeries{
		Months:   months,
		Statuses: FillSeries(sums.Buckets, months, identity[float64]),
	}
}

// FlatCommission sums the per-appointment rate differential without weighting by duration.
// It is kept alongside TotalCommission for comparison with older reports.
func (e *Engine) FlatCommission(s *entity.Snapshot, r Range) entity.StatusSeries {
	sums := NewSumBucket()
	for _, l := range e.lessons(s) {
		if !l.rates.Commissionable() {
			continue
		}
		sums.Add(l.month, l.status, l.rates.Differential())
	}
	months := e.months(r, sums.Months())
	return entity.StatusSeries{
		Months:   months,
		Statuses: FillSeries(sums.Buckets, months, identity[float64]),
	}
}

// AverageCommissionRate accumulates commission and hours per month and status.
// The hourly rate is left to the consumer, see entity.CommissionPair.Rate.
func (e *Engine) AverageCommissionRate(s *entity.Snapshot, r Range) entity.RateSeries {
	pairs := NewPairBucket()
	for _, l := range e.lessons(s) {
		if c, ok := l.commission(); ok {
			pairs.Add(l.month, l.status, c, l.hours)
		}
	}
	months := e.months(r, pairs.Months())
	return entity.RateSeries{
		Months:   months,
		Statuses: FillSeries(pairs.Buckets, months, identity[entity.CommissionPair]),
	}
}

// CompleteCommission is the duration-weighted commission of completed lessons only.
func (e *Engine) CompleteCommission(s *entity.Snapshot, r Range) entity.FlatSeries {
	sums := NewSumBucket()
	for _, l := range e.lessons(s) {
		if !l.complete() {
			continue
		}
		if c, ok := l.commission(); ok {
			sums.Add(l.month, flatStatus, c)
		}
	}
	months := e.months(r, sums.Months())
	return entity.FlatSeries{
		Months: months,
		Data:   flatData(sums.Buckets, months, identity[float64]),
	}
}

type jobKey struct {
	service string
	month   string
}

type jobTotals struct {
	client     float64
	tutor      float64
	commission float64
	count      int
}

// CommissionByJob groups completed lessons by service and month, ordered by total commission.
// Rates are per appointment, not weighted by duration.
func (e *Engine) CommissionByJob(s *entity.Snapshot) []entity.JobCommission {
	totals := make(map[jobKey]*jobTotals)
	for _, l := range e.lessons(s) {
		if !l.complete() || !l.rates.Commissionable() {
			continue
		}
		k := jobKey{service: l.service, month: l.month}
		t, ok := totals[k]
		if !ok {
			t = &jobTotals{}
			totals[k] = t
		}
		t.client += l.rates.Client.Value
		t.tutor += l.rates.Tutor.Value
		t.commission += l.rates.Differential()
		t.count++
	}

	out := make([]entity.JobCommission, 0, len(totals))
	for k, t := range totals {
		n := float64(t.count)
		out = append(out, entity.JobCommission{
			Service:         k.service,
			Month:           k.month,
			ClientRate:      t.client / n,
			TutorRate:       t.tutor / n,
			CommissionRate:  t.commission / n,
			TotalClient:     t.client,
			TotalTutor:      t.tutor,
			TotalCommission: t.commission,
			Count:           t.count,
		})
	}
	slices.SortFunc(out, func(a, b entity.JobCommission) int {
		return cmp.Or(
			cmp.Compare(b.TotalCommission, a.TotalCommission),
			cmp.Compare(a.Service, b.Service),
			cmp.Compare(a.Month, b.Month),
		)
	})
	return out
}
