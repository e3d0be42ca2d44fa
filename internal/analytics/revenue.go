package analytics

import (
	"slices"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

func (e *Engine) adHocSums(s *entity.Snapshot) SumBucket {
	sums := NewSumBucket()
	for i := range s.AdHocCharges {
		c := &s.AdHocCharges[i]
		if !c.ClientCost.Valid {
			continue
		}
		m, ok := e.monthOf(c.DateOccurred)
		if !ok {
			continue
		}
		net, _ := c.Net().Float64()
		sums.Add(m, flatStatus, net)
	}
	return sums
}

// AdHocNetRevenue sums client cost minus contractor pay of ad-hoc charges per month.
func (e *Engine) AdHocNetRevenue(s *entity.Snapshot, r Range) entity.FlatSeries {
	sums := e.adHocSums(s)
	months := e.months(r, sums.Months())
	return entity.FlatSeries{
		Months: months,
		Data:   flatData(sums.Buckets, months, identity[float64]),
	}
}

// TotalIncome reports lesson commission and ad-hoc net revenue over the months either covers.
func (e *Engine) TotalIncome(s *entity.Snapshot, r Range) entity.IncomeSeries {
	commission := NewSumBucket()
	for _, l := range e.lessons(s) {
		if c, ok := l.commission(); ok {
			commission.Add(l.month, flatStatus, c)
		}
	}
	adHoc := e.adHocSums(s)

	observed := lo.Uniq(append(commission.Months(), adHoc.Months()...))
	slices.Sort(observed)
	months := e.months(r, observed)
	return entity.IncomeSeries{
		Months:         months,
		CommissionData: flatData(commission.Buckets, months, identity[float64]),
		AdHocData:      flatData(adHoc.Buckets, months, identity[float64]),
	}
}
