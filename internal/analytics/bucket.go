package analytics

import (
	"slices"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

// flatStatus is the single status used by metrics without a status dimension.
const flatStatus = "all"

// Buckets is a month -> status -> accumulator mapping.
// Statuses are normalized on the way in.
type Buckets[T any] struct {
	m        map[string]map[string]T
	statuses map[string]struct{}
}

// NewBuckets returns an empty mapping.
func NewBuckets[T any]() *Buckets[T] {
	return &Buckets[T]{
		m:        make(map[string]map[string]T),
		statuses: make(map[string]struct{}),
	}
}

// Update replaces the accumulator of month/status with f applied to its current value.
func (b *Buckets[T]) Update(month, status string, f func(T) T) {
	status = NormalizeStatus(status)
	byStatus, ok := b.m[month]
	if !ok {
		byStatus = make(map[string]T)
		b.m[month] = byStatus
	}
	byStatus[status] = f(byStatus[status])
	b.statuses[status] = struct{}{}
}

// Touch registers month and status without changing the accumulator.
func (b *Buckets[T]) Touch(month, status string) {
	b.Update(month, status, identity[T])
}

// Get returns the accumulator of month/status.
func (b *Buckets[T]) Get(month, status string) (T, bool) {
	return b.at(month, NormalizeStatus(status))
}

// at looks up an already normalized status.
func (b *Buckets[T]) at(month, status string) (T, bool) {
	v, ok := b.m[month][status]
	return v, ok
}

// Months returns the observed months in ascending order.
func (b *Buckets[T]) Months() []string {
	months := lo.Keys(b.m)
	slices.Sort(months)
	return months
}

// Statuses returns every status observed in any month, sorted.
func (b *Buckets[T]) Statuses() []string {
	statuses := lo.Keys(b.statuses)
	slices.Sort(statuses)
	return statuses
}

// SumBucket adds float values per month and status.
type SumBucket struct{ *Buckets[float64] }

// NewSumBucket returns an empty SumBucket.
func NewSumBucket() SumBucket { return SumBucket{NewBuckets[float64]()} }

func (b SumBucket) Add(month, status string, v float64) {
	b.Update(month, status, func(cur float64) float64 { return cur + v })
}

// CountBucket counts records per month and status.
type CountBucket struct{ *Buckets[int] }

// NewCountBucket returns an empty CountBucket.
func NewCountBucket() CountBucket { return CountBucket{NewBuckets[int]()} }

func (b CountBucket) Inc(month, status string) {
	b.Update(month, status, func(cur int) int { return cur + 1 })
}

// PairBucket accumulates commission and hours together per month and status.
type PairBucket struct {
	*Buckets[entity.CommissionPair]
}

// NewPairBucket returns an empty PairBucket.
func NewPairBucket() PairBucket { return PairBucket{NewBuckets[entity.CommissionPair]()} }

func (b PairBucket) Add(month, status string, commission, hours float64) {
	b.Update(month, status, func(cur entity.CommissionPair) entity.CommissionPair {
		cur.TotalCommission += commission
		cur.TotalHours += hours
		return cur
	})
}

// SetBucket collects distinct ids per month and status.
type SetBucket struct {
	*Buckets[map[int]struct{}]
}

// NewSetBucket returns an empty SetBucket.
func NewSetBucket() SetBucket { return SetBucket{NewBuckets[map[int]struct{}]()} }

func (b SetBucket) Insert(month, status string, id int) {
	b.Update(month, status, func(cur map[int]struct{}) map[int]struct{} {
		if cur == nil {
			cur = make(map[int]struct{})
		}
		cur[id] = struct{}{}
		return cur
	})
}

// Union returns the distinct ids of month across the given statuses.
func (b SetBucket) Union(month string, statuses []string) map[int]struct{} {
	union := make(map[int]struct{})
	for _, st := range statuses {
		set, _ := b.at(month, NormalizeStatus(st))
		for id := range set {
			union[id] = struct{}{}
		}
	}
	return union
}

func sortedIds(set map[int]struct{}) []int {
	ids := make([]int, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
