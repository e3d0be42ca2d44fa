package analytics

import (
	"slices"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

var enquiryLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	time.DateOnly,
}

// parseEnquiryDate parses an ISO 8601 date or date-time, zone-less values are read in loc.
func parseEnquiryDate(v string, loc *time.Location) (time.Time, bool) {
	for _, layout := range enquiryLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type enquiry struct {
	client int
	at     time.Time
}

func (e *Engine) enquiries(s *entity.Snapshot) []enquiry {
	var out []enquiry
	for i := range s.Clients {
		c := &s.Clients[i]
		v, ok := c.Attr(entity.EnquiryDateAttr)
		if !ok {
			continue
		}
		t, ok := parseEnquiryDate(v, e.loc)
		if !ok {
			continue
		}
		out = append(out, enquiry{client: c.Id, at: t})
	}
	return out
}

// Enquiries counts clients by the month of their enquiry date.
func (e *Engine) Enquiries(s *entity.Snapshot, r Range) entity.FlatSeries {
	counts := NewCountBucket()
	for _, q := range e.enquiries(s) {
		if m, ok := e.monthOf(q.at); ok {
			counts.Inc(m, flatStatus)
		}
	}
	months := e.months(r, counts.Months())
	return entity.FlatSeries{
		Months: months,
		Data:   flatData(counts.Buckets, months, countValue),
	}
}

// EnquiryConversion reports, per enquiry month, how many enquiring clients went on to pay
// for a completed lesson that started after their enquiry.
func (e *Engine) EnquiryConversion(s *entity.Snapshot) []entity.EnquiryConversion {
	paid := make(map[int][]time.Time)
	for _, l := range e.lessons(s) {
		if !l.complete() {
			continue
		}
		for _, id := range l.payers {
			paid[id] = append(paid[id], l.start)
		}
	}

	byMonth := make(map[string]*entity.EnquiryConversion)
	for _, q := range e.enquiries(s) {
		m, ok := e.monthOf(q.at)
		if !ok {
			continue
		}
		ec, ok := byMonth[m]
		if !ok {
			ec = &entity.EnquiryConversion{Month: m}
			byMonth[m] = ec
		}
		ec.TotalEnquiries++
		if slices.ContainsFunc(paid[q.client], func(t time.Time) bool { return t.After(q.at) }) {
			ec.Converted++
		}
	}

	months := lo.Keys(byMonth)
	slices.Sort(months)
	out := make([]entity.EnquiryConversion, 0, len(months))
	for _, m := range months {
		ec := *byMonth[m]
		ec.ConversionRate = entity.Round(float64(ec.Converted)/float64(ec.TotalEnquiries)*100, 1)
		out = append(out, ec)
	}
	return out
}
