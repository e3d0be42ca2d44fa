package entity

import (
	"github.com/shopspring/decimal"
)

// StatusData is one status line of a month-indexed series, Data has one entry per month.
type StatusData[T any] struct {
	Status string `json:"status"`
	Data   []T    `json:"data"`
}

// StatusSeries is a month-indexed series split by appointment status.
type StatusSeries struct {
	Months   []string              `json:"months"`
	Statuses []StatusData[float64] `json:"statuses"`
}

// CommissionPair accumulates commission and lesson hours so that the average hourly
// commission can be derived by the consumer.
type CommissionPair struct {
	TotalCommission float64 `json:"totalCommission"`
	TotalHours      float64 `json:"totalHours"`
}

// Rate returns the average hourly commission, nil when there are no hours.
func (p CommissionPair) Rate() *float64 {
	if p.TotalHours == 0 {
		return nil
	}
	r := p.TotalCommission / p.TotalHours
	return &r
}

// RateSeries is a month-indexed series of commission/hours pairs split by status.
type RateSeries struct {
	Months   []string                     `json:"months"`
	Statuses []StatusData[CommissionPair] `json:"statuses"`
}

// FlatSeries is a month-indexed series without a status dimension.
type FlatSeries struct {
	Months []string  `json:"months"`
	Data   []float64 `json:"data"`
}

// AppointmentSummary combines appointment counts, lesson hours and student sets per status.
type AppointmentSummary struct {
	Months                 []string              `json:"months"`
	Statuses               []StatusData[float64] `json:"statuses"`
	LessonHoursPerMonthRaw []map[string]float64  `json:"lessonHoursPerMonthRaw"`
	StudentMapPerMonthRaw  []map[string][]int    `json:"studentMapPerMonthRaw"`
}

// JobCommission is the commission aggregate of one service in one month.
type JobCommission struct {
	Service         string  `json:"service"`
	Month           string  `json:"month"`
	ClientRate      float64 `json:"clientRate"`
	TutorRate       float64 `json:"tutorRate"`
	CommissionRate  float64 `json:"commissionRate"`
	TotalClient     float64 `json:"totalClient"`
	TotalTutor      float64 `json:"totalTutor"`
	TotalCommission float64 `json:"totalCommission"`
	Count           int     `json:"count"`
}

type EnquiryConversion struct {
	Month          string  `json:"month"`
	TotalEnquiries int     `json:"totalEnquiries"`
	Converted      int     `json:"converted"`
	ConversionRate float64 `json:"conversionRate"`
}

// IncomeSeries holds appointment commission and ad-hoc net revenue over the same months.
type IncomeSeries struct {
	Months         []string  `json:"months"`
	CommissionData []float64 `json:"commissionData"`
	AdHocData      []float64 `json:"adHocData"`
}

// Round rounds v half away from zero to the given number of decimal places.
func Round(v float64, places int32) float64 {
	f, _ := decimal.NewFromFloat(v).Round(places).Float64()
	return f
}

func round2All(vs []float64) []float64 {
	out := make([]float64, len(vs))
	for i, v := range vs {
		out[i] = Round(v, 2)
	}
	return out
}

func (s StatusSeries) Rounded() StatusSeries {
	out := StatusSeries{
		Months:   s.Months,
		Statuses: make([]StatusData[float64], len(s.Statuses)),
	}
	for i, sd := range s.Statuses {
		out.Statuses[i] = StatusData[float64]{Status: sd.Status, Data: round2All(sd.Data)}
	}
	return out
}

func (s RateSeries) Rounded() RateSeries {
	out := RateSeries{
		Months:   s.Months,
		Statuses: make([]StatusData[CommissionPair], len(s.Statuses)),
	}
	for i, sd := range s.Statuses {
		data := make([]CommissionPair, len(sd.Data))
		for j, p := range sd.Data {
			data[j] = CommissionPair{
				TotalCommission: Round(p.TotalCommission, 2),
				TotalHours:      Round(p.TotalHours, 2),
			}
		}
		out.Statuses[i] = StatusData[CommissionPair]{Status: sd.Status, Data: data}
	}
	return out
}

func (s FlatSeries) Rounded() FlatSeries {
	return FlatSeries{Months: s.Months, Data: round2All(s.Data)}
}

func (s IncomeSeries) Rounded() IncomeSeries {
	return IncomeSeries{
		Months:         s.Months,
		CommissionData: round2All(s.CommissionData),
		AdHocData:      round2All(s.AdHocData),
	}
}

func (s AppointmentSummary) Rounded() AppointmentSummary {
	out := s
	out.Statuses = StatusSeries{Months: s.Months, Statuses: s.Statuses}.Rounded().Statuses
	out.LessonHoursPerMonthRaw = make([]map[string]float64, len(s.LessonHoursPerMonthRaw))
	for i, m := range s.LessonHoursPerMonthRaw {
		rm := make(map[string]float64, len(m))
		for k, v := range m {
			rm[k] = Round(v, 2)
		}
		out.LessonHoursPerMonthRaw[i] = rm
	}
	return out
}

func (j JobCommission) Rounded() JobCommission {
	return JobCommission{
		Service:         j.Service,
		Month:           j.Month,
		ClientRate:      Round(j.ClientRate, 2),
		TutorRate:       Round(j.TutorRate, 2),
		CommissionRate:  Round(j.CommissionRate, 2),
		TotalClient:     Round(j.TotalClient, 2),
		TotalTutor:      Round(j.TotalTutor, 2),
		TotalCommission: Round(j.TotalCommission, 2),
		Count:           j.Count,
	}
}
