package analytics

import (
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/shopspring/decimal"
)

// Rate is an hourly rate that may be absent.
type Rate struct {
	Value float64
	Valid bool
}

// Resolved reports whether the rate is present and non-zero.
func (r Rate) Resolved() bool {
	return r.Valid && r.Value != 0
}

// RateTuple is the effective client charge rate and tutor pay rate of one appointment.
type RateTuple struct {
	Client Rate
	Tutor  Rate
}

// Commissionable reports whether both rates are resolved.
// Free or unpriced lessons contribute no commission.
func (t RateTuple) Commissionable() bool {
	return t.Client.Resolved() && t.Tutor.Resolved()
}

// Differential is client rate minus tutor rate.
func (t RateTuple) Differential() float64 {
	return t.Client.Value - t.Tutor.Value
}

// ResolveRates picks the first recipient charge rate and the first contractor pay rate of
// the appointment, falling back to the service defaults when the appointment carries none.
func ResolveRates(a *entity.Appointment) RateTuple {
	var charge, pay decimal.NullDecimal
	if len(a.Rcras) > 0 {
		charge = a.Rcras[0].ChargeRate
	}
	if len(a.Cjas) > 0 {
		pay = a.Cjas[0].PayRate
	}
	return RateTuple{
		Client: resolveRate(charge, a.Service.DefaultChargeRate),
		Tutor:  resolveRate(pay, a.Service.DefaultContractorRate),
	}
}

func resolveRate(specific, fallback decimal.NullDecimal) Rate {
	switch {
	case specific.Valid:
		return rateOf(specific.Decimal)
	case fallback.Valid:
		return rateOf(fallback.Decimal)
	default:
		return Rate{}
	}
}

func rateOf(d decimal.Decimal) Rate {
	f, _ := d.Float64()
	return Rate{Value: f, Valid: true}
}
