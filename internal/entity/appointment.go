package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

const AppointmentStatusComplete = "complete"

// Appointment is a single lesson as returned by the TutorCruncher appointment instance endpoint.
// Start and Finish are zero when the source value is missing or unparseable.
type Appointment struct {
	Id         int
	Start      time.Time
	Finish     time.Time
	Units      decimal.NullDecimal
	Topic      string
	Location   string
	Status     string
	ChargeType string
	Service    AppointmentService
	// Rcras are the recipient charge rates, only the first one is used for rate resolution.
	Rcras []RecipientCharge
	// Cjas are the contractor job assignments, only the first one is used for rate resolution.
	Cjas []ContractorJob
}

// AppointmentService is the service snapshot embedded in an appointment.
type AppointmentService struct {
	Id                    int                 `db:"service_id"`
	Name                  string              `db:"service_name"`
	DefaultChargeType     string              `db:"service_dft_charge_type"`
	DefaultChargeRate     decimal.NullDecimal `db:"service_dft_charge_rate"`
	DefaultContractorRate decimal.NullDecimal `db:"service_dft_contractor_rate"`
	Status                string              `db:"service_status"`
	URL                   string              `db:"service_url"`
}

type RecipientCharge struct {
	Recipient        int                 `db:"recipient"`
	RecipientName    string              `db:"recipient_name"`
	PayingClient     int                 `db:"paying_client"`
	PayingClientName string              `db:"paying_client_name"`
	ChargeRate       decimal.NullDecimal `db:"charge_rate"`
	Status           string              `db:"status"`
}

type ContractorJob struct {
	Contractor     int                 `db:"contractor"`
	ContractorName string              `db:"contractor_name"`
	PayRate        decimal.NullDecimal `db:"pay_rate"`
}

// RecipientAppointment joins a recipient (student) to an appointment.
type RecipientAppointment struct {
	Appointment  int                 `db:"appointment_id"`
	Recipient    int                 `db:"recipient"`
	PayingClient int                 `db:"paying_client"`
	ChargeRate   decimal.NullDecimal `db:"charge_rate"`
	Status       string              `db:"status"`
}

// RecipientAppointments derives one recipient link per charged recipient, the first charge
// of a recipient wins.
func (a *Appointment) RecipientAppointments() []RecipientAppointment {
	out := make([]RecipientAppointment, 0, len(a.Rcras))
	seen := make(map[int]struct{}, len(a.Rcras))
	for _, r := range a.Rcras {
		if r.Recipient == 0 {
			continue
		}
		if _, ok := seen[r.Recipient]; ok {
			continue
		}
		seen[r.Recipient] = struct{}{}
		out = append(out, RecipientAppointment{
			Appointment:  a.Id,
			Recipient:    r.Recipient,
			PayingClient: r.PayingClient,
			ChargeRate:   r.ChargeRate,
			Status:       r.Status,
		})
	}
	return out
}
