package analytics

import (
	"testing"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	e, err := New(&Config{Timezone: "UTC", FinishInactivityDays: 28})
	require.NoError(t, err)
	return e
}

func at(s string) time.Time {
	t, err := time.Parse("2006-01-02T15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.NullDecimal {
	return decimal.NullDecimal{Decimal: decimal.RequireFromString(s), Valid: true}
}

// appointment builds a lesson; empty rates are left absent.
func appointment(id int, status, start, finish, clientRate, tutorRate string, recipients ...int) entity.Appointment {
	a := entity.Appointment{
		Id:      id,
		Status:  status,
		Service: entity.AppointmentService{Name: "Maths"},
	}
	if start != "" {
		a.Start = at(start)
	}
	if finish != "" {
		a.Finish = at(finish)
	}
	var charge decimal.NullDecimal
	if clientRate != "" {
		charge = dec(clientRate)
	}
	if len(recipients) == 0 && charge.Valid {
		a.Rcras = append(a.Rcras, entity.RecipientCharge{ChargeRate: charge})
	}
	for _, r := range recipients {
		a.Rcras = append(a.Rcras, entity.RecipientCharge{Recipient: r, PayingClient: r * 100, ChargeRate: charge})
	}
	if tutorRate != "" {
		a.Cjas = []entity.ContractorJob{{Contractor: 1, PayRate: dec(tutorRate)}}
	}
	return a
}
