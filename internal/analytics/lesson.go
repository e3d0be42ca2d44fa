package analytics

import (
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

const unknownService = "Unknown"

// lesson is an appointment validated and canonicalized once before bucketing.
type lesson struct {
	id         int
	start      time.Time
	month      string
	status     string
	service    string
	hours      float64
	validHours bool
	rates      RateTuple
	recipients []int
	payers     []int
}

func (l *lesson) complete() bool {
	return l.status == entity.AppointmentStatusComplete
}

// commission is the duration-weighted commission, false when the lesson earns none.
func (l *lesson) commission() (float64, bool) {
	if !l.validHours || !l.rates.Commissionable() {
		return 0, false
	}
	return l.rates.Differential() * l.hours, true
}

// lessons normalizes the snapshot's appointments, dropping those without a usable start.
func (e *Engine) lessons(s *entity.Snapshot) []lesson {
	joined := make(map[int][]int)
	for _, ra := range s.RecipientAppointments {
		if ra.Appointment == 0 || ra.Recipient == 0 {
			continue
		}
		joined[ra.Appointment] = append(joined[ra.Appointment], ra.Recipient)
	}

	out := make([]lesson, 0, len(s.Appointments))
	for i := range s.Appointments {
		a := &s.Appointments[i]
		month, ok := e.monthOf(a.Start)
		if !ok {
			continue
		}
		hours, valid := DurationHours(a.Start, a.Finish)
		l := lesson{
			id:         a.Id,
			start:      a.Start.In(e.loc),
			month:      month,
			status:     NormalizeStatus(a.Status),
			service:    a.Service.Name,
			hours:      hours,
			validHours: valid,
			rates:      ResolveRates(a),
		}
		if l.service == "" {
			l.service = unknownService
		}

		recipients := joined[a.Id]
		for _, rc := range a.Rcras {
			if len(joined[a.Id]) == 0 && rc.Recipient != 0 {
				recipients = append(recipients, rc.Recipient)
			}
			if rc.PayingClient != 0 {
				l.payers = append(l.payers, rc.PayingClient)
			}
		}
		l.recipients = lo.Uniq(recipients)
		l.payers = lo.Uniq(l.payers)
		out = append(out, l)
	}
	return out
}
