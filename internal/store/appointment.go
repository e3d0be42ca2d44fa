package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/dependency"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

const upsertBatchSize = 500

type appointmentRow struct {
	Id         int                 `db:"id"`
	Start      sql.NullTime        `db:"start"`
	Finish     sql.NullTime        `db:"finish"`
	Units      decimal.NullDecimal `db:"units"`
	Topic      string              `db:"topic"`
	Location   string              `db:"location"`
	Status     string              `db:"status"`
	ChargeType string              `db:"charge_type"`
	entity.AppointmentService
}

type rcraRow struct {
	AppointmentId int `db:"appointment_id"`
	entity.RecipientCharge
}

type cjaRow struct {
	AppointmentId int `db:"appointment_id"`
	entity.ContractorJob
}

// inTx runs f in a transaction unless the store already is one.
func (ms *MYSQLStore) inTx(ctx context.Context, f func(context.Context, dependency.DB) error) error {
	if ms.InTx() {
		return f(ctx, ms.db)
	}
	return ms.Tx(ctx, func(ctx context.Context, rep dependency.Repository) error {
		return f(ctx, rep.DB())
	})
}

// UpsertAppointments stores appointments with their charge rates, contractor jobs and
// recipient links. Child rows of every given appointment are replaced.
func (ms *MYSQLStore) UpsertAppointments(ctx context.Context, as []entity.Appointment) error {
	for _, batch := range lo.Chunk(as, upsertBatchSize) {
		err := ms.inTx(ctx, func(ctx context.Context, db dependency.DB) error {
			return upsertAppointments(ctx, db, batch)
		})
		if err != nil {
			return fmt.Errorf("can't upsert appointments: %w", err)
		}
	}
	return nil
}

func upsertAppointments(ctx context.Context, db dependency.DB, as []entity.Appointment) error {
	rows := make([]map[string]any, 0, len(as))
	var rcras, cjas, links []map[string]any
	for _, a := range as {
		rows = append(rows, map[string]any{
			"id":                          a.Id,
			"start":                       nullTime(a.Start),
			"finish":                      nullTime(a.Finish),
			"units":                       a.Units,
			"topic":                       a.Topic,
			"location":                    a.Location,
			"status":                      a.Status,
			"charge_type":                 a.ChargeType,
			"service_id":                  a.Service.Id,
			"service_name":                a.Service.Name,
			"service_dft_charge_type":     a.Service.DefaultChargeType,
			"service_dft_charge_rate":     a.Service.DefaultChargeRate,
			"service_dft_contractor_rate": a.Service.DefaultContractorRate,
			"service_status":              a.Service.Status,
			"service_url":                 a.Service.URL,
		})
		for i, r := range a.Rcras {
			rcras = append(rcras, map[string]any{
				"appointment_id":     a.Id,
				"position":           i,
				"recipient":          r.Recipient,
				"recipient_name":     r.RecipientName,
				"paying_client":      r.PayingClient,
				"paying_client_name": r.PayingClientName,
				"charge_rate":        r.ChargeRate,
				"status":             r.Status,
			})
		}
		for i, c := range a.Cjas {
			cjas = append(cjas, map[string]any{
				"appointment_id":  a.Id,
				"position":        i,
				"contractor":      c.Contractor,
				"contractor_name": c.ContractorName,
				"pay_rate":        c.PayRate,
			})
		}
		for _, l := range a.RecipientAppointments() {
			links = append(links, map[string]any{
				"appointment_id": l.Appointment,
				"recipient":      l.Recipient,
				"paying_client":  l.PayingClient,
				"charge_rate":    l.ChargeRate,
				"status":         l.Status,
			})
		}
	}

	err := BulkInsert(ctx, db, "appointment", rows,
		"start", "finish", "units", "topic", "location", "status", "charge_type",
		"service_id", "service_name", "service_dft_charge_type", "service_dft_charge_rate",
		"service_dft_contractor_rate", "service_status", "service_url")
	if err != nil {
		return err
	}

	params := map[string]any{
		"ids": lo.Map(as, func(a entity.Appointment, _ int) int { return a.Id }),
	}
	for _, table := range []string{"appointment_rcra", "appointment_cja", "appointment_recipient"} {
		query := fmt.Sprintf("DELETE FROM %s WHERE appointment_id IN (:ids)", table)
		if err := ExecNamed(ctx, db, query, params); err != nil {
			return fmt.Errorf("can't clear %s: %w", table, err)
		}
	}

	if err := BulkInsert(ctx, db, "appointment_rcra", rcras); err != nil {
		return err
	}
	if err := BulkInsert(ctx, db, "appointment_cja", cjas); err != nil {
		return err
	}
	return BulkInsert(ctx, db, "appointment_recipient", links)
}

// ListAppointments returns every stored appointment with its charge rates and contractor jobs.
func (ms *MYSQLStore) ListAppointments(ctx context.Context) ([]entity.Appointment, error) {
	query := `
		SELECT id, start, finish, units, topic, location, status, charge_type,
			service_id, service_name, service_dft_charge_type, service_dft_charge_rate,
			service_dft_contractor_rate, service_status, service_url
		FROM appointment
		ORDER BY id`
	rows, err := QueryListNamed[appointmentRow](ctx, ms.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list appointments: %w", err)
	}

	rcras, err := QueryListNamed[rcraRow](ctx, ms.db, `
		SELECT appointment_id, recipient, recipient_name, paying_client, paying_client_name, charge_rate, status
		FROM appointment_rcra
		ORDER BY appointment_id, position`, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list appointment charges: %w", err)
	}

	cjas, err := QueryListNamed[cjaRow](ctx, ms.db, `
		SELECT appointment_id, contractor, contractor_name, pay_rate
		FROM appointment_cja
		ORDER BY appointment_id, position`, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list appointment contractors: %w", err)
	}

	rcrasById := lo.GroupBy(rcras, func(r rcraRow) int { return r.AppointmentId })
	cjasById := lo.GroupBy(cjas, func(c cjaRow) int { return c.AppointmentId })

	out := make([]entity.Appointment, 0, len(rows))
	for _, r := range rows {
		a := entity.Appointment{
			Id:         r.Id,
			Start:      fromNullTime(r.Start),
			Finish:     fromNullTime(r.Finish),
			Units:      r.Units,
			Topic:      r.Topic,
			Location:   r.Location,
			Status:     r.Status,
			ChargeType: r.ChargeType,
			Service:    r.AppointmentService,
		}
		for _, rc := range rcrasById[r.Id] {
			a.Rcras = append(a.Rcras, rc.RecipientCharge)
		}
		for _, cj := range cjasById[r.Id] {
			a.Cjas = append(a.Cjas, cj.ContractorJob)
		}
		out = append(out, a)
	}
	return out, nil
}

func (ms *MYSQLStore) ListRecipientAppointments(ctx context.Context) ([]entity.RecipientAppointment, error) {
	query := `
		SELECT appointment_id, recipient, paying_client, charge_rate, status
		FROM appointment_recipient
		ORDER BY appointment_id, recipient`
	ras, err := QueryListNamed[entity.RecipientAppointment](ctx, ms.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list recipient appointments: %w", err)
	}
	return ras, nil
}
