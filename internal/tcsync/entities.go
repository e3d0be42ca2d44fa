package tcsync

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/tutorcruncher"
)

type saveFunc func(ctx context.Context, s Store, raws []json.RawMessage) (int, error)

type entitySync struct {
	name     string
	path     string
	detailed bool
	save     saveFunc
}

var entities = []entitySync{
	{name: "ad_hoc_charges", path: "/adhoccharges/", save: typed(tutorcruncher.DecodeAdHocCharge, adHocId, Store.UpsertAdHocCharges)},
	{name: "appointments", path: "/appointments/", detailed: true, save: typed(tutorcruncher.DecodeAppointment, appointmentId, Store.UpsertAppointments)},
	{name: "clients", path: "/clients/", detailed: true, save: typed(tutorcruncher.DecodeClient, clientId, Store.UpsertClients)},
	{name: "contractors", path: "/contractors/", save: records("contractors")},
	{name: "invoices", path: "/invoices/", save: records("invoices")},
	{name: "payment_orders", path: "/payment-orders/", save: records("payment_orders")},
	{name: "recipients", path: "/recipients/", save: records("recipients")},
	{name: "reports", path: "/reports/", save: typed(tutorcruncher.DecodeReport, reportId, Store.UpsertReports)},
	{name: "services", path: "/services/", save: typed(tutorcruncher.DecodeService, serviceId, Store.UpsertServices)},
	{name: "tenders", path: "/tenders/", save: records("tenders")},
}

func adHocId(c *entity.AdHocCharge) *int       { return &c.Id }
func appointmentId(a *entity.Appointment) *int { return &a.Id }
func clientId(c *entity.Client) *int           { return &c.Id }
func reportId(r *entity.Report) *int           { return &r.Id }
func serviceId(s *entity.Service) *int         { return &s.Id }

// typed decodes every payload, fills in missing ids from the payload url and
// skips entries that have neither.
func typed[T any](
	decode func(json.RawMessage) (T, error),
	id func(*T) *int,
	upsert func(Store, context.Context, []T) error,
) saveFunc {
	return func(ctx context.Context, s Store, raws []json.RawMessage) (int, error) {
		vs := make([]T, 0, len(raws))
		for _, raw := range raws {
			v, err := decode(raw)
			if err != nil {
				slog.Default().WarnContext(ctx, "skipping undecodable entry", slog.String("err", err.Error()))
				continue
			}
			p := id(&v)
			if *p == 0 {
				rid, ok := tutorcruncher.RecordId(raw)
				if !ok {
					slog.Default().WarnContext(ctx, "skipping entry without id", slog.String("payload", string(raw)))
					continue
				}
				*p = rid
			}
			vs = append(vs, v)
		}
		if len(vs) == 0 {
			return 0, nil
		}
		if err := upsert(s, ctx, vs); err != nil {
			return 0, err
		}
		return len(vs), nil
	}
}

func records(kind string) saveFunc {
	return func(ctx context.Context, s Store, raws []json.RawMessage) (int, error) {
		rs := make([]entity.Record, 0, len(raws))
		for _, raw := range raws {
			id, ok := tutorcruncher.RecordId(raw)
			if !ok {
				slog.Default().WarnContext(ctx, "skipping entry without id",
					slog.String("entity", kind),
					slog.String("payload", string(raw)))
				continue
			}
			rs = append(rs, entity.Record{Id: id, Payload: raw})
		}
		if len(rs) == 0 {
			return 0, nil
		}
		if err := s.UpsertRecords(ctx, kind, rs); err != nil {
			return 0, err
		}
		return len(rs), nil
	}
}
