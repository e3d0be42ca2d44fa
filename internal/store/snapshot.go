package store

import (
	"context"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"golang.org/x/sync/errgroup"
)

// Snapshot loads appointments, recipient links, clients and ad hoc charges concurrently.
func (ms *MYSQLStore) Snapshot(ctx context.Context) (*entity.Snapshot, error) {
	var s entity.Snapshot
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		s.Appointments, err = ms.ListAppointments(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.RecipientAppointments, err = ms.ListRecipientAppointments(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.Clients, err = ms.ListClients(ctx)
		return err
	})
	g.Go(func() (err error) {
		s.AdHocCharges, err = ms.ListAdHocCharges(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &s, nil
}
