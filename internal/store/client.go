package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/dependency"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

type clientRow struct {
	Id          int          `db:"id"`
	FirstName   string       `db:"first_name"`
	LastName    string       `db:"last_name"`
	Email       string       `db:"email"`
	Status      string       `db:"status"`
	DateCreated sql.NullTime `db:"date_created"`
}

type extraAttrRow struct {
	ClientId int `db:"client_id"`
	entity.ExtraAttr
}

// UpsertClients stores clients and replaces their extra attributes.
func (ms *MYSQLStore) UpsertClients(ctx context.Context, cs []entity.Client) error {
	for _, batch := range lo.Chunk(cs, upsertBatchSize) {
		err := ms.inTx(ctx, func(ctx context.Context, db dependency.DB) error {
			return upsertClients(ctx, db, batch)
		})
		if err != nil {
			return fmt.Errorf("can't upsert clients: %w", err)
		}
	}
	return nil
}

func upsertClients(ctx context.Context, db dependency.DB, cs []entity.Client) error {
	rows := make([]map[string]any, 0, len(cs))
	var attrs []map[string]any
	for _, c := range cs {
		rows = append(rows, map[string]any{
			"id":           c.Id,
			"first_name":   c.FirstName,
			"last_name":    c.LastName,
			"email":        c.Email,
			"status":       c.Status,
			"date_created": nullTime(c.DateCreated),
		})
		for i, a := range c.ExtraAttrs {
			attrs = append(attrs, map[string]any{
				"client_id":    c.Id,
				"position":     i,
				"machine_name": a.MachineName,
				"name":         a.Name,
				"value":        a.Value,
			})
		}
	}

	err := BulkInsert(ctx, db, "client", rows,
		"first_name", "last_name", "email", "status", "date_created")
	if err != nil {
		return err
	}

	err = ExecNamed(ctx, db, "DELETE FROM client_extra_attr WHERE client_id IN (:ids)", map[string]any{
		"ids": lo.Map(cs, func(c entity.Client, _ int) int { return c.Id }),
	})
	if err != nil {
		return fmt.Errorf("can't clear client extra attrs: %w", err)
	}
	return BulkInsert(ctx, db, "client_extra_attr", attrs)
}

// ListClients returns every stored client with its extra attributes.
func (ms *MYSQLStore) ListClients(ctx context.Context) ([]entity.Client, error) {
	rows, err := QueryListNamed[clientRow](ctx, ms.db, `
		SELECT id, first_name, last_name, email, status, date_created
		FROM client
		ORDER BY id`, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list clients: %w", err)
	}

	attrs, err := QueryListNamed[extraAttrRow](ctx, ms.db, `
		SELECT client_id, machine_name, name, value
		FROM client_extra_attr
		ORDER BY client_id, position`, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list client extra attrs: %w", err)
	}
	attrsById := lo.GroupBy(attrs, func(a extraAttrRow) int { return a.ClientId })

	out := make([]entity.Client, 0, len(rows))
	for _, r := range rows {
		c := entity.Client{
			Id:          r.Id,
			FirstName:   r.FirstName,
			LastName:    r.LastName,
			Email:       r.Email,
			Status:      r.Status,
			DateCreated: fromNullTime(r.DateCreated),
		}
		for _, a := range attrsById[r.Id] {
			c.ExtraAttrs = append(c.ExtraAttrs, a.ExtraAttr)
		}
		out = append(out, c)
	}
	return out, nil
}
