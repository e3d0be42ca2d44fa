package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type adHocChargeRow struct {
	Id            int                 `db:"id"`
	DateOccurred  sql.NullTime        `db:"date_occurred"`
	Description   string              `db:"description"`
	CategoryName  string              `db:"category_name"`
	ClientId      int                 `db:"client_id"`
	ClientCost    decimal.NullDecimal `db:"client_cost"`
	PayContractor decimal.NullDecimal `db:"pay_contractor"`
}

func (ms *MYSQLStore) UpsertAdHocCharges(ctx context.Context, cs []entity.AdHocCharge) error {
	for _, batch := range lo.Chunk(cs, upsertBatchSize) {
		rows := make([]map[string]any, 0, len(batch))
		for _, c := range batch {
			rows = append(rows, map[string]any{
				"id":             c.Id,
				"date_occurred":  nullTime(c.DateOccurred),
				"description":    c.Description,
				"category_name":  c.CategoryName,
				"client_id":      c.ClientId,
				"client_cost":    c.ClientCost,
				"pay_contractor": c.PayContractor,
			})
		}
		err := BulkInsert(ctx, ms.db, "ad_hoc_charge", rows,
			"date_occurred", "description", "category_name", "client_id", "client_cost", "pay_contractor")
		if err != nil {
			return fmt.Errorf("can't upsert ad hoc charges: %w", err)
		}
	}
	return nil
}

func (ms *MYSQLStore) ListAdHocCharges(ctx context.Context) ([]entity.AdHocCharge, error) {
	rows, err := QueryListNamed[adHocChargeRow](ctx, ms.db, `
		SELECT id, date_occurred, description, category_name, client_id, client_cost, pay_contractor
		FROM ad_hoc_charge
		ORDER BY id`, nil)
	if err != nil {
		return nil, fmt.Errorf("can't list ad hoc charges: %w", err)
	}
	return lo.Map(rows, func(r adHocChargeRow, _ int) entity.AdHocCharge {
		return entity.AdHocCharge{
			Id:            r.Id,
			DateOccurred:  fromNullTime(r.DateOccurred),
			Description:   r.Description,
			CategoryName:  r.CategoryName,
			ClientId:      r.ClientId,
			ClientCost:    r.ClientCost,
			PayContractor: r.PayContractor,
		}
	}), nil
}
