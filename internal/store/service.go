package store

import (
	"context"
	"fmt"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

func (ms *MYSQLStore) UpsertServices(ctx context.Context, ss []entity.Service) error {
	for _, batch := range lo.Chunk(ss, upsertBatchSize) {
		rows := lo.Map(batch, func(s entity.Service, _ int) map[string]any {
			return map[string]any{
				"id":                  s.Id,
				"name":                s.Name,
				"status":              s.Status,
				"dft_charge_type":     s.DefaultChargeType,
				"dft_charge_rate":     s.DefaultChargeRate,
				"dft_contractor_rate": s.DefaultContractorRate,
				"url":                 s.URL,
			}
		})
		err := BulkInsert(ctx, ms.db, "service", rows,
			"name", "status", "dft_charge_type", "dft_charge_rate", "dft_contractor_rate", "url")
		if err != nil {
			return fmt.Errorf("can't upsert services: %w", err)
		}
	}
	return nil
}

// GetAvailableServices returns the jobs still open for tutors, ordered by name.
func (ms *MYSQLStore) GetAvailableServices(ctx context.Context) ([]entity.Service, error) {
	query := `
		SELECT id, name, status, dft_charge_type, dft_charge_rate, dft_contractor_rate, url
		FROM service
		WHERE status = :status
		ORDER BY name, id`
	ss, err := QueryListNamed[entity.Service](ctx, ms.db, query, map[string]any{
		"status": entity.ServiceStatusAvailable,
	})
	if err != nil {
		return nil, fmt.Errorf("can't get available services: %w", err)
	}
	return ss, nil
}
