package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/samber/lo"
)

func (ms *MYSQLStore) UpsertReports(ctx context.Context, rs []entity.Report) error {
	for _, batch := range lo.Chunk(rs, upsertBatchSize) {
		rows := lo.Map(batch, func(r entity.Report, _ int) map[string]any {
			return map[string]any{
				"id":              r.Id,
				"appointment_id":  r.AppointmentId,
				"session_report":  r.SessionReport,
				"attitude_rating": r.AttitudeRating,
				"progress_rating": r.ProgressRating,
				"payload":         string(r.Payload),
			}
		})
		err := BulkInsert(ctx, ms.db, "report", rows,
			"appointment_id", "session_report", "attitude_rating", "progress_rating", "payload")
		if err != nil {
			return fmt.Errorf("can't upsert reports: %w", err)
		}
	}
	return nil
}

// UpsertRecords stores raw payloads keyed by kind and id.
func (ms *MYSQLStore) UpsertRecords(ctx context.Context, kind string, rs []entity.Record) error {
	for _, batch := range lo.Chunk(rs, upsertBatchSize) {
		rows := lo.Map(batch, func(r entity.Record, _ int) map[string]any {
			return map[string]any{
				"kind":    kind,
				"id":      r.Id,
				"payload": string(r.Payload),
			}
		})
		if err := BulkInsert(ctx, ms.db, "tc_record", rows, "payload"); err != nil {
			return fmt.Errorf("can't upsert %s records: %w", kind, err)
		}
	}
	return nil
}

func (ms *MYSQLStore) UpdateSyncStatus(ctx context.Context, s entity.SyncStatus) error {
	query := `
		INSERT INTO sync_status (run_id, entity, status, records_synced, error_message, synced_at)
		VALUES (:runId, :entity, :status, :recordsSynced, :errorMessage, :syncedAt)`
	syncedAt := s.SyncedAt
	if syncedAt.IsZero() {
		syncedAt = ms.Now()
	}
	err := ExecNamed(ctx, ms.db, query, map[string]any{
		"runId":         s.RunId,
		"entity":        s.Entity,
		"status":        s.Status,
		"recordsSynced": s.RecordsSynced,
		"errorMessage":  s.ErrorMessage,
		"syncedAt":      syncedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("can't update sync status: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) GetLatestSyncStatuses(ctx context.Context) ([]entity.SyncStatus, error) {
	query := `
		SELECT run_id, entity, status, records_synced, error_message, synced_at
		FROM sync_status
		WHERE run_id = (SELECT run_id FROM sync_status ORDER BY id DESC LIMIT 1)
		ORDER BY id`
	ss, err := QueryListNamed[entity.SyncStatus](ctx, ms.db, query, nil)
	if err != nil {
		return nil, fmt.Errorf("can't get latest sync statuses: %w", err)
	}
	return ss, nil
}

type metaRow struct {
	Key   string `db:"meta_key"`
	Value string `db:"value"`
}

func (ms *MYSQLStore) setMeta(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO meta (meta_key, value) VALUES (:key, :value)
		ON DUPLICATE KEY UPDATE value = VALUES(value)`
	return ExecNamed(ctx, ms.db, query, map[string]any{
		"key":   key,
		"value": value,
	})
}

func (ms *MYSQLStore) getMeta(ctx context.Context, key string) (string, error) {
	m, err := QueryNamedOne[metaRow](ctx, ms.db, `SELECT meta_key, value FROM meta WHERE meta_key = :key`, map[string]any{
		"key": key,
	})
	if err != nil {
		return "", err
	}
	return m.Value, nil
}

func (ms *MYSQLStore) SetLastSynced(ctx context.Context, t time.Time) error {
	if err := ms.setMeta(ctx, entity.MetaLastSynced, t.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("can't set last synced: %w", err)
	}
	return nil
}

func (ms *MYSQLStore) GetLastSynced(ctx context.Context) (*time.Time, error) {
	v, err := ms.getMeta(ctx, entity.MetaLastSynced)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("can't get last synced: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return nil, fmt.Errorf("bad last synced value %q: %w", v, err)
	}
	return &t, nil
}
