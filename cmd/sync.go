package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/jekabolt/tutorcruncher-dashboard/app"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/store"
	"github.com/spf13/cobra"
)

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.TutorCruncher.Enabled = true
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := store.New(ctx, cfg.DB)
	if err != nil {
		return fmt.Errorf("couldn't connect to mysql: %w", err)
	}
	defer db.Close()

	statuses, err := app.NewSyncWorker(cfg, db).RunOnce(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	failed := 0
	for _, s := range statuses {
		attrs := []any{
			slog.String("entity", s.Entity),
			slog.String("status", s.Status),
			slog.Int("records", s.RecordsSynced),
		}
		if s.Status == entity.SyncStatusError {
			failed++
			attrs = append(attrs, slog.String("err", s.ErrorMessage))
		}
		slog.Default().InfoContext(ctx, "entity synced", attrs...)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d entities failed to sync", failed, len(statuses))
	}
	return nil
}
