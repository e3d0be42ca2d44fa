package tcsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/robfig/cron/v3"
)

// ErrInProgress is returned when a sync is requested while another one is running.
var ErrInProgress = errors.New("sync already in progress")

// Source is a TutorCruncher API session.
type Source interface {
	FetchAllPages(ctx context.Context, path string) ([]json.RawMessage, error)
	FetchAllDetailed(ctx context.Context, path string) ([]json.RawMessage, error)
}

// Store defines the interface for synced data persistence.
type Store interface {
	UpsertAppointments(ctx context.Context, as []entity.Appointment) error
	UpsertClients(ctx context.Context, cs []entity.Client) error
	UpsertAdHocCharges(ctx context.Context, cs []entity.AdHocCharge) error
	UpsertServices(ctx context.Context, ss []entity.Service) error
	UpsertReports(ctx context.Context, rs []entity.Report) error
	UpsertRecords(ctx context.Context, kind string, rs []entity.Record) error
	UpdateSyncStatus(ctx context.Context, s entity.SyncStatus) error
	SetLastSynced(ctx context.Context, t time.Time) error
}

// Config holds configuration for the sync worker.
type Config struct {
	Enabled    bool   `mapstructure:"enabled"`
	Schedule   string `mapstructure:"schedule"` // cron spec, e.g. "@every 10m"
	RunOnStart bool   `mapstructure:"run_on_start"`
}

// DefaultConfig returns default configuration values.
func DefaultConfig() Config {
	return Config{
		Enabled:    true,
		Schedule:   "@every 10m",
		RunOnStart: true,
	}
}

// Worker periodically mirrors TutorCruncher into the store.
type Worker struct {
	session func() Source
	store   Store
	c       *Config
	now     func() time.Time

	running sync.Mutex
	wg      sync.WaitGroup

	// mu guards the lifecycle fields below.
	mu   sync.Mutex
	cron *cron.Cron
	ctx  context.Context
	stop context.CancelFunc
}

// New creates a new sync worker. session is called once per run.
func New(session func() Source, store Store, c *Config) *Worker {
	if c == nil {
		dc := DefaultConfig()
		c = &dc
	}
	if c.Schedule == "" {
		c.Schedule = "@every 10m"
	}
	return &Worker{
		session: session,
		store:   store,
		c:       c,
		now:     time.Now,
	}
}

// Start schedules the worker.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx != nil && w.stop != nil {
		return fmt.Errorf("tutorcruncher sync worker already started")
	}
	w.ctx, w.stop = context.WithCancel(ctx)

	w.cron = cron.New()
	ctx = w.ctx
	_, err := w.cron.AddFunc(w.c.Schedule, func() {
		w.runLogged(ctx)
	})
	if err != nil {
		w.stop()
		w.ctx, w.stop, w.cron = nil, nil, nil
		return fmt.Errorf("bad sync schedule %q: %w", w.c.Schedule, err)
	}
	w.cron.Start()

	if w.c.RunOnStart {
		w.wg.Go(func() { w.runLogged(ctx) })
	}
	return nil
}

// Stop stops the worker and waits for a running sync to return.
func (w *Worker) Stop() error {
	w.mu.Lock()
	stop, c := w.stop, w.cron
	if stop == nil {
		w.mu.Unlock()
		return fmt.Errorf("tutorcruncher sync worker already stopped or not started")
	}
	w.stop, w.ctx, w.cron = nil, nil, nil
	w.mu.Unlock()

	stop()
	<-c.Stop().Done()
	w.wg.Wait()
	return nil
}

// Trigger starts a background sync on the worker context.
func (w *Worker) Trigger() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.ctx == nil {
		return fmt.Errorf("tutorcruncher sync worker not started")
	}
	if !w.running.TryLock() {
		return ErrInProgress
	}
	ctx := w.ctx
	w.wg.Go(func() {
		defer w.running.Unlock()
		if _, err := w.syncAll(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "tutorcruncher sync failed", slog.String("err", err.Error()))
		}
	})
	return nil
}

func (w *Worker) runLogged(ctx context.Context) {
	if _, err := w.RunOnce(ctx); err != nil && !errors.Is(err, ErrInProgress) {
		slog.Default().ErrorContext(ctx, "tutorcruncher sync failed", slog.String("err", err.Error()))
	}
}

// RunOnce runs a full sync and returns the per-entity outcome.
func (w *Worker) RunOnce(ctx context.Context) ([]entity.SyncStatus, error) {
	if !w.running.TryLock() {
		return nil, ErrInProgress
	}
	defer w.running.Unlock()
	return w.syncAll(ctx)
}

func (w *Worker) syncAll(ctx context.Context) ([]entity.SyncStatus, error) {
	runId := uuid.NewString()
	src := w.session()

	slog.Default().InfoContext(ctx, "starting tutorcruncher sync", slog.String("run_id", runId))

	out := make([]entity.SyncStatus, 0, len(entities))
	for _, e := range entities {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		st := w.syncEntity(ctx, src, e)
		st.RunId = runId
		if err := w.store.UpdateSyncStatus(ctx, st); err != nil {
			slog.Default().ErrorContext(ctx, "can't update sync status",
				slog.String("entity", e.name),
				slog.String("err", err.Error()))
		}
		out = append(out, st)
	}

	if err := w.store.SetLastSynced(ctx, w.now()); err != nil {
		return out, fmt.Errorf("can't set last synced: %w", err)
	}
	slog.Default().InfoContext(ctx, "tutorcruncher sync completed", slog.String("run_id", runId))
	return out, nil
}

func (w *Worker) syncEntity(ctx context.Context, src Source, e entitySync) entity.SyncStatus {
	st := entity.SyncStatus{
		Entity: e.name,
		Status: entity.SyncStatusSuccess,
	}

	fetch := src.FetchAllPages
	if e.detailed {
		fetch = src.FetchAllDetailed
	}
	raws, err := fetch(ctx, e.path)
	if err == nil {
		st.RecordsSynced, err = e.save(ctx, w.store, raws)
	}
	st.SyncedAt = w.now()
	if err != nil {
		st.Status = entity.SyncStatusError
		st.ErrorMessage = err.Error()
		slog.Default().ErrorContext(ctx, "failed syncing entity",
			slog.String("entity", e.name),
			slog.String("err", err.Error()))
		return st
	}

	slog.Default().InfoContext(ctx, "synced entity",
		slog.String("entity", e.name),
		slog.Int("count", st.RecordsSynced))
	return st
}
