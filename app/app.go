package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jekabolt/tutorcruncher-dashboard/config"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/analytics"
	httpapi "github.com/jekabolt/tutorcruncher-dashboard/internal/api/http"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/dependency"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/mail"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/store"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/tcsync"
	"github.com/jekabolt/tutorcruncher-dashboard/internal/tutorcruncher"
)

// App is the main application
type App struct {
	hs     *httpapi.Server
	db     *store.MYSQLStore
	worker *tcsync.Worker
	c      *config.Config
	done   chan struct{}
	once   sync.Once
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// NewSyncWorker builds a sync worker that opens a fresh TutorCruncher session per run.
func NewSyncWorker(c *config.Config, st tcsync.Store) *tcsync.Worker {
	tc := c.TutorCruncher
	return tcsync.New(func() tcsync.Source {
		return tutorcruncher.New(&tc)
	}, st, &c.Sync)
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting tutorcruncher dashboard")

	if err = a.c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql", slog.String("err", err.Error()))
		return err
	}

	engine, err := analytics.New(&a.c.Analytics)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to create analytics engine", slog.String("err", err.Error()))
		return err
	}

	mailer, err := mail.New(&a.c.Mailer)
	if err != nil {
		slog.Default().ErrorContext(ctx, "failed to create mailer", slog.String("err", err.Error()))
		return err
	}

	var syncer dependency.Syncer
	if a.c.Sync.Enabled && a.c.TutorCruncher.Enabled {
		a.worker = NewSyncWorker(a.c, a.db)
		if err = a.worker.Start(ctx); err != nil {
			slog.Default().ErrorContext(ctx, "failed to start sync worker", slog.String("err", err.Error()))
			return err
		}
		syncer = a.worker
	} else {
		slog.Default().WarnContext(ctx, "tutorcruncher sync is disabled")
	}

	a.hs = httpapi.New(&a.c.HTTP, a.db, engine, mailer, syncer)
	if err = a.hs.Start(ctx); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server", slog.String("err", err.Error()))
		return err
	}

	go func() {
		<-a.hs.Done()
		a.shutdown(context.WithoutCancel(ctx))
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	a.shutdown(ctx)
}

func (a *App) shutdown(ctx context.Context) {
	a.once.Do(func() { a.stopAll(ctx) })
}

func (a *App) stopAll(ctx context.Context) {
	if a.worker != nil {
		if err := a.worker.Stop(); err != nil {
			slog.Default().WarnContext(ctx, "failed to stop sync worker", slog.String("err", err.Error()))
		}
	}
	if a.db != nil {
		a.db.Close()
	}
	close(a.done)
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
