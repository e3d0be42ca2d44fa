package dependency

import (
	"context"
	"database/sql"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/jmoiron/sqlx"
)

type (
	ContextStore interface {
		Tx(ctx context.Context, fn func(ctx context.Context, store Repository) error) error
	}
	Appointments interface {
		// UpsertAppointments stores appointments with their charge rates, contractor jobs
		// and recipient links, replacing any previous rows of the same appointment.
		UpsertAppointments(ctx context.Context, as []entity.Appointment) error
		ListAppointments(ctx context.Context) ([]entity.Appointment, error)
		ListRecipientAppointments(ctx context.Context) ([]entity.RecipientAppointment, error)
	}
	Clients interface {
		UpsertClients(ctx context.Context, cs []entity.Client) error
		ListClients(ctx context.Context) ([]entity.Client, error)
	}
	AdHocCharges interface {
		UpsertAdHocCharges(ctx context.Context, cs []entity.AdHocCharge) error
		ListAdHocCharges(ctx context.Context) ([]entity.AdHocCharge, error)
	}
	Services interface {
		UpsertServices(ctx context.Context, ss []entity.Service) error
		// GetAvailableServices returns services with status available ordered by name.
		GetAvailableServices(ctx context.Context) ([]entity.Service, error)
	}
	Sync interface {
		UpsertReports(ctx context.Context, rs []entity.Report) error
		// UpsertRecords stores raw payloads of entities the dashboard keeps untyped.
		UpsertRecords(ctx context.Context, kind string, rs []entity.Record) error
		UpdateSyncStatus(ctx context.Context, s entity.SyncStatus) error
		// GetLatestSyncStatuses returns the statuses of the most recent sync run.
		GetLatestSyncStatuses(ctx context.Context) ([]entity.SyncStatus, error)
		SetLastSynced(ctx context.Context, t time.Time) error
		// GetLastSynced returns nil when no sync has completed yet.
		GetLastSynced(ctx context.Context) (*time.Time, error)
	}

	// Dashboard is the read side used by the HTTP API.
	Dashboard interface {
		// Snapshot loads every record the analytics calculators need.
		Snapshot(ctx context.Context) (*entity.Snapshot, error)
		GetAvailableServices(ctx context.Context) ([]entity.Service, error)
		GetLastSynced(ctx context.Context) (*time.Time, error)
		GetLatestSyncStatuses(ctx context.Context) ([]entity.SyncStatus, error)
		Ping(ctx context.Context) error
	}

	Repository interface {
		Appointments
		Clients
		AdHocCharges
		Services
		Sync
		Snapshot(ctx context.Context) (*entity.Snapshot, error)
		Ping(ctx context.Context) error
		Tx(ctx context.Context, f func(context.Context, Repository) error) error
		TxBegin(ctx context.Context) (Repository, error)
		TxCommit(ctx context.Context) error
		TxRollback(ctx context.Context) error
		Now() time.Time
		InTx() bool
		Close()
		IsErrorRepeat(err error) bool
		DB() DB
	}

	// DB represents database interface.
	DB interface {
		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)

		// sqlx methods
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
		NamedQuery(query string, arg interface{}) (*sqlx.Rows, error)
		PrepareNamedContext(ctx context.Context, query string) (*sqlx.NamedStmt, error)
		PreparexContext(ctx context.Context, query string) (*sqlx.Stmt, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	Mailer interface {
		// RenderOpportunities renders the open jobs email as HTML.
		RenderOpportunities(services []entity.Service) (string, error)
		// SendOpportunities mails the list of open jobs to the configured recipients.
		SendOpportunities(ctx context.Context, services []entity.Service) error
	}

	Syncer interface {
		// Trigger starts a sync in the background.
		Trigger() error
	}
)
