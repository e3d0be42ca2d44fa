package store

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jekabolt/tutorcruncher-dashboard/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestDB connects to MYSQL_TEST_DSN, e.g.
// user:pass@(localhost:3306)/tc_test?charset=utf8mb4&parseTime=true
func newTestDB(t *testing.T) *MYSQLStore {
	t.Helper()
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set - skipping mysql integration test")
	}

	db, err := New(context.Background(), Config{
		DSN:         dsn,
		Automigrate: true,
	})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	ctx := context.Background()
	_, err = db.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 0")
	require.NoError(t, err)
	for _, table := range []string{
		"appointment_rcra", "appointment_cja", "appointment_recipient", "appointment",
		"client_extra_attr", "client", "ad_hoc_charge", "service", "report",
		"tc_record", "meta", "sync_status",
	} {
		_, err = db.db.ExecContext(ctx, "DELETE FROM "+table)
		require.NoError(t, err)
	}
	_, err = db.db.ExecContext(ctx, "SET FOREIGN_KEY_CHECKS = 1")
	require.NoError(t, err)

	return db
}

func rate(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func TestAppointments(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	start := time.Date(2024, 2, 1, 16, 0, 0, 0, time.UTC)
	a := entity.Appointment{
		Id:     1,
		Start:  start,
		Finish: start.Add(90 * time.Minute),
		Status: entity.AppointmentStatusComplete,
		Service: entity.AppointmentService{
			Id:                11,
			Name:              "Maths",
			DefaultChargeRate: rate("40"),
		},
		Rcras: []entity.RecipientCharge{
			{Recipient: 5, PayingClient: 50, ChargeRate: rate("45.50")},
			{Recipient: 6, PayingClient: 50},
		},
		Cjas: []entity.ContractorJob{{Contractor: 9, PayRate: rate("25")}},
	}
	require.NoError(t, db.UpsertAppointments(ctx, []entity.Appointment{a}))

	// child rows are replaced on the next upsert
	a.Rcras = a.Rcras[:1]
	a.Status = "cancelled"
	require.NoError(t, db.UpsertAppointments(ctx, []entity.Appointment{a}))

	as, err := db.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, as, 1)
	got := as[0]
	assert.Equal(t, "cancelled", got.Status)
	assert.True(t, start.Equal(got.Start))
	assert.Equal(t, "Maths", got.Service.Name)
	require.Len(t, got.Rcras, 1)
	assert.True(t, rate("45.5").Decimal.Equal(got.Rcras[0].ChargeRate.Decimal))
	require.Len(t, got.Cjas, 1)
	assert.Equal(t, 9, got.Cjas[0].Contractor)

	ras, err := db.ListRecipientAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, ras, 1)
	assert.Equal(t, 5, ras[0].Recipient)
}

func TestClientsAndSnapshot(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertClients(ctx, []entity.Client{{
		Id:        50,
		FirstName: "Ada",
		ExtraAttrs: []entity.ExtraAttr{
			{MachineName: entity.EnquiryDateAttr, Value: "2024-01-15"},
		},
	}}))
	require.NoError(t, db.UpsertAdHocCharges(ctx, []entity.AdHocCharge{{
		Id:           3,
		DateOccurred: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		ClientCost:   rate("100"),
	}}))

	s, err := db.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, s.Clients, 1)
	v, ok := s.Clients[0].Attr(entity.EnquiryDateAttr)
	assert.True(t, ok)
	assert.Equal(t, "2024-01-15", v)
	require.Len(t, s.AdHocCharges, 1)
	assert.False(t, s.AdHocCharges[0].PayContractor.Valid)
	assert.Empty(t, s.Appointments)
}

func TestServices(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.UpsertServices(ctx, []entity.Service{
		{Id: 1, Name: "Physics", Status: entity.ServiceStatusAvailable},
		{Id: 2, Name: "Chemistry", Status: "finished"},
		{Id: 3, Name: "Biology", Status: entity.ServiceStatusAvailable, DefaultChargeRate: rate("30")},
	}))

	ss, err := db.GetAvailableServices(ctx)
	require.NoError(t, err)
	require.Len(t, ss, 2)
	assert.Equal(t, "Biology", ss[0].Name)
	assert.True(t, ss[0].DefaultChargeRate.Valid)
	assert.False(t, ss[1].DefaultChargeRate.Valid)
}

func TestSyncMeta(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	last, err := db.GetLastSynced(ctx)
	require.NoError(t, err)
	assert.Nil(t, last)

	now := time.Date(2024, 5, 1, 3, 0, 0, 0, time.UTC)
	require.NoError(t, db.SetLastSynced(ctx, now))
	last, err = db.GetLastSynced(ctx)
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.True(t, now.Equal(*last))

	for _, run := range []string{"run-1", "run-2"} {
		require.NoError(t, db.UpdateSyncStatus(ctx, entity.SyncStatus{
			RunId:  run,
			Entity: "clients",
			Status: entity.SyncStatusSuccess,
		}))
	}
	ss, err := db.GetLatestSyncStatuses(ctx)
	require.NoError(t, err)
	require.Len(t, ss, 1)
	assert.Equal(t, "run-2", ss[0].RunId)

	require.NoError(t, db.UpsertRecords(ctx, "tenders", []entity.Record{{Id: 1, Payload: []byte(`{"id":1}`)}}))
	require.NoError(t, db.UpsertReports(ctx, []entity.Report{{Id: 1, AppointmentId: 1, Payload: []byte(`{}`)}}))
}
