package entity

import "time"

const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"

	// MetaLastSynced is the meta key holding the finish time of the last full sync.
	MetaLastSynced = "lastSynced"
)

// SyncStatus is the outcome of syncing one entity type during a sync run.
type SyncStatus struct {
	RunId         string    `db:"run_id" json:"runId"`
	Entity        string    `db:"entity" json:"entity"`
	Status        string    `db:"status" json:"status"`
	RecordsSynced int       `db:"records_synced" json:"recordsSynced"`
	ErrorMessage  string    `db:"error_message" json:"errorMessage,omitempty"`
	SyncedAt      time.Time `db:"synced_at" json:"syncedAt"`
}

// Record is an untyped TutorCruncher object kept as its raw JSON payload.
type Record struct {
	Id      int
	Payload []byte
}

// Report is a lesson report with the rating attributes extracted from its extra attributes.
type Report struct {
	Id             int
	AppointmentId  int
	SessionReport  string
	AttitudeRating string
	ProgressRating string
	Payload        []byte
}
