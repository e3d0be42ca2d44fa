package entity

// Snapshot is the full record set read from storage for one analytics request.
type Snapshot struct {
	Appointments          []Appointment
	RecipientAppointments []RecipientAppointment
	Clients               []Client
	AdHocCharges          []AdHocCharge
}
