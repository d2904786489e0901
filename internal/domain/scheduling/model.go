// Package scheduling implements doctor availability resolution, race-free
// slot booking, and the appointment lifecycle.
package scheduling

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/platform/auth"
)

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Active reports whether the status holds the slot. Only active appointments
// block a (doctor, date, slot) combination.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// transitions is the lifecycle guard table: for each current status, the
// reachable next statuses and the role allowed to perform the move.
// Confirmed, rejected and cancelled are terminal.
var transitions = map[Status]map[Status]string{
	StatusPending: {
		StatusConfirmed: auth.RoleDoctor,
		StatusRejected:  auth.RoleDoctor,
		StatusCancelled: auth.RolePatient,
	},
}

// Appointment is a booked slot between a patient and a doctor.
type Appointment struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	VisitDate time.Time `db:"visit_date" json:"-"`
	TimeSlot  string    `db:"time_slot" json:"time_slot"`
	Status    Status    `db:"status" json:"status"`
	Reason    string    `db:"reason" json:"reason,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// View is an appointment enriched with counterpart display data, as returned
// by the API.
type View struct {
	ID                   uuid.UUID `json:"id"`
	PatientID            uuid.UUID `json:"patient_id"`
	DoctorID             uuid.UUID `json:"doctor_id"`
	VisitDate            string    `json:"visit_date"`
	TimeSlot             string    `json:"time_slot"`
	Status               Status    `json:"status"`
	Reason               string    `json:"reason,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	PatientName          string    `json:"patient_name,omitempty"`
	DoctorName           string    `json:"doctor_name,omitempty"`
	DoctorSpecialization string    `json:"doctor_specialization,omitempty"`
}
