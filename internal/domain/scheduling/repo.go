package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSlotTaken           = errors.New("slot already booked")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrStatusChanged       = errors.New("appointment status changed concurrently")
)

// AppointmentRepository persists appointments. Create must guarantee at most
// one active appointment per (doctor, date, slot) and return ErrSlotTaken to
// the losers of a race.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// ListByPatient and ListByDoctor return the user's appointments newest
	// first, excluding cancelled ones.
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Appointment, error)

	// ActiveSlots returns the time slots held by pending or confirmed
	// appointments of the doctor on the given date.
	ActiveSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)

	// UpdateStatus moves the appointment from one status to another as a
	// compare-and-swap. It returns ErrStatusChanged when the row was not in
	// the expected from status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}
