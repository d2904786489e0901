// Package reports attaches exam report files to confirmed appointments and
// controls who may retrieve them.
package reports

import (
	"time"

	"github.com/google/uuid"
)

// Report is an exam report attached to an appointment. Reports are immutable
// once created; an appointment can carry several.
type Report struct {
	ID            uuid.UUID `db:"id" json:"id"`
	AppointmentID uuid.UUID `db:"appointment_id" json:"appointment_id"`
	PatientID     uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID      uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ExamType      string    `db:"exam_type" json:"exam_type"`
	ExamDate      string    `db:"exam_date" json:"exam_date"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	BlobID        string    `db:"blob_id" json:"-"`
	FileName      string    `db:"file_name" json:"file_name"`
	ContentType   string    `db:"content_type" json:"content_type"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// View is a report enriched with the doctor's display name.
type View struct {
	*Report
	DoctorName string `json:"doctor_name,omitempty"`
}
