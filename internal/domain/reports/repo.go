package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrReportNotFound = errors.New("report not found")

// ReportRepository persists report rows. File content lives in the
// blobstore, referenced by blob id.
type ReportRepository interface {
	Create(ctx context.Context, r *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error)
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Report, error)
	ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Report, error)
}
