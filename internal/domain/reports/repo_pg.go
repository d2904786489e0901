package reports

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type reportRepoPG struct{ pool *pgxpool.Pool }

func NewReportRepoPG(pool *pgxpool.Pool) ReportRepository { return &reportRepoPG{pool: pool} }

const reportCols = `id, appointment_id, patient_id, doctor_id, exam_type, exam_date,
	notes, blob_id, file_name, content_type, created_at`

func scanReport(row pgx.Row) (*Report, error) {
	var r Report
	err := row.Scan(&r.ID, &r.AppointmentID, &r.PatientID, &r.DoctorID, &r.ExamType,
		&r.ExamDate, &r.Notes, &r.BlobID, &r.FileName, &r.ContentType, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrReportNotFound
	}
	return &r, err
}

func (r *reportRepoPG) Create(ctx context.Context, rep *Report) error {
	rep.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO report (id, appointment_id, patient_id, doctor_id, exam_type,
			exam_date, notes, blob_id, file_name, content_type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		rep.ID, rep.AppointmentID, rep.PatientID, rep.DoctorID, rep.ExamType,
		rep.ExamDate, rep.Notes, rep.BlobID, rep.FileName, rep.ContentType)
	return err
}

func (r *reportRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	return scanReport(r.pool.QueryRow(ctx, `SELECT `+reportCols+` FROM report WHERE id = $1`, id))
}

func (r *reportRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Report, error) {
	return r.list(ctx, `patient_id`, patientID)
}

func (r *reportRepoPG) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*Report, error) {
	return r.list(ctx, `doctor_id`, doctorID)
}

func (r *reportRepoPG) ListByAppointment(ctx context.Context, appointmentID uuid.UUID) ([]*Report, error) {
	return r.list(ctx, `appointment_id`, appointmentID)
}

func (r *reportRepoPG) list(ctx context.Context, col string, id uuid.UUID) ([]*Report, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+reportCols+` FROM report
		WHERE `+col+` = $1
		ORDER BY created_at DESC`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rep)
	}
	return items, rows.Err()
}
