package reports

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/platform/auth"
	"github.com/clinica/clinica/internal/platform/blobstore"
)

var (
	ErrNotPermitted        = errors.New("not permitted to access this report")
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrAppointmentNotReady = errors.New("reports can only be attached to confirmed appointments")
	ErrMissingExamType     = errors.New("exam type is required")
	ErrInvalidExamDate     = errors.New("exam date must be YYYY-MM-DD")
)

// AppointmentRef is the slice of appointment data the coordinator needs.
type AppointmentRef struct {
	ID        uuid.UUID
	PatientID uuid.UUID
	DoctorID  uuid.UUID
	Status    string
}

// AppointmentDirectory resolves appointment ids. The scheduling domain
// provides the implementation; an adapter wires it in at startup.
type AppointmentDirectory interface {
	GetAppointment(ctx context.Context, id uuid.UUID) (*AppointmentRef, error)
}

// UserDirectory resolves user display names for report views.
type UserDirectory interface {
	UserName(ctx context.Context, id uuid.UUID) (string, error)
}

// Actor identifies who is performing a report operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Service coordinates report attachment and retrieval.
type Service struct {
	repo         ReportRepository
	appointments AppointmentDirectory
	users        UserDirectory
	blobs        blobstore.BlobStore
}

func NewService(repo ReportRepository, appointments AppointmentDirectory, users UserDirectory, blobs blobstore.BlobStore) *Service {
	return &Service{repo: repo, appointments: appointments, users: users, blobs: blobs}
}

// AttachInput carries a report upload.
type AttachInput struct {
	AppointmentID uuid.UUID
	ExamType      string
	ExamDate      string
	Notes         string
	FileName      string
	ContentType   string
	Content       io.Reader
}

// Attach stores the file and creates the report row. Only the appointment's
// doctor may attach, and only while the appointment is confirmed.
func (s *Service) Attach(ctx context.Context, actor Actor, in AttachInput) (*Report, error) {
	if strings.TrimSpace(in.ExamType) == "" {
		return nil, ErrMissingExamType
	}
	if _, err := time.Parse("2006-01-02", in.ExamDate); err != nil {
		return nil, ErrInvalidExamDate
	}

	appt, err := s.appointments.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	if actor.Role != auth.RoleDoctor || appt.DoctorID != actor.ID {
		return nil, ErrNotPermitted
	}
	if appt.Status != "confirmed" {
		return nil, ErrAppointmentNotReady
	}

	blob, err := s.blobs.Upload(ctx, blobstore.BlobMetadata{
		FileName:    in.FileName,
		ContentType: in.ContentType,
	}, in.Content)
	if err != nil {
		return nil, err
	}

	var notes *string
	if n := strings.TrimSpace(in.Notes); n != "" {
		notes = &n
	}
	rep := &Report{
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		ExamType:      strings.TrimSpace(in.ExamType),
		ExamDate:      in.ExamDate,
		Notes:         notes,
		BlobID:        blob.ID,
		FileName:      blob.FileName,
		ContentType:   blob.ContentType,
	}
	if err := s.repo.Create(ctx, rep); err != nil {
		// Orphaned blobs are removed so the store stays consistent with the rows.
		_ = s.blobs.Delete(ctx, blob.ID)
		return nil, fmt.Errorf("create report: %w", err)
	}
	return rep, nil
}

// Download returns the report file for the owning doctor or the appointment
// patient. The caller must close the reader.
func (s *Service) Download(ctx context.Context, actor Actor, id uuid.UUID) (io.ReadCloser, *Report, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if rep.PatientID != actor.ID && rep.DoctorID != actor.ID {
		return nil, nil, ErrNotPermitted
	}

	rc, _, err := s.blobs.Download(ctx, rep.BlobID)
	if err != nil {
		return nil, nil, fmt.Errorf("load report file: %w", err)
	}
	return rc, rep, nil
}

// Get returns report metadata for the owning doctor or patient.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Report, error) {
	rep, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rep.PatientID != actor.ID && rep.DoctorID != actor.ID {
		return nil, ErrNotPermitted
	}
	return rep, nil
}

// My lists the actor's reports, newest first, with doctor names attached.
func (s *Service) My(ctx context.Context, actor Actor) ([]*View, error) {
	var (
		items []*Report
		err   error
	)
	if actor.Role == auth.RoleDoctor {
		items, err = s.repo.ListByDoctor(ctx, actor.ID)
	} else {
		items, err = s.repo.ListByPatient(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	views := []*View{}
	names := make(map[uuid.UUID]string)
	for _, rep := range items {
		name, ok := names[rep.DoctorID]
		if !ok {
			name, _ = s.users.UserName(ctx, rep.DoctorID)
			names[rep.DoctorID] = name
		}
		views = append(views, &View{Report: rep, DoctorName: name})
	}
	return views, nil
}

// ByAppointment lists an appointment's reports for its doctor or patient.
func (s *Service) ByAppointment(ctx context.Context, actor Actor, appointmentID uuid.UUID) ([]*Report, error) {
	appt, err := s.appointments.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, ErrAppointmentNotFound
	}
	if appt.PatientID != actor.ID && appt.DoctorID != actor.ID {
		return nil, ErrNotPermitted
	}
	items, err := s.repo.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Report{}
	}
	return items, nil
}
