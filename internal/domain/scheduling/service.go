package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinica/clinica/internal/platform/auth"
)

var (
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrPastDate          = errors.New("cannot book a past date")
	ErrSlotNotInTemplate = errors.New("time slot is not offered")
	ErrDoctorNotFound    = errors.New("doctor not found")
	ErrNotPermitted      = errors.New("not permitted to act on this appointment")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidStatus     = errors.New("unknown status")
)

// UserRef is the slice of account data the scheduler needs about a user.
type UserRef struct {
	ID             uuid.UUID
	Role           string
	Name           string
	Specialization string
}

// UserDirectory resolves user ids to display data. The identity domain
// provides the implementation; an adapter wires it in at startup.
type UserDirectory interface {
	GetUser(ctx context.Context, id uuid.UUID) (*UserRef, error)
}

// Actor identifies who is performing a lifecycle operation. It always comes
// from the verified bearer token, never from request fields.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// Service resolves availability, books slots, and drives the lifecycle.
type Service struct {
	repo     AppointmentRepository
	users    UserDirectory
	template *SlotTemplate
	now      func() time.Time
}

func NewService(repo AppointmentRepository, users UserDirectory, template *SlotTemplate) *Service {
	return &Service{repo: repo, users: users, template: template, now: time.Now}
}

// Availability returns the doctor's free slots for a date: the template
// minus slots held by pending or confirmed appointments, in template order.
// Past dates resolve to an empty list.
func (s *Service) Availability(ctx context.Context, doctorID uuid.UUID, date string) ([]string, error) {
	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := s.doctor(ctx, doctorID); err != nil {
		return nil, err
	}
	if day.Before(s.today()) {
		return []string{}, nil
	}

	booked, err := s.repo.ActiveSlots(ctx, doctorID, day)
	if err != nil {
		return nil, fmt.Errorf("load booked slots: %w", err)
	}
	taken := make(map[string]bool, len(booked))
	for _, slot := range booked {
		taken[slot] = true
	}

	free := []string{}
	for _, slot := range s.template.Slots() {
		if !taken[slot] {
			free = append(free, slot)
		}
	}
	return free, nil
}

// BookInput carries a booking request.
type BookInput struct {
	DoctorID uuid.UUID `json:"doctor_id"`
	Date     string    `json:"visit_date"`
	TimeSlot string    `json:"time_slot"`
	Reason   string    `json:"reason"`
}

// Book reserves a slot for the patient. Exactly one of several concurrent
// bookings for the same (doctor, date, slot) succeeds; the others receive
// ErrSlotTaken. The new appointment starts out pending.
func (s *Service) Book(ctx context.Context, patientID uuid.UUID, in BookInput) (*Appointment, error) {
	day, err := time.Parse(dateLayout, in.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if day.Before(s.today()) {
		return nil, ErrPastDate
	}
	if !s.template.Contains(in.TimeSlot) {
		return nil, ErrSlotNotInTemplate
	}
	if _, err := s.doctor(ctx, in.DoctorID); err != nil {
		return nil, err
	}

	a := &Appointment{
		PatientID: patientID,
		DoctorID:  in.DoctorID,
		VisitDate: day,
		TimeSlot:  in.TimeSlot,
		Status:    StatusPending,
		Reason:    in.Reason,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Get returns a single appointment, visible only to its patient or doctor.
func (s *Service) Get(ctx context.Context, actor Actor, id uuid.UUID) (*Appointment, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.PatientID != actor.ID && a.DoctorID != actor.ID {
		return nil, ErrNotPermitted
	}
	return a, nil
}

// Transition moves an appointment to a new status, enforcing the guard
// table: doctors confirm or reject pending appointments they own, patients
// cancel their own pending appointments. The update is a compare-and-swap,
// so a raced duplicate of an applied transition fails.
func (s *Service) Transition(ctx context.Context, actor Actor, id uuid.UUID, to Status) (*Appointment, error) {
	if !to.Valid() {
		return nil, ErrInvalidStatus
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	role, ok := transitions[a.Status][to]
	if !ok {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.Status, to)
	}
	if actor.Role != role {
		return nil, ErrNotPermitted
	}
	switch role {
	case auth.RoleDoctor:
		if a.DoctorID != actor.ID {
			return nil, ErrNotPermitted
		}
	case auth.RolePatient:
		if a.PatientID != actor.ID {
			return nil, ErrNotPermitted
		}
	}

	if err := s.repo.UpdateStatus(ctx, id, a.Status, to); err != nil {
		if errors.Is(err, ErrStatusChanged) {
			return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, a.Status, to)
		}
		return nil, err
	}
	a.Status = to
	return a, nil
}

// Cancel is the patient-facing soft delete: a transition to cancelled. The
// row stays in storage and the slot frees up.
func (s *Service) Cancel(ctx context.Context, actor Actor, id uuid.UUID) (*Appointment, error) {
	return s.Transition(ctx, actor, id, StatusCancelled)
}

// MyAppointments lists the actor's non-cancelled appointments enriched with
// counterpart display data.
func (s *Service) MyAppointments(ctx context.Context, actor Actor) ([]*View, error) {
	var (
		items []*Appointment
		err   error
	)
	switch actor.Role {
	case auth.RoleDoctor:
		items, err = s.repo.ListByDoctor(ctx, actor.ID)
	default:
		items, err = s.repo.ListByPatient(ctx, actor.ID)
	}
	if err != nil {
		return nil, err
	}

	views := []*View{}
	cache := make(map[uuid.UUID]*UserRef)
	for _, a := range items {
		v := &View{
			ID:        a.ID,
			PatientID: a.PatientID,
			DoctorID:  a.DoctorID,
			VisitDate: a.VisitDate.Format(dateLayout),
			TimeSlot:  a.TimeSlot,
			Status:    a.Status,
			Reason:    a.Reason,
			CreatedAt: a.CreatedAt,
		}
		if doc := s.lookup(ctx, cache, a.DoctorID); doc != nil {
			v.DoctorName = doc.Name
			v.DoctorSpecialization = doc.Specialization
		}
		if pat := s.lookup(ctx, cache, a.PatientID); pat != nil {
			v.PatientName = pat.Name
		}
		views = append(views, v)
	}
	return views, nil
}

// lookup resolves a user through the directory, memoizing per call. A failed
// lookup leaves the enrichment fields empty rather than failing the list.
func (s *Service) lookup(ctx context.Context, cache map[uuid.UUID]*UserRef, id uuid.UUID) *UserRef {
	if u, ok := cache[id]; ok {
		return u
	}
	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		u = nil
	}
	cache[id] = u
	return u
}

func (s *Service) doctor(ctx context.Context, id uuid.UUID) (*UserRef, error) {
	u, err := s.users.GetUser(ctx, id)
	if err != nil || u.Role != auth.RoleDoctor {
		return nil, ErrDoctorNotFound
	}
	return u, nil
}

func (s *Service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
