package appointments

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"medbook/backend/internal/clock"
	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

var (
	// ErrUnauthorized means the caller does not own the appointment.
	ErrUnauthorized = errors.New("not the appointment owner")
	// ErrInvalidTiming means the timestamp is not strictly in the future.
	ErrInvalidTiming = errors.New("timestamp must be in the future")
)

type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string {
	return e.msg
}

func validationError(msg string) error {
	return &ValidationError{msg: msg}
}

// View is the appointment representation returned to callers, with the
// doctor and medical field names joined in.
type View struct {
	ID               uuid.UUID                `json:"id"`
	DoctorID         uuid.UUID                `json:"doctorId"`
	DoctorName       string                   `json:"doctorName"`
	MedicalFieldID   uuid.UUID                `json:"medicalFieldId"`
	MedicalFieldName string                   `json:"medicalFieldName"`
	AppointmentAt    domain.WallTime          `json:"appointmentDate"`
	Status           domain.AppointmentStatus `json:"status"`
	Notes            string                   `json:"notes,omitempty"`
	CreatedAt        domain.WallTime          `json:"createdAt"`
}

type Service struct {
	appts   store.AppointmentRepository
	users   store.UserRepository
	doctors store.DoctorRepository
	clock   clock.Clock
}

func NewService(appts store.AppointmentRepository, users store.UserRepository, doctors store.DoctorRepository, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{appts: appts, users: users, doctors: doctors, clock: clk}
}

type CreateInput struct {
	UserID        uuid.UUID
	DoctorID      uuid.UUID
	AppointmentAt time.Time
	Notes         string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (View, error) {
	if in.UserID == uuid.Nil {
		return View{}, validationError("user_id is required")
	}
	if in.DoctorID == uuid.Nil {
		return View{}, validationError("doctor_id is required")
	}
	if in.AppointmentAt.IsZero() {
		return View{}, validationError("appointment_at is required")
	}

	if _, err := s.users.GetByID(ctx, in.UserID); err != nil {
		return View{}, err
	}
	doctor, err := s.doctors.GetByID(ctx, in.DoctorID)
	if err != nil {
		return View{}, err
	}

	now := s.clock.Now()
	if !in.AppointmentAt.After(now) {
		return View{}, ErrInvalidTiming
	}

	appt, err := s.appts.Create(ctx, domain.Appointment{
		UserID:        in.UserID,
		DoctorID:      in.DoctorID,
		AppointmentAt: in.AppointmentAt,
		Status:        domain.StatusScheduled,
		Notes:         in.Notes,
		CreatedAt:     now,
	})
	if err != nil {
		return View{}, err
	}

	return viewOf(appt, doctor), nil
}

func (s *Service) Cancel(ctx context.Context, userID, appointmentID uuid.UUID) (View, error) {
	if userID == uuid.Nil {
		return View{}, validationError("user_id is required")
	}
	if appointmentID == uuid.Nil {
		return View{}, validationError("appointment_id is required")
	}

	appt, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return View{}, err
	}
	if appt.UserID != userID {
		return View{}, ErrUnauthorized
	}

	// No status guard: cancelling an already-cancelled or completed
	// appointment overwrites the status again.
	appt, err = s.appts.UpdateStatus(ctx, appointmentID, domain.StatusCancelled)
	if err != nil {
		return View{}, err
	}

	doctor, err := s.doctors.GetByID(ctx, appt.DoctorID)
	if err != nil {
		return View{}, err
	}
	return viewOf(appt, doctor), nil
}

func (s *Service) Reschedule(ctx context.Context, userID, appointmentID uuid.UUID, newAt time.Time) (View, error) {
	if userID == uuid.Nil {
		return View{}, validationError("user_id is required")
	}
	if appointmentID == uuid.Nil {
		return View{}, validationError("appointment_id is required")
	}
	if newAt.IsZero() {
		return View{}, validationError("new_date is required")
	}

	appt, err := s.appts.GetByID(ctx, appointmentID)
	if err != nil {
		return View{}, err
	}
	if appt.UserID != userID {
		return View{}, ErrUnauthorized
	}

	if !newAt.After(s.clock.Now()) {
		return View{}, ErrInvalidTiming
	}

	// The conflict check runs against the appointment's own doctor inside
	// the store transaction.
	appt, err = s.appts.Reschedule(ctx, appointmentID, newAt)
	if err != nil {
		return View{}, err
	}

	doctor, err := s.doctors.GetByID(ctx, appt.DoctorID)
	if err != nil {
		return View{}, err
	}
	return viewOf(appt, doctor), nil
}

// List returns the user's appointments ordered ascending by timestamp.
// FilterUpcoming matches status Scheduled only: a rescheduled appointment
// does not count as upcoming even when its timestamp is in the future.
func (s *Service) List(ctx context.Context, userID uuid.UUID, filter store.ListFilter) ([]View, error) {
	if userID == uuid.Nil {
		return nil, validationError("user_id is required")
	}
	switch filter {
	case store.FilterAll, store.FilterUpcoming, store.FilterPast:
	case "":
		filter = store.FilterAll
	default:
		return nil, validationError("unknown filter")
	}

	rows, err := s.appts.ListByUser(ctx, userID, filter, s.clock.Now())
	if err != nil {
		return nil, err
	}

	doctorsByID := make(map[uuid.UUID]domain.Doctor)
	out := make([]View, 0, len(rows))
	for _, appt := range rows {
		doctor, ok := doctorsByID[appt.DoctorID]
		if !ok {
			doctor, err = s.doctors.GetByID(ctx, appt.DoctorID)
			if err != nil {
				return nil, err
			}
			doctorsByID[appt.DoctorID] = doctor
		}
		out = append(out, viewOf(appt, doctor))
	}
	return out, nil
}

func viewOf(appt domain.Appointment, doctor domain.Doctor) View {
	v := View{
		ID:            appt.ID,
		DoctorID:      doctor.ID,
		DoctorName:    doctor.Name,
		AppointmentAt: domain.WallTime{Time: appt.AppointmentAt},
		Status:        appt.Status,
		Notes:         appt.Notes,
		CreatedAt:     domain.WallTime{Time: appt.CreatedAt},
	}
	if doctor.MedicalField != nil {
		v.MedicalFieldID = doctor.MedicalField.ID
		v.MedicalFieldName = doctor.MedicalField.Name
	}
	return v
}
