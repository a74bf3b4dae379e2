package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
)

// ListFilter narrows a user's appointment listing.
type ListFilter string

const (
	FilterAll      ListFilter = "all"
	FilterUpcoming ListFilter = "upcoming"
	FilterPast     ListFilter = "past"
)

// AppointmentRepository is the appointment ledger. Create and Reschedule are
// conflict-checked: they fail with ErrConflict when another appointment in an
// occupying status already holds the same (doctor, timestamp) pair, and the
// check is atomic with the write.
type AppointmentRepository interface {
	Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, filter ListFilter, now time.Time) ([]domain.Appointment, error)
	ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error)
	ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, newAt time.Time) (domain.Appointment, error)
}
