package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
)

// ScheduleTx is the set of ledger operations available inside a serialized
// slot transaction. The transaction boundary is scoped to a single
// (doctor, timestamp) pair, not a global lock.
type ScheduleTx interface {
	OccupiedExists(ctx context.Context, doctorID uuid.UUID, at time.Time, excludeID uuid.UUID) (bool, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	MoveAppointment(ctx context.Context, id uuid.UUID, newAt time.Time) (domain.Appointment, error)
}
