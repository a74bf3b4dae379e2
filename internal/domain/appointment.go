package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// AppointmentStatus is the lifecycle state of an appointment. Scheduled and
// Rescheduled occupy the doctor's slot; Cancelled and Completed do not block
// rebooking.
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "SCHEDULED"
	StatusCancelled   AppointmentStatus = "CANCELLED"
	StatusCompleted   AppointmentStatus = "COMPLETED"
	StatusRescheduled AppointmentStatus = "RESCHEDULED"
)

// OccupyingStatuses are the states that hold a (doctor, timestamp) slot.
var OccupyingStatuses = []AppointmentStatus{StatusScheduled, StatusRescheduled}

func (s AppointmentStatus) Occupying() bool {
	return s == StatusScheduled || s == StatusRescheduled
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID            uuid.UUID         `bun:"id,pk,type:uuid"`
	UserID        uuid.UUID         `bun:"user_id,notnull,type:uuid"`
	DoctorID      uuid.UUID         `bun:"doctor_id,notnull,type:uuid"`
	AppointmentAt time.Time         `bun:"appointment_at,notnull"`
	Status        AppointmentStatus `bun:"status,notnull"`
	Notes         string            `bun:"notes"`
	CreatedAt     time.Time         `bun:"created_at,notnull"`
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = Naive(time.Now())
		}
	}
	return nil
}
