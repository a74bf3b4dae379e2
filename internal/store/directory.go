package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	GetByPhone(ctx context.Context, phone string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, user domain.User) (domain.User, error)
}

type DoctorRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error)
	ListByField(ctx context.Context, fieldID uuid.UUID) ([]domain.Doctor, error)
	SearchByName(ctx context.Context, query string) ([]domain.Doctor, error)
}

type MedicalFieldRepository interface {
	List(ctx context.Context) ([]domain.MedicalField, error)
	SearchByName(ctx context.Context, query string) ([]domain.MedicalField, error)
}

// TimeSlotRepository reads a doctor's slot template. The template is mutated
// elsewhere; the engine only reads it.
type TimeSlotRepository interface {
	ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.TimeSlot, error)
}

type OTPRepository interface {
	Save(ctx context.Context, code domain.OTPCode) (domain.OTPCode, error)
	Consume(ctx context.Context, phone, code string, now time.Time) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) error
}
