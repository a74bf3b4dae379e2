package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type MedicalField struct {
	bun.BaseModel `bun:"table:medical_fields"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Description string    `bun:"description"`
}

type Doctor struct {
	bun.BaseModel `bun:"table:doctors"`

	ID              uuid.UUID `bun:"id,pk,type:uuid"`
	Name            string    `bun:"name,notnull"`
	MedicalFieldID  uuid.UUID `bun:"medical_field_id,notnull,type:uuid"`
	ExperienceYears int       `bun:"experience_years"`

	MedicalField *MedicalField `bun:"rel:belongs-to,join:medical_field_id=id"`
}

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Phone     string    `bun:"phone,notnull,unique"`
	Name      string    `bun:"name"`
	Verified  bool      `bun:"verified,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull"`
}

func (u *User) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if u.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			u.ID = id
		}
		if u.CreatedAt.IsZero() {
			u.CreatedAt = Naive(time.Now())
		}
	}
	return nil
}

// TimeSlot is a recurring daily offering in a doctor's template, not a
// calendar instance. Read-only to the scheduling engine.
type TimeSlot struct {
	bun.BaseModel `bun:"table:time_slots"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	DoctorID    uuid.UUID `bun:"doctor_id,notnull,type:uuid"`
	StartTime   TimeOfDay `bun:"start_time,notnull"`
	EndTime     TimeOfDay `bun:"end_time,notnull"`
	IsAvailable bool      `bun:"is_available,notnull"`
}

type OTPCode struct {
	bun.BaseModel `bun:"table:otp_codes"`

	ID        uuid.UUID `bun:"id,pk,type:uuid"`
	Phone     string    `bun:"phone,notnull"`
	Code      string    `bun:"code,notnull"`
	ExpiresAt time.Time `bun:"expires_at,notnull"`
}

func (c *OTPCode) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	if _, ok := query.(*bun.InsertQuery); ok {
		if c.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			c.ID = id
		}
	}
	return nil
}
