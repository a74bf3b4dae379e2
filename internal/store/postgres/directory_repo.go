package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	var user domain.User
	err := r.db.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepo) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	var user domain.User
	err := r.db.NewSelect().
		Model(&user).
		Where("phone = ?", phone).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, store.ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (r *UserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	m := user
	_, err := r.db.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		return domain.User{}, err
	}
	return m, nil
}

func (r *UserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	res, err := r.db.NewUpdate().
		Model(&user).
		Column("name", "verified").
		Where("id = ?", user.ID).
		Exec(ctx)
	if err != nil {
		return domain.User{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.User{}, err
	}
	if affected == 0 {
		return domain.User{}, store.ErrNotFound
	}
	return user, nil
}

type DoctorRepo struct {
	db *bun.DB
}

func NewDoctorRepo(db *bun.DB) *DoctorRepo {
	return &DoctorRepo{db: db}
}

func (r *DoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
	var doctor domain.Doctor
	err := r.db.NewSelect().
		Model(&doctor).
		Relation("MedicalField").
		Where("doctor.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Doctor{}, store.ErrNotFound
		}
		return domain.Doctor{}, err
	}
	return doctor, nil
}

func (r *DoctorRepo) ListByField(ctx context.Context, fieldID uuid.UUID) ([]domain.Doctor, error) {
	var rows []domain.Doctor
	err := r.db.NewSelect().
		Model(&rows).
		Relation("MedicalField").
		Where("doctor.medical_field_id = ?", fieldID).
		OrderExpr("doctor.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *DoctorRepo) SearchByName(ctx context.Context, query string) ([]domain.Doctor, error) {
	var rows []domain.Doctor
	err := r.db.NewSelect().
		Model(&rows).
		Relation("MedicalField").
		Where("doctor.name ILIKE ?", "%"+strings.TrimSpace(query)+"%").
		OrderExpr("doctor.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type MedicalFieldRepo struct {
	db *bun.DB
}

func NewMedicalFieldRepo(db *bun.DB) *MedicalFieldRepo {
	return &MedicalFieldRepo{db: db}
}

func (r *MedicalFieldRepo) List(ctx context.Context) ([]domain.MedicalField, error) {
	var rows []domain.MedicalField
	err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MedicalFieldRepo) SearchByName(ctx context.Context, query string) ([]domain.MedicalField, error) {
	var rows []domain.MedicalField
	err := r.db.NewSelect().
		Model(&rows).
		Where("name ILIKE ?", "%"+strings.TrimSpace(query)+"%").
		OrderExpr("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

type TimeSlotRepo struct {
	db *bun.DB
}

func NewTimeSlotRepo(db *bun.DB) *TimeSlotRepo {
	return &TimeSlotRepo{db: db}
}

func (r *TimeSlotRepo) ListByDoctor(ctx context.Context, doctorID uuid.UUID) ([]domain.TimeSlot, error) {
	var rows []domain.TimeSlot
	err := r.db.NewSelect().
		Model(&rows).
		Where("doctor_id = ?", doctorID).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
