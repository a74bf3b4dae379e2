package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

// appointments_occupied_slot_key is a partial unique index on
// (doctor_id, appointment_at) WHERE status IN ('SCHEDULED','RESCHEDULED').
// It backs the in-transaction conflict check against races that slip past
// the advisory lock (e.g. a second process using a different lock key).
const occupiedSlotConstraint = "appointments_occupied_slot_key"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type scheduleTx struct {
	tx bun.Tx
}

func (r *AppointmentRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	var out domain.Appointment
	err := r.InSlotTransaction(ctx, appt.DoctorID, appt.AppointmentAt, func(ctx context.Context, tx store.ScheduleTx) error {
		a, err := createInTx(ctx, tx, appt)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// createInTx assumes the caller holds the slot lock for (doctor, timestamp).
func createInTx(ctx context.Context, tx store.ScheduleTx, appt domain.Appointment) (domain.Appointment, error) {
	taken, err := tx.OccupiedExists(ctx, appt.DoctorID, appt.AppointmentAt, uuid.Nil)
	if err != nil {
		return domain.Appointment{}, err
	}
	if taken {
		return domain.Appointment{}, store.ErrConflict
	}
	return tx.InsertAppointment(ctx, appt)
}

func (r *AppointmentRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.db.NewSelect().
		Model(&appt).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (r *AppointmentRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter store.ListFilter, now time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	q := r.db.NewSelect().
		Model(&rows).
		Where("user_id = ?", userID)

	switch filter {
	case store.FilterUpcoming:
		q = q.Where("appointment_at > ?", now).
			Where("status = ?", domain.StatusScheduled)
	case store.FilterPast:
		q = q.Where("appointment_at < ?", now)
	}

	err := q.OrderExpr("appointment_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("doctor_id = ?", doctorID).
		Where("appointment_at >= ?", from).
		Where("appointment_at <= ?", to).
		OrderExpr("appointment_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	var rows []domain.Appointment
	err := r.db.NewSelect().
		Model(&rows).
		Where("status = ?", domain.StatusScheduled).
		Where("appointment_at > ?", from).
		Where("appointment_at < ?", to).
		OrderExpr("appointment_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	res, err := r.db.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("status = ?", status).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *AppointmentRepo) Reschedule(ctx context.Context, id uuid.UUID, newAt time.Time) (domain.Appointment, error) {
	appt, err := r.GetByID(ctx, id)
	if err != nil {
		return domain.Appointment{}, err
	}

	var out domain.Appointment
	err = r.InSlotTransaction(ctx, appt.DoctorID, newAt, func(ctx context.Context, tx store.ScheduleTx) error {
		a, err := rescheduleInTx(ctx, tx, appt.DoctorID, id, newAt)
		if err != nil {
			return err
		}
		out = a
		return nil
	})
	if err != nil {
		return domain.Appointment{}, err
	}
	return out, nil
}

// rescheduleInTx excludes the appointment itself from the occupancy check so
// moving within the same slot is not a self-conflict.
func rescheduleInTx(ctx context.Context, tx store.ScheduleTx, doctorID, id uuid.UUID, newAt time.Time) (domain.Appointment, error) {
	taken, err := tx.OccupiedExists(ctx, doctorID, newAt, id)
	if err != nil {
		return domain.Appointment{}, err
	}
	if taken {
		return domain.Appointment{}, store.ErrConflict
	}
	return tx.MoveAppointment(ctx, id, newAt)
}

// InSlotTransaction serializes writers targeting the same doctor slot. The
// advisory lock key is derived from (doctorID, timestamp), so bookings for
// different slots do not contend.
func (r *AppointmentRepo) InSlotTransaction(ctx context.Context, doctorID uuid.UUID, at time.Time, fn func(ctx context.Context, tx store.ScheduleTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockDoctorSlot(ctx, tx, doctorID, at); err != nil {
			return err
		}
		return fn(ctx, scheduleTx{tx: tx})
	})
}

func lockDoctorSlot(ctx context.Context, tx bun.Tx, doctorID uuid.UUID, at time.Time) error {
	key := doctorID.String() + "@" + domain.FormatWallTime(at)
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", key).Exec(ctx)
	return err
}

func (r scheduleTx) OccupiedExists(ctx context.Context, doctorID uuid.UUID, at time.Time, excludeID uuid.UUID) (bool, error) {
	q := r.tx.NewSelect().
		Model((*domain.Appointment)(nil)).
		Where("doctor_id = ?", doctorID).
		Where("appointment_at = ?", at).
		Where("status IN (?)", bun.In(domain.OccupyingStatuses))
	if excludeID != uuid.Nil {
		q = q.Where("id != ?", excludeID)
	}
	return q.Exists(ctx)
}

func (r scheduleTx) GetAppointment(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.tx.NewSelect().
		Model(&appt).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (r scheduleTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	_, err := r.tx.NewInsert().Model(&m).Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == occupiedSlotConstraint {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}
	return m, nil
}

func (r scheduleTx) MoveAppointment(ctx context.Context, id uuid.UUID, newAt time.Time) (domain.Appointment, error) {
	res, err := r.tx.NewUpdate().
		Model((*domain.Appointment)(nil)).
		Set("appointment_at = ?", newAt).
		Set("status = ?", domain.StatusRescheduled).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == occupiedSlotConstraint {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Appointment{}, err
	}
	if affected == 0 {
		return domain.Appointment{}, store.ErrNotFound
	}
	return r.GetAppointment(ctx, id)
}
