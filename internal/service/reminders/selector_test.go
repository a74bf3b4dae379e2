package reminders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

type fakeApptRepo struct {
	listScheduledBetweenFn func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error)
}

func (f *fakeApptRepo) Create(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	panic("not used")
}

func (f *fakeApptRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	panic("not used")
}

func (f *fakeApptRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter store.ListFilter, now time.Time) ([]domain.Appointment, error) {
	panic("not used")
}

func (f *fakeApptRepo) ListByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]domain.Appointment, error) {
	panic("not used")
}

func (f *fakeApptRepo) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
	return f.listScheduledBetweenFn(ctx, from, to)
}

func (f *fakeApptRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	panic("not used")
}

func (f *fakeApptRepo) Reschedule(ctx context.Context, id uuid.UUID, newAt time.Time) (domain.Appointment, error) {
	panic("not used")
}

type fakeUserRepo struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (domain.User, error)
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (domain.User, error) {
	panic("not used")
}

func (f *fakeUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	panic("not used")
}

func (f *fakeUserRepo) Update(ctx context.Context, user domain.User) (domain.User, error) {
	panic("not used")
}

type fakeDoctorRepo struct {
	getByIDFn func(ctx context.Context, id uuid.UUID) (domain.Doctor, error)
}

func (f *fakeDoctorRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
	return f.getByIDFn(ctx, id)
}

func (f *fakeDoctorRepo) ListByField(ctx context.Context, fieldID uuid.UUID) ([]domain.Doctor, error) {
	panic("not used")
}

func (f *fakeDoctorRepo) SearchByName(ctx context.Context, query string) ([]domain.Doctor, error) {
	panic("not used")
}

var testNow = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

func discardLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func usersReturning(phone string) *fakeUserRepo {
	return &fakeUserRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (domain.User, error) {
			return domain.User{ID: id, Phone: phone}, nil
		},
	}
}

func doctorsReturning(name string) *fakeDoctorRepo {
	return &fakeDoctorRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (domain.Doctor, error) {
			return domain.Doctor{ID: id, Name: name}, nil
		},
	}
}

func TestDueForReminder_WindowBounds(t *testing.T) {
	var gotFrom, gotTo time.Time
	appts := &fakeApptRepo{
		listScheduledBetweenFn: func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
			gotFrom, gotTo = from, to
			return nil, nil
		},
	}
	sel := NewSelector(appts, usersReturning("0500000000"), doctorsReturning("Levin"), discardLog())

	if _, err := sel.DueForReminder(context.Background(), testNow, 24*time.Hour); err != nil {
		t.Fatalf("DueForReminder error: %v", err)
	}
	if !gotFrom.Equal(testNow) || !gotTo.Equal(testNow.Add(24*time.Hour)) {
		t.Fatalf("window = [%v, %v], want [%v, %v]", gotFrom, gotTo, testNow, testNow.Add(24*time.Hour))
	}
}

func TestDueForReminder_EnrichesContactDetails(t *testing.T) {
	apptID := uuid.MustParse("00000000-0000-0000-0000-000000000004")
	at := testNow.Add(2 * time.Hour)
	appts := &fakeApptRepo{
		listScheduledBetweenFn: func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{
				{ID: apptID, UserID: uuid.New(), DoctorID: uuid.New(), AppointmentAt: at, Status: domain.StatusScheduled},
			}, nil
		},
	}
	sel := NewSelector(appts, usersReturning("0501234567"), doctorsReturning("Levin"), discardLog())

	due, err := sel.DueForReminder(context.Background(), testNow, 24*time.Hour)
	if err != nil {
		t.Fatalf("DueForReminder error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("reminders = %d, want 1", len(due))
	}
	r := due[0]
	if r.AppointmentID != apptID || r.UserPhone != "0501234567" || r.DoctorName != "Levin" || !r.AppointmentAt.Equal(at) {
		t.Fatalf("reminder = %+v", r)
	}
}

func TestDueForReminder_NonScheduledRowsDropped(t *testing.T) {
	appts := &fakeApptRepo{
		listScheduledBetweenFn: func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{
				{ID: uuid.New(), AppointmentAt: testNow.Add(time.Hour), Status: domain.StatusRescheduled},
				{ID: uuid.New(), AppointmentAt: testNow.Add(time.Hour), Status: domain.StatusCancelled},
				{ID: uuid.New(), Status: domain.StatusScheduled},
			}, nil
		},
	}
	sel := NewSelector(appts, usersReturning("0500000000"), doctorsReturning("Levin"), discardLog())

	due, err := sel.DueForReminder(context.Background(), testNow, 24*time.Hour)
	if err != nil {
		t.Fatalf("DueForReminder error: %v", err)
	}
	if len(due) != 0 {
		t.Fatalf("reminders = %d, want 0", len(due))
	}
}

func TestDueForReminder_EnrichmentFailureSkipsItem(t *testing.T) {
	goodUser := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	badUser := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	appts := &fakeApptRepo{
		listScheduledBetweenFn: func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
			return []domain.Appointment{
				{ID: uuid.New(), UserID: badUser, AppointmentAt: testNow.Add(time.Hour), Status: domain.StatusScheduled},
				{ID: uuid.New(), UserID: goodUser, AppointmentAt: testNow.Add(2 * time.Hour), Status: domain.StatusScheduled},
			}, nil
		},
	}
	users := &fakeUserRepo{
		getByIDFn: func(ctx context.Context, id uuid.UUID) (domain.User, error) {
			if id == badUser {
				return domain.User{}, store.ErrNotFound
			}
			return domain.User{ID: id, Phone: "0500000000"}, nil
		},
	}
	sel := NewSelector(appts, users, doctorsReturning("Levin"), discardLog())

	due, err := sel.DueForReminder(context.Background(), testNow, 24*time.Hour)
	if err != nil {
		t.Fatalf("DueForReminder error: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("reminders = %d, want 1", len(due))
	}
}

func TestDueForReminder_BatchErrorPropagates(t *testing.T) {
	batchErr := errors.New("db down")
	appts := &fakeApptRepo{
		listScheduledBetweenFn: func(ctx context.Context, from, to time.Time) ([]domain.Appointment, error) {
			return nil, batchErr
		},
	}
	sel := NewSelector(appts, usersReturning("0500000000"), doctorsReturning("Levin"), discardLog())

	_, err := sel.DueForReminder(context.Background(), testNow, 24*time.Hour)
	if !errors.Is(err, batchErr) {
		t.Fatalf("error = %v, want %v", err, batchErr)
	}
}
