package reminders

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

// Reminder is one appointment due for a reminder, enriched with the contact
// details a notifier needs.
type Reminder struct {
	AppointmentID uuid.UUID
	UserPhone     string
	DoctorName    string
	AppointmentAt time.Time
}

// Selector picks appointments inside the look-ahead window. It only reads;
// the trigger mechanism lives in Runner.
type Selector struct {
	appts   store.AppointmentRepository
	users   store.UserRepository
	doctors store.DoctorRepository
	log     *slog.Logger
}

func NewSelector(appts store.AppointmentRepository, users store.UserRepository, doctors store.DoctorRepository, log *slog.Logger) *Selector {
	if log == nil {
		log = slog.Default()
	}
	return &Selector{
		appts:   appts,
		users:   users,
		doctors: doctors,
		log:     log.With(slog.String("component", "reminders.selector")),
	}
}

// DueForReminder selects appointments with status Scheduled whose timestamp
// lies strictly inside (now, now+lookahead). Rescheduled appointments are
// excluded, mirroring the upcoming filter. A failed enrichment skips that
// one appointment and logs it; the rest of the batch continues.
func (s *Selector) DueForReminder(ctx context.Context, now time.Time, lookahead time.Duration) ([]Reminder, error) {
	rows, err := s.appts.ListScheduledBetween(ctx, now, now.Add(lookahead))
	if err != nil {
		return nil, err
	}

	out := make([]Reminder, 0, len(rows))
	for _, appt := range rows {
		if appt.Status != domain.StatusScheduled || appt.AppointmentAt.IsZero() {
			continue
		}

		user, err := s.users.GetByID(ctx, appt.UserID)
		if err != nil {
			s.log.Warn("skipping reminder, user lookup failed",
				slog.String("appointment_id", appt.ID.String()),
				slog.Any("err", err),
			)
			continue
		}
		doctor, err := s.doctors.GetByID(ctx, appt.DoctorID)
		if err != nil {
			s.log.Warn("skipping reminder, doctor lookup failed",
				slog.String("appointment_id", appt.ID.String()),
				slog.Any("err", err),
			)
			continue
		}

		out = append(out, Reminder{
			AppointmentID: appt.ID,
			UserPhone:     user.Phone,
			DoctorName:    doctor.Name,
			AppointmentAt: appt.AppointmentAt,
		})
	}
	return out, nil
}
