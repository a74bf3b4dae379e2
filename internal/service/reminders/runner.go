package reminders

import (
	"context"
	"log/slog"
	"time"

	"medbook/backend/internal/clock"
)

// Notifier delivers one reminder. Delivery transports are out of scope; the
// shipped implementation logs.
type Notifier interface {
	Notify(ctx context.Context, r Reminder) error
}

// LogNotifier writes each reminder to the log.
type LogNotifier struct {
	Log *slog.Logger
}

func (n LogNotifier) Notify(ctx context.Context, r Reminder) error {
	log := n.Log
	if log == nil {
		log = slog.Default()
	}
	log.Info("appointment reminder",
		slog.String("appointment_id", r.AppointmentID.String()),
		slog.String("phone", r.UserPhone),
		slog.String("doctor", r.DoctorName),
		slog.Time("appointment_at", r.AppointmentAt),
	)
	return nil
}

// Runner fires the selector on a fixed interval after an initial delay.
type Runner struct {
	selector     *Selector
	notifier     Notifier
	clock        clock.Clock
	interval     time.Duration
	initialDelay time.Duration
	lookahead    time.Duration
	log          *slog.Logger
}

func NewRunner(selector *Selector, notifier Notifier, clk clock.Clock, interval, initialDelay, lookahead time.Duration, log *slog.Logger) *Runner {
	if clk == nil {
		clk = clock.System{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Runner{
		selector:     selector,
		notifier:     notifier,
		clock:        clk,
		interval:     interval,
		initialDelay: initialDelay,
		lookahead:    lookahead,
		log:          log.With(slog.String("component", "reminders.runner")),
	}
}

// Run blocks until ctx is cancelled. A failed batch is logged and the next
// tick proceeds normally.
func (r *Runner) Run(ctx context.Context) {
	delay := time.NewTimer(r.initialDelay)
	defer delay.Stop()

	select {
	case <-ctx.Done():
		return
	case <-delay.C:
	}

	r.tick(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Runner) tick(ctx context.Context) {
	due, err := r.selector.DueForReminder(ctx, r.clock.Now(), r.lookahead)
	if err != nil {
		r.log.Error("reminder batch failed", slog.Any("err", err))
		return
	}
	if len(due) == 0 {
		r.log.Debug("no reminders due")
		return
	}

	r.log.Info("sending reminders", slog.Int("count", len(due)))
	for _, reminder := range due {
		if err := r.notifier.Notify(ctx, reminder); err != nil {
			r.log.Warn("reminder delivery failed",
				slog.String("appointment_id", reminder.AppointmentID.String()),
				slog.Any("err", err),
			)
		}
	}
}
