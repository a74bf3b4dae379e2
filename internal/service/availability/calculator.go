package availability

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"medbook/backend/internal/domain"
	"medbook/backend/internal/store"
)

// Calculator derives a doctor's open slots for a date: available template
// start times minus the times-of-day already held by occupying appointments.
// It never mutates anything.
type Calculator struct {
	slots store.TimeSlotRepository
	appts store.AppointmentRepository
}

func NewCalculator(slots store.TimeSlotRepository, appts store.AppointmentRepository) *Calculator {
	return &Calculator{slots: slots, appts: appts}
}

// AvailableSlots returns the open times-of-day for (doctor, date), ascending
// and deduplicated. A doctor with no templates yields an empty slice.
func (c *Calculator) AvailableSlots(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]domain.TimeOfDay, error) {
	templates, err := c.slots.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}

	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	endOfDay := time.Date(date.Year(), date.Month(), date.Day(), 23, 59, 59, 0, time.UTC)
	booked, err := c.appts.ListByDoctorBetween(ctx, doctorID, startOfDay, endOfDay)
	if err != nil {
		return nil, err
	}

	occupied := make(map[int]struct{}, len(booked))
	for _, appt := range booked {
		if !appt.Status.Occupying() {
			continue
		}
		occupied[domain.TimeOfDayOf(appt.AppointmentAt).Seconds()] = struct{}{}
	}

	seen := make(map[int]struct{}, len(templates))
	out := make([]domain.TimeOfDay, 0, len(templates))
	for _, slot := range templates {
		if !slot.IsAvailable {
			continue
		}
		sec := slot.StartTime.Seconds()
		if _, taken := occupied[sec]; taken {
			continue
		}
		if _, dup := seen[sec]; dup {
			continue
		}
		seen[sec] = struct{}{}
		out = append(out, slot.StartTime)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})

	return out, nil
}
