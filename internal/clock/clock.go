// Package clock makes "now" an injectable capability so timing checks can be
// pinned in tests.
package clock

import (
	"time"

	"medbook/backend/internal/domain"
)

type Clock interface {
	Now() time.Time
}

// System reads the host clock and strips the zone, matching the naive
// wall-clock timestamps stored on appointments.
type System struct{}

func (System) Now() time.Time {
	return domain.Naive(time.Now())
}

// Fixed always reports the same instant.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
