package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Timestamps in this system are naive local date-times: no timezone offset on
// the wire, no conversion on parse. They are carried as time.Time values in
// UTC whose wall-clock components are the values the caller sent.

const (
	WallTimeLayout  = "2006-01-02T15:04:05"
	DateLayout      = "2006-01-02"
	timeOfDayLayout = "15:04:05"
	timeOfDayShort  = "15:04"
)

// Naive strips the location from t, keeping its wall-clock components.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}

func ParseWallTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(WallTimeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: want %s", s, WallTimeLayout)
	}
	return t, nil
}

func FormatWallTime(t time.Time) string {
	return t.Format(WallTimeLayout)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: want %s", s, DateLayout)
	}
	return t, nil
}

// WallTime is a naive date-time for JSON exchange: no offset on the wire,
// wall-clock value preserved verbatim through parse and format.
type WallTime struct {
	Time time.Time
}

func (t WallTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(FormatWallTime(t.Time))
}

func (t *WallTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseWallTime(s)
	if err != nil {
		return err
	}
	*t = WallTime{Time: parsed}
	return nil
}

// TimeOfDay is a wall-clock time without a date, second resolution.
type TimeOfDay struct {
	Time time.Time
}

func NewTimeOfDay(hour, minute, second int) TimeOfDay {
	return TimeOfDay{Time: time.Date(0, time.January, 1, hour, minute, second, 0, time.UTC)}
}

// TimeOfDayOf projects the time-of-day component of a timestamp.
func TimeOfDayOf(t time.Time) TimeOfDay {
	return NewTimeOfDay(t.Hour(), t.Minute(), t.Second())
}

func ParseTimeOfDay(s string) (TimeOfDay, error) {
	for _, layout := range []string{timeOfDayLayout, timeOfDayShort} {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDay{Time: t}, nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("parse time of day %q: want %s", s, timeOfDayLayout)
}

// Seconds is the offset since midnight, used for ordering and set membership.
func (t TimeOfDay) Seconds() int {
	return t.Time.Hour()*3600 + t.Time.Minute()*60 + t.Time.Second()
}

func (t TimeOfDay) Before(o TimeOfDay) bool {
	return t.Seconds() < o.Seconds()
}

func (t TimeOfDay) Equal(o TimeOfDay) bool {
	return t.Seconds() == o.Seconds()
}

func (t TimeOfDay) String() string {
	return t.Time.Format(timeOfDayLayout)
}

func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t TimeOfDay) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = TimeOfDay{}
		return nil
	case time.Time:
		*t = TimeOfDayOf(v)
		return nil
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
}
