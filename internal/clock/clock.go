// Package clock provides the user-local timezone view of time.
//
// The whole engine runs in a single user timezone: timestamps arriving from
// outside (AI suggestions, stored reminder datetimes) have their wall-clock
// fields reinterpreted in that zone rather than shifted. This keeps reminder
// arithmetic free of cross-zone surprises at the cost of ignoring the source
// zone, which matches how the rest of the system stores times.
package clock

import (
	"fmt"
	"time"
)

type Clock struct {
	loc *time.Location

	// NowFunc overrides the time source, used by tests.
	NowFunc func() time.Time
}

// New creates a Clock for the given IANA zone name.
func New(timezone string) (*Clock, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Clock{loc: loc}, nil
}

// Fixed returns a Clock pinned to the given instant, for tests.
func Fixed(t time.Time) *Clock {
	return &Clock{
		loc:     t.Location(),
		NowFunc: func() time.Time { return t },
	}
}

func (c *Clock) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the user zone.
func (c *Clock) Now() time.Time {
	if c.NowFunc != nil {
		return c.NowFunc()
	}
	return time.Now().In(c.loc)
}

// ToUserTZ reinterprets t's wall-clock fields in the user zone.
// No instant-preserving shift is applied.
func (c *Clock) ToUserTZ(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), c.loc)
}

// At returns the given date at hour:minute in the user zone.
func (c *Clock) At(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, c.loc)
}

// ParseClockTime parses an "HH:MM" string into hour and minute.
func ParseClockTime(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("parse clock time %q: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}
