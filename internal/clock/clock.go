// Package clock supplies the current time to services so tests can pin "now".
package clock

import (
	"time"

	"github.com/noah-isme/edutrack-admin-api/internal/models"
)

// Clock reports the current instant.
type Clock interface {
	Now() time.Time
}

// Func adapts a plain function to Clock.
type Func func() time.Time

// Now implements Clock.
func (f Func) Now() time.Time {
	return f()
}

type system struct {
	location *time.Location
}

// System returns the wall clock in the given location; nil means UTC.
func System(location *time.Location) Clock {
	if location == nil {
		location = time.UTC
	}
	return system{location: location}
}

func (s system) Now() time.Time {
	return time.Now().In(s.location)
}

// Fixed always returns t.
func Fixed(t time.Time) Clock {
	return Func(func() time.Time { return t })
}

// Today returns the calendar date of c.
func Today(c Clock) time.Time {
	return models.DateOf(c.Now())
}
