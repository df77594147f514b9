// Package clock abstracts wall-clock time so year boundaries and due dates can
// be simulated in tests.
package clock

import "time"

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// System is the real wall clock.
func System() Clock { return systemClock{} }

// Fixed always returns t.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
