// internal/clock/clock.go
//
// Time source for the game engines.
// Every timed hold, delayed transition and timer tick is scheduled through a
// Clock so tests can drive time explicitly with Manual.

package clock

import "time"

// Clock reports the current time and schedules callbacks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc runs fn once, d from now, on its own goroutine (Real) or
	// inside Advance (Manual).
	AfterFunc(d time.Duration, fn func())
}

// Real is the wall clock.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }
