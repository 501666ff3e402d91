package query

import "time"

// Clock provides the current time and can be swapped for a fixed clock in
// tests to drive staleness deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock implements Clock with a controllable time for testing.
type FixedClock struct {
	now time.Time
}

// NewFixedClock creates a FixedClock pinned to the given time.
func NewFixedClock(t time.Time) *FixedClock {
	return &FixedClock{now: t}
}

// Now returns the pinned time.
func (c *FixedClock) Now() time.Time {
	return c.now
}

// Advance moves the pinned time forward.
func (c *FixedClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
