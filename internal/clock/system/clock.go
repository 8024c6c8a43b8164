// Package system provides the wall clock.
package system

import "time"

// Clock implements warn.Clock against the system clock.
type Clock struct{}

// New returns a system clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current UTC time.
func (c *Clock) Now() time.Time {
	return time.Now().UTC()
}
