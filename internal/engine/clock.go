package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Checker consults it to decide what is "future" and what is "too old".
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock is a Clock frozen at one instant. Batch runs use it so every
// stage of a reconciliation agrees on "now".
type FixedClock time.Time

// Now returns the frozen instant.
func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
