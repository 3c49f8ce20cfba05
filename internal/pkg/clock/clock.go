// Package clock provides a tiny time abstraction.
//
// Code that needs the current time should depend on Clocker instead of
// calling time.Now() directly, so tests can swap in a deterministic clock.
package clock

import "time"

// Clocker abstracts the current time.
type Clocker interface {
	Now() time.Time
}

// TimeClocker is the production clock backed by time.Now.
type TimeClocker struct{}

// New returns a TimeClocker reading the system time.
func New() *TimeClocker {
	return &TimeClocker{}
}

// Now returns the current system time.
func (*TimeClocker) Now() time.Time {
	return time.Now()
}

// Static is a fixed clock for tests.
type Static struct {
	// T is the time every Now call returns.
	T time.Time
}

// Now returns the configured time.
func (s Static) Now() time.Time {
	return s.T
}
