// internal/pkg/clock/clock.go
package clock

import "time"

// Clock abstracts wall-clock reads so the batch sweeps stay deterministic
// under simulated time. Nothing inside a sweep may call time.Now directly.
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock.
type System struct{}

func (System) Now() time.Time {
	return time.Now()
}

// Fixed always returns the same instant. Test helper.
type Fixed struct {
	T time.Time
}

func (f Fixed) Now() time.Time {
	return f.T
}
