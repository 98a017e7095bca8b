package engine

import (
	"context"
	"time"
)

// Clock abstracts time for the scan loop and the post-buy settle delay so
// tests can run the pipeline deterministically.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// Sleep blocks for the given duration or until the context is cancelled,
	// in which case it returns the context error.
	Sleep(ctx context.Context, d time.Duration) error
}

// realClock implements Clock with the system timer.
type realClock struct{}

// NewClock returns a Clock backed by the system timer.
func NewClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
