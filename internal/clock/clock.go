// Package clock abstracts monotonic time and cancellable sleeping so the
// engine loops can be driven deterministically in tests.
package clock

import (
	"context"
	"time"
)

// Clock is the time source for the scheduling loops. Now must be backed
// by a monotonic reading; Sleep must return early with ctx.Err() when the
// context is cancelled.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// Real implements Clock using the standard time package. time.Now carries
// a monotonic component, so differences between readings are immune to
// wall-clock adjustments.
type Real struct{}

// NewReal returns the production clock.
func NewReal() *Real {
	return &Real{}
}

// Now returns the current time.
func (*Real) Now() time.Time {
	return time.Now()
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func (*Real) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
