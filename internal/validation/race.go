package validation

import (
	"context"
	"errors"
	"time"
)

// errProbeTimedOut marks the timer winning the race.
var errProbeTimedOut = errors.New("probe timed out")

// raceTimeout runs fn against a timer and returns whichever finishes first.
// When the timer wins, fn's context is cancelled so its resources (open
// connections) are torn down rather than leaked; its eventual result is
// discarded. Cancellation of the parent ctx wins over both.
func raceTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(runCtx)
		done <- outcome{value: v, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case o := <-done:
		return o.value, o.err
	case <-timer.C:
		cancel()
		return zero, errProbeTimedOut
	case <-ctx.Done():
		cancel()
		return zero, ctx.Err()
	}
}
