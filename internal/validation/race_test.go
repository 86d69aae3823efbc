package validation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRaceTimeout_FnWins(t *testing.T) {
	got, err := raceTimeout(context.Background(), time.Second, func(ctx context.Context) (int, error) {
		return 42, nil
	})
	if err != nil || got != 42 {
		t.Errorf("expected 42, got %d (%v)", got, err)
	}
}

func TestRaceTimeout_TimerWinsAndCancelsLoser(t *testing.T) {
	cancelled := make(chan struct{})
	_, err := raceTimeout(context.Background(), 20*time.Millisecond, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		close(cancelled)
		return 0, ctx.Err()
	})
	if !errors.Is(err, errProbeTimedOut) {
		t.Fatalf("expected errProbeTimedOut, got %v", err)
	}
	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Error("losing fn was never cancelled")
	}
}

func TestRaceTimeout_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := raceTimeout(ctx, time.Minute, func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, ctx.Err()
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
