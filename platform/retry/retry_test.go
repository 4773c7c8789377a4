package retry

import (
	"context"
	"errors"
	"testing"
)

var errBusy = errors.New("busy")

func isBusy(err error) bool { return errors.Is(err, errBusy) }

func TestDoStopsAfterAttempts(t *testing.T) {
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3}, isBusy, func(context.Context, int) error {
		calls++
		return errBusy
	})

	if !errors.Is(err, errBusy) {
		t.Fatalf("err = %v, want errBusy", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDoReturnsNonRetryableImmediately(t *testing.T) {
	fatal := errors.New("bad key")
	calls := 0
	err := Do(context.Background(), Policy{Attempts: 3}, isBusy, func(context.Context, int) error {
		calls++
		return fatal
	})

	if !errors.Is(err, fatal) || calls != 1 {
		t.Fatalf("err = %v calls = %d, want fatal after 1 call", err, calls)
	}
}

func TestDoSucceedsOnLaterAttempt(t *testing.T) {
	var seen []int
	err := Do(context.Background(), Policy{Attempts: 3}, isBusy, func(_ context.Context, attempt int) error {
		seen = append(seen, attempt)
		if attempt < 2 {
			return errBusy
		}
		return nil
	})

	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(seen) != 2 || seen[1] != 2 {
		t.Fatalf("attempts = %v, want [1 2]", seen)
	}
}
