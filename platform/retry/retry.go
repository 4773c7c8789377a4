// Package retry provides a bounded retry helper on top of sethvargo/go-retry.
// This is part of the platform layer and contains no business logic.
package retry

import (
	"context"
	"time"

	goretry "github.com/sethvargo/go-retry"
)

// Policy describes a bounded retry with a fixed delay between attempts.
type Policy struct {
	// Attempts is the total number of calls, including the first one.
	Attempts int
	// Delay is the pause between two attempts.
	Delay time.Duration
}

// Func is one attempt. attempt starts at 1.
type Func func(ctx context.Context, attempt int) error

// Do calls fn until it succeeds, returns an error rejected by retryable, or the
// policy runs out of attempts. The last error is returned unwrapped.
func Do(ctx context.Context, p Policy, retryable func(error) bool, fn Func) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	delay := p.Delay
	backoff := goretry.WithMaxRetries(uint64(attempts-1), goretry.BackoffFunc(func() (time.Duration, bool) {
		return delay, false
	}))

	attempt := 0
	return goretry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		if retryable != nil && retryable(err) {
			return goretry.RetryableError(err)
		}
		return err
	})
}
