// Package retry implements the bounded retry loop used by user syncs.
//
// A Policy combines an attempt limit, a classifier that maps a failure to the
// delay before the next attempt, and a sleep primitive that tests can replace.
// Failures wrapped with backoff.Permanent end the loop immediately.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// DefaultMaxAttempts is used when a policy is built with a non-positive limit
const DefaultMaxAttempts = 3

// DelayFunc returns how long to wait after the given 1-indexed attempt failed with err
type DelayFunc func(attempt int, err error) time.Duration

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Operation is a single attempt. attempt is 1-indexed.
type Operation func(ctx context.Context, attempt int) error

// NotifyFunc is called after a failed attempt that will be retried
type NotifyFunc func(attempt int, err error, delay time.Duration)

// Policy describes a bounded retry loop
type Policy struct {
	MaxAttempts int
	Delay       DelayFunc
	Sleep       SleepFunc
	Notify      NotifyFunc
}

// NewPolicy builds a policy with the given limit and classifier, sleeping on the wall clock
func NewPolicy(maxAttempts int, delay DelayFunc) *Policy {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	return &Policy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
		Sleep:       ContextSleep,
	}
}

// Do runs op until it succeeds, fails permanently, the context is cancelled or
// the attempt limit is reached. It returns the number of attempts made and the
// last error, unwrapped from any backoff.PermanentError.
func (p *Policy) Do(ctx context.Context, op Operation) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	sleep := p.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(ctx, attempt)
		if err == nil {
			return attempt, nil
		}
		lastErr = err

		var permanent *backoff.PermanentError
		if errors.As(err, &permanent) {
			return attempt, permanent.Unwrap()
		}

		if attempt == maxAttempts {
			break
		}

		var delay time.Duration
		if p.Delay != nil {
			delay = p.Delay(attempt, err)
		}
		if p.Notify != nil {
			p.Notify(attempt, err, delay)
		}
		if err := sleep(ctx, delay); err != nil {
			return attempt, errors.Join(lastErr, err)
		}
	}

	return maxAttempts, lastErr
}

// ContextSleep waits for d on the wall clock, returning early with the context error
func ContextSleep(ctx context.Context, d time.Duration) error {
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
