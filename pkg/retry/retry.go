// Package retry runs operations with exponential backoff and per-attempt
// timeouts.
//
// A [Retrier] is built from an immutable [Policy]. Each call to [Retrier.Do]
// runs the operation at most Policy.MaxRetries+1 times. Before every retry
// (never before the first attempt) it sleeps
//
//	min(InitialDelay * Multiplier^(attempt-1), MaxDelay)
//
// Errors steer the loop:
//   - [NonRetryableError] aborts at once and surfaces the wrapped cause
//   - [RetryableError] consumes one attempt and is retried
//   - anything else is classified with [IsRetryableError]
//
// # Usage
//
//	r := retry.New(retry.DefaultPolicy(), logger)
//	tags, err := retry.Value(ctx, r, "list releases", func(ctx context.Context) ([]string, error) {
//	    return client.ListTags(ctx)
//	})
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/log"
)

// Policy configures a [Retrier]. The zero value performs a single attempt
// without timeout.
type Policy struct {
	MaxRetries   int           // Retries after the first attempt
	InitialDelay time.Duration // Delay before the first retry
	MaxDelay     time.Duration // Upper bound for any single delay
	Multiplier   float64       // Backoff growth factor
	Timeout      time.Duration // Per-attempt timeout, 0 disables
}

// DefaultPolicy returns 3 retries, 1s initial delay, 10s cap, x2 backoff and
// a 30s per-attempt timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:   3,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
		Timeout:      30 * time.Second,
	}
}

// WithMaxRetries returns a copy of p with MaxRetries set to n.
func (p Policy) WithMaxRetries(n int) Policy {
	p.MaxRetries = n
	return p
}

// WithTimeout returns a copy of p with the per-attempt timeout set to d.
func (p Policy) WithTimeout(d time.Duration) Policy {
	p.Timeout = d
	return p
}

// WithDelays returns a copy of p with the given initial and maximum delay.
func (p Policy) WithDelays(initial, maxDelay time.Duration) Policy {
	p.InitialDelay = initial
	p.MaxDelay = maxDelay
	return p
}

// Delay returns the sleep before the given attempt. Attempt 0 is the first
// attempt and never sleeps.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 || p.InitialDelay <= 0 {
		return 0
	}
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.InitialDelay) * math.Pow(mult, float64(attempt-1))
	if p.MaxDelay > 0 && d > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	if d > math.MaxInt64 {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(d)
}

// Retrier executes operations under a fixed [Policy].
// It holds no per-call state and is safe for concurrent use.
type Retrier struct {
	policy Policy
	logger *log.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// New creates a Retrier. A nil logger uses log.Default().
func New(p Policy, logger *log.Logger) *Retrier {
	if logger == nil {
		logger = log.Default()
	}
	if p.MaxRetries < 0 {
		p.MaxRetries = 0
	}
	return &Retrier{policy: p, logger: logger, sleep: sleepContext}
}

// Policy returns the policy the Retrier was built with.
func (r *Retrier) Policy() Policy { return r.policy }

// Do runs fn until it succeeds, fails with a non-retryable error, or the
// retry budget is exhausted. The name labels log lines and timeout errors.
// When exhausted, the last observed error is returned.
func (r *Retrier) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	_, err := Value(ctx, r, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// Value runs fn under r and returns the result of the first successful
// attempt.
func Value[T any](ctx context.Context, r *Retrier, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	total := r.policy.MaxRetries + 1
	var lastErr error

	for attempt := range total {
		if attempt > 0 {
			delay := r.policy.Delay(attempt)
			r.logger.Info("retrying",
				"operation", name,
				"attempt", fmt.Sprintf("%d/%d", attempt+1, total),
				"delay", delay)
			if err := r.sleep(ctx, delay); err != nil {
				return zero, err
			}
		}

		v, err := runAttempt(ctx, r.policy.Timeout, name, fn)
		if err == nil {
			return v, nil
		}
		lastErr = err

		var nre *NonRetryableError
		if errors.As(err, &nre) {
			r.logger.Debug("non-retryable error", "operation", name, "error", nre.Err)
			return zero, nre.Cause()
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !IsRetryableError(err) {
			r.logger.Debug("error is not retryable", "operation", name, "error", err)
			return zero, err
		}
		r.logger.Debug("attempt failed",
			"operation", name,
			"attempt", attempt+1,
			"error", err)
	}

	r.logger.Error(fmt.Sprintf("%s failed after %d attempts", name, total), "error", lastErr)
	return zero, lastErr
}

type result[T any] struct {
	v   T
	err error
}

// runAttempt runs fn once, racing it against timeout.
// A timed-out attempt is abandoned: its context is cancelled and its result
// discarded.
func runAttempt[T any](ctx context.Context, timeout time.Duration, name string, fn func(ctx context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		return fn(ctx)
	}

	actx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan result[T], 1)
	go func() {
		v, err := fn(actx)
		done <- result[T]{v, err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var zero T
	select {
	case res := <-done:
		return res.v, res.err
	case <-timer.C:
		return zero, &RetryableError{Err: &TimeoutError{Op: name, After: timeout}}
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
