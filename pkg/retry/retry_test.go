package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

// testRetrier returns a Retrier that records sleeps instead of sleeping.
func testRetrier(p Policy) (*Retrier, *[]time.Duration) {
	r := New(p, log.New(io.Discard))
	var delays []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return r, &delays
}

func TestPolicyDelay(t *testing.T) {
	p := DefaultPolicy()
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 0},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{50, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.attempt), func(t *testing.T) {
			if got := p.Delay(tt.attempt); got != tt.want {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.want)
			}
		})
	}
}

func TestPolicyWithHelpersCopy(t *testing.T) {
	base := DefaultPolicy()
	p := base.WithMaxRetries(7).WithTimeout(time.Second).WithDelays(time.Millisecond, time.Minute)

	if base.MaxRetries != 3 || base.Timeout != 30*time.Second {
		t.Errorf("base policy mutated: %+v", base)
	}
	if p.MaxRetries != 7 || p.Timeout != time.Second || p.InitialDelay != time.Millisecond || p.MaxDelay != time.Minute {
		t.Errorf("unexpected policy: %+v", p)
	}
}

func TestDoSuccessFirstAttempt(t *testing.T) {
	r, delays := testRetrier(DefaultPolicy())

	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(*delays) != 0 {
		t.Errorf("slept %d times, want 0", len(*delays))
	}
}

func TestDoRetryBudget(t *testing.T) {
	for _, n := range []int{0, 1, 3, 6} {
		t.Run(fmt.Sprintf("maxRetries=%d", n), func(t *testing.T) {
			r, delays := testRetrier(DefaultPolicy().WithMaxRetries(n).WithTimeout(0))

			calls := 0
			sentinel := errors.New("network error")
			err := r.Do(context.Background(), "op", func(context.Context) error {
				calls++
				return Retryable(sentinel)
			})
			if !errors.Is(err, sentinel) {
				t.Errorf("err = %v, want %v", err, sentinel)
			}
			if calls != n+1 {
				t.Errorf("calls = %d, want %d", calls, n+1)
			}
			if len(*delays) != n {
				t.Fatalf("sleeps = %d, want %d", len(*delays), n)
			}
			for i := 1; i < len(*delays); i++ {
				if (*delays)[i] < (*delays)[i-1] {
					t.Errorf("delays decreased: %v", *delays)
				}
			}
			for _, d := range *delays {
				if d > 10*time.Second {
					t.Errorf("delay %v exceeds cap", d)
				}
			}
		})
	}
}

func TestDoSucceedsAfterRetries(t *testing.T) {
	r, delays := testRetrier(DefaultPolicy().WithTimeout(0))

	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("read: connection reset by peer")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if fmt.Sprint(*delays) != fmt.Sprint(want) {
		t.Errorf("delays = %v, want %v", *delays, want)
	}
}

func TestDoNonRetryableShortCircuits(t *testing.T) {
	r, delays := testRetrier(DefaultPolicy())

	cause := errors.New("bad input")
	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return NonRetryable(cause)
	})
	if err != cause {
		t.Errorf("err = %v, want original cause %v", err, cause)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if len(*delays) != 0 {
		t.Errorf("slept %d times, want 0", len(*delays))
	}
}

func TestDoFatalCodeNotRetried(t *testing.T) {
	r, _ := testRetrier(DefaultPolicy())

	calls := 0
	err := r.Do(context.Background(), "op", func(context.Context) error {
		calls++
		return errs.New(errs.ErrCodeChecksumMismatch, "timeout while hashing")
	})
	if !errs.Is(err, errs.ErrCodeChecksumMismatch) {
		t.Errorf("err = %v, want CHECKSUM_MISMATCH", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestDoTimeout(t *testing.T) {
	r, delays := testRetrier(Policy{MaxRetries: 1, Timeout: 10 * time.Millisecond})

	calls := 0
	err := r.Do(context.Background(), "slow op", func(ctx context.Context) error {
		calls++
		<-ctx.Done()
		return ctx.Err()
	})

	var te *TimeoutError
	if !errors.As(err, &te) {
		t.Fatalf("err = %v, want TimeoutError", err)
	}
	if te.Op != "slow op" {
		t.Errorf("Op = %q, want %q", te.Op, "slow op")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(*delays) != 1 {
		t.Errorf("sleeps = %d, want 1", len(*delays))
	}
}

func TestDoContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New(DefaultPolicy(), log.New(io.Discard))
	err := r.Do(ctx, "op", func(context.Context) error {
		return Retryable(errors.New("network error"))
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestValue(t *testing.T) {
	r, _ := testRetrier(DefaultPolicy())

	calls := 0
	got, err := Value(context.Background(), r, "fetch", func(context.Context) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("status code 503")
		}
		return "v0.5.0", nil
	})
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if got != "v0.5.0" {
		t.Errorf("got %q, want %q", got, "v0.5.0")
	}
}

type httpStatusErr int

func (e httpStatusErr) Error() string   { return fmt.Sprintf("unexpected response %d", int(e)) }
func (e httpStatusErr) HTTPStatus() int { return int(e) }

type timeoutNetErr struct{}

func (timeoutNetErr) Error() string   { return "i/o" }
func (timeoutNetErr) Timeout() bool   { return true }
func (timeoutNetErr) Temporary() bool { return false }

var _ net.Error = timeoutNetErr{}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"retryable wrapper", Retryable(errors.New("x")), true},
		{"non-retryable wrapper", NonRetryable(errors.New("timeout")), false},
		{"status 503", httpStatusErr(503), true},
		{"status 429", httpStatusErr(429), true},
		{"status 404", httpStatusErr(404), false},
		{"status 401", httpStatusErr(401), false},
		{"econnreset", fmt.Errorf("read: %w", syscall.ECONNRESET), true},
		{"econnrefused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"dns not found", &net.DNSError{Err: "no such host", Name: "x", IsNotFound: true}, true},
		{"net timeout", timeoutNetErr{}, true},
		{"deadline", context.DeadlineExceeded, true},
		{"canceled", context.Canceled, false},
		{"network code", errs.New(errs.ErrCodeNetwork, "x"), true},
		{"version not found", errs.New(errs.ErrCodeVersionNotFound, "No version found for >=9"), false},
		{"message timeout", errors.New("Connect Timeout Error"), true},
		{"message fetch failed", errors.New("TypeError: fetch failed"), true},
		{"message enotfound", errors.New("getaddrinfo ENOTFOUND api.github.com"), true},
		{"message status 502", errors.New("request failed with status code 502"), true},
		{"message status 404", errors.New("request failed with status code 404"), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryableError(tt.err); got != tt.want {
				t.Errorf("IsRetryableError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if Classify("op", nil) != nil {
		t.Error("Classify(nil) should be nil")
	}

	err := Classify("download", errors.New("ECONNRESET"))
	var re *RetryableError
	if !errors.As(err, &re) {
		t.Fatalf("expected RetryableError, got %T", err)
	}
	if err.Error() != "download failed: ECONNRESET" {
		t.Errorf("Error() = %q", err.Error())
	}

	cause := errors.New("bad")
	err = Classify("download", cause)
	var nre *NonRetryableError
	if !errors.As(err, &nre) {
		t.Fatalf("expected NonRetryableError, got %T", err)
	}
	if nre.Cause() != cause {
		t.Errorf("Cause() = %v, want %v", nre.Cause(), cause)
	}
}
