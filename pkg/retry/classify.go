package retry

import (
	"context"
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"syscall"
	"time"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

// RetryableError marks an error as transient. [Retrier.Do] retries it until
// the budget is exhausted.
type RetryableError struct {
	Op  string
	Err error
}

func (e *RetryableError) Error() string {
	if e.Op != "" {
		return e.Op + " failed: " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *RetryableError) Unwrap() error { return e.Err }

// NonRetryableError marks an error as permanent. [Retrier.Do] stops at once
// and returns the wrapped cause, not the wrapper.
type NonRetryableError struct {
	Op  string
	Err error
}

func (e *NonRetryableError) Error() string {
	if e.Op != "" {
		return e.Op + " failed: " + e.Err.Error()
	}
	return e.Err.Error()
}

func (e *NonRetryableError) Unwrap() error { return e.Err }

// Cause returns the original error.
func (e *NonRetryableError) Cause() error { return e.Err }

// TimeoutError is produced when an attempt exceeds Policy.Timeout.
type TimeoutError struct {
	Op    string
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Op, e.After)
}

// Timeout always reports true.
func (e *TimeoutError) Timeout() bool { return true }

// Retryable wraps err as a [RetryableError]. Retryable(nil) returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// NonRetryable wraps err as a [NonRetryableError]. NonRetryable(nil) returns nil.
func NonRetryable(err error) error {
	if err == nil {
		return nil
	}
	return &NonRetryableError{Err: err}
}

// Classify wraps err into a RetryableError or NonRetryableError labelled
// with op, according to [IsRetryableError].
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if IsRetryableError(err) {
		return &RetryableError{Op: op, Err: err}
	}
	return &NonRetryableError{Op: op, Err: err}
}

// retryableStatusCodes are HTTP statuses worth retrying.
var retryableStatusCodes = map[int]bool{
	408: true, // Request Timeout
	429: true, // Too Many Requests
	500: true,
	502: true,
	503: true,
	504: true,
}

// retryableMessages are lowercase fragments of transient network failures.
var retryableMessages = []string{
	"connect timeout",
	"connection timeout",
	"timeout",
	"econnreset",
	"econnrefused",
	"enotfound",
	"network error",
	"request timeout",
	"socket timeout",
	"fetch failed",
	"connect etimedout",
	"connection reset by peer",
	"connection refused",
	"no such host",
}

var statusPattern = regexp.MustCompile(`status.*?(\d{3})`)

// statusCoder is implemented by HTTP errors that carry a response status.
type statusCoder interface {
	HTTPStatus() int
}

// IsRetryableError reports whether err is a transient failure.
//
// Structured signals are checked first: explicit wrappers, error codes,
// HTTP status codes, network timeouts, connection resets and refusals,
// DNS failures and deadline expiry. Only when none applies is the error
// text inspected for known transient signatures.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.As(err, new(*NonRetryableError)) {
		return false
	}
	if errors.As(err, new(*RetryableError)) {
		return true
	}
	if errors.Is(err, context.Canceled) || errs.IsFatal(err) {
		return false
	}
	switch errs.GetCode(err) {
	case errs.ErrCodeNetwork, errs.ErrCodeTimeout, errs.ErrCodeRateLimited:
		return true
	}
	if errors.As(err, new(*errs.RateLimitedError)) {
		return true
	}

	var sc statusCoder
	if errors.As(err, &sc) {
		return retryableStatusCodes[sc.HTTPStatus()]
	}

	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && (dnsErr.IsNotFound || dnsErr.IsTimeout || dnsErr.IsTemporary) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	return matchesTransientMessage(err.Error())
}

func matchesTransientMessage(msg string) bool {
	msg = strings.ToLower(msg)
	for _, m := range retryableMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	if m := statusPattern.FindStringSubmatch(msg); m != nil {
		code, _ := strconv.Atoi(m[1])
		return retryableStatusCodes[code]
	}
	return false
}
