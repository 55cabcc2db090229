package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string // API error message from the body, if any
	Err        error  // Sentinel or typed cause, if any
}

func (e *StatusError) Error() string {
	var b strings.Builder
	if e.URL != "" {
		b.WriteString(e.Method + " " + e.URL + ": ")
	}
	fmt.Fprintf(&b, "status %d", e.StatusCode)
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	}
	return b.String()
}

// HTTPStatus returns the response status code.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

func (e *StatusError) Unwrap() error { return e.Err }

// checkStatus maps a status code to an error. 2xx responses yield nil.
func checkStatus(code int) error {
	if code >= 200 && code < 300 {
		return nil
	}
	return newStatusError(code, nil)
}

func newStatusError(code int, h http.Header) *StatusError {
	e := &StatusError{Method: http.MethodGet, StatusCode: code}
	switch {
	case code == http.StatusNotFound:
		e.Err = ErrNotFound
	case code == http.StatusUnauthorized:
		e.Err = ErrUnauthorized
	case code == http.StatusTooManyRequests:
		rl := &errs.RateLimitedError{}
		if h != nil {
			rl.RetryAfter, _ = strconv.Atoi(h.Get("Retry-After"))
		}
		e.Err = rl
	case code >= 500:
		e.Err = ErrNetwork
	}
	return e
}

// IsUnauthorized reports whether err is an authentication failure: a 401
// response, or an API error carrying GitHub's "Bad credentials" message.
func IsUnauthorized(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUnauthorized) {
		return true
	}
	return strings.Contains(err.Error(), "Bad credentials")
}

// ErrorCode maps a transport error to the matching error code.
func ErrorCode(err error) errs.Code {
	var rl *errs.RateLimitedError
	var te interface{ Timeout() bool }
	switch {
	case IsUnauthorized(err):
		return errs.ErrCodeUnauthorized
	case errors.Is(err, ErrNotFound):
		return errs.ErrCodeNotFound
	case errors.As(err, &rl):
		return errs.ErrCodeRateLimited
	case errors.As(err, &te) && te.Timeout():
		return errs.ErrCodeTimeout
	default:
		return errs.ErrCodeNetwork
	}
}
