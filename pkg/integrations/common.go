package integrations

import (
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/astral-sh/ruff-action/pkg/buildinfo"
)

// httpTimeout bounds a whole request including the body, which for artifact
// downloads is a multi-megabyte archive.
const httpTimeout = 2 * time.Minute

var (
	// ErrNotFound is returned when a release or asset doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrUnauthorized is returned for 401 responses, i.e. a missing or invalid token.
	ErrUnauthorized = errors.New("unauthorized")
)

// UserAgent identifies requests made by ruff-action.
func UserAgent() string { return "ruff-action/" + buildinfo.Version }

// NewHTTPClient creates an HTTP client with a standard timeout.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

var linkNextPattern = regexp.MustCompile(`<([^>]+)>\s*;\s*rel="next"`)

// NextPageURL extracts the rel="next" target from an RFC 8288 Link header.
// Returns "" when there is no next page.
func NextPageURL(link string) string {
	if m := linkNextPattern.FindStringSubmatch(link); m != nil {
		return m[1]
	}
	return ""
}
