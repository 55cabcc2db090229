package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/astral-sh/ruff-action/pkg/cache"
	"github.com/astral-sh/ruff-action/pkg/observability"
	"github.com/astral-sh/ruff-action/pkg/retry"
)

// maxErrorBody bounds how much of an error response body is read.
const maxErrorBody = 4 << 10

// Client provides shared HTTP functionality for API clients and downloads.
// It handles response caching, status mapping and common request headers.
// Retrying is left to the caller's [retry.Retrier]; transient failures are
// returned as [retry.RetryableError].
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// Responses passed through [Client.Cached] are stored under keyPrefix for ttl;
// a ttl of 0 disables caching. Pass nil for headers if no default headers are
// needed.
func NewClient(c cache.Cache, keyPrefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		keyer:   cache.NewScopedKeyer(cache.NewDefaultKeyer(), keyPrefix),
		ttl:     ttl,
		headers: headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.http = h
	}
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true or caching is disabled, fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	key = c.keyer.HTTPKey("api", key)
	if !refresh && c.ttl > 0 {
		if data, hit, err := c.cache.Get(ctx, key); err == nil && hit {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, "api")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "api")
	}
	if err := fetch(); err != nil {
		return err
	}
	if c.ttl > 0 {
		if data, err := json.Marshal(v); err == nil {
			if c.cache.Set(ctx, key, data, c.ttl) == nil {
				observability.Cache().OnCacheSet(ctx, "api", len(data))
			}
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key; an
// empty value removes the default header.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	_, err := c.GetPage(ctx, url, headers, v)
	return err
}

// GetPage is like [Client.GetWithHeaders] and additionally returns the URL of
// the next page announced by the Link header, or "" on the last page.
func (c *Client) GetPage(ctx context.Context, url string, headers map[string]string, v any) (string, error) {
	resp, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return "", retry.NonRetryable(fmt.Errorf("decode %s: %w", url, err))
	}
	return NextPageURL(resp.Header.Get("Link")), nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
// Used for plain text endpoints like .sha256 digest files.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	resp, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", retry.Retryable(fmt.Errorf("%w: read %s: %v", ErrNetwork, url, err))
	}
	return string(data), nil
}

// Download streams the body at url into w and returns the number of bytes
// written. A body interrupted mid-transfer is reported as retryable.
func (c *Client) Download(ctx context.Context, url string, headers map[string]string, w io.Writer) (int64, error) {
	resp, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, retry.Retryable(fmt.Errorf("%w: download %s: %v", ErrNetwork, url, err))
	}
	return n, nil
}

func (c *Client) doRequest(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		if v == "" {
			req.Header.Del(k)
			continue
		}
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, retry.Retryable(fmt.Errorf("%w: %v", ErrNetwork, err))
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkResponse(resp); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp, nil
}

// checkResponse converts a non-2xx response into a *StatusError, picking up
// the API's error message from a JSON body when present.
func checkResponse(resp *http.Response) error {
	if checkStatus(resp.StatusCode) == nil {
		return nil
	}
	e := newStatusError(resp.StatusCode, resp.Header)
	e.Method = resp.Request.Method
	e.URL = resp.Request.URL.String()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var apiErr struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &apiErr) == nil {
		e.Message = apiErr.Message
	}

	if retry.IsRetryableError(e) {
		return retry.Retryable(e)
	}
	return e
}
