package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/astral-sh/ruff-action/pkg/cache"
	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/retry"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, "test:", time.Hour, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilCache(t *testing.T) {
	client := NewClient(nil, "", 0, nil)
	if client.cache == nil {
		t.Error("NewClient(nil) should fall back to a NullCache")
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "ruff-action/") {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, "test:", 0, nil)

	var resp response
	err := client.Get(context.Background(), server.URL, &resp)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetWithHeadersOverridesDefaults(t *testing.T) {
	var override, auth string
	var hasAuth bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		override = r.Header.Get("X-Override")
		auth = r.Header.Get("Authorization")
		_, hasAuth = r.Header["Authorization"]
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, map[string]string{
		"X-Override":    "default",
		"Authorization": "Bearer token",
	})

	var resp map[string]string
	err := client.GetWithHeaders(context.Background(), server.URL, map[string]string{"X-Override": "overridden"}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if override != "overridden" {
		t.Errorf("header = %q, want %q", override, "overridden")
	}
	if auth != "Bearer token" {
		t.Errorf("Authorization = %q, want default", auth)
	}

	// An empty value removes the default header.
	err = client.GetWithHeaders(context.Background(), server.URL, map[string]string{"Authorization": ""}, &resp)
	if err != nil {
		t.Fatalf("GetWithHeaders() error: %v", err)
	}
	if hasAuth {
		t.Error("Authorization header should have been removed")
	}
}

func TestClientGetPage(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next", <%s?page=2>; rel="last"`, server.URL, server.URL))
		}
		json.NewEncoder(w).Encode([]string{"a"})
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil)

	var page []string
	next, err := client.GetPage(context.Background(), server.URL, nil, &page)
	if err != nil {
		t.Fatalf("GetPage() error: %v", err)
	}
	if next != server.URL+"?page=2" {
		t.Errorf("next = %q", next)
	}

	next, err = client.GetPage(context.Background(), next, nil, &page)
	if err != nil {
		t.Fatalf("GetPage() error: %v", err)
	}
	if next != "" {
		t.Errorf("last page next = %q, want empty", next)
	}
}

func TestClientGetText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("abc123  ruff-x86_64-unknown-linux-gnu.tar.gz\n"))
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil)

	text, err := client.GetText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("GetText() error: %v", err)
	}
	if !strings.HasPrefix(text, "abc123") {
		t.Errorf("GetText() = %q", text)
	}
}

func TestClientDownload(t *testing.T) {
	payload := bytes.Repeat([]byte("ruff"), 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil)

	var buf bytes.Buffer
	n, err := client.Download(context.Background(), server.URL, nil, &buf)
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	if n != int64(len(payload)) || !bytes.Equal(buf.Bytes(), payload) {
		t.Errorf("Download() wrote %d bytes, want %d", n, len(payload))
	}
}

func TestClientStatusErrors(t *testing.T) {
	tests := []struct {
		name      string
		code      int
		body      string
		sentinel  error
		retryable bool
	}{
		{"404", http.StatusNotFound, `{"message":"Not Found"}`, ErrNotFound, false},
		{"401", http.StatusUnauthorized, `{"message":"Bad credentials"}`, ErrUnauthorized, false},
		{"500", http.StatusInternalServerError, "", ErrNetwork, true},
		{"503", http.StatusServiceUnavailable, "", ErrNetwork, true},
		{"403", http.StatusForbidden, `{"message":"API rate limit exceeded"}`, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(nil, "", 0, nil)
			var resp map[string]string
			err := client.Get(context.Background(), server.URL, &resp)
			if err == nil {
				t.Fatal("expected error")
			}

			var se *StatusError
			if !errors.As(err, &se) {
				t.Fatalf("error should be StatusError, got %T", err)
			}
			if se.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", se.StatusCode, tt.code)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error = %v, want %v", err, tt.sentinel)
			}
			var re *retry.RetryableError
			if errors.As(err, &re) != tt.retryable {
				t.Errorf("retryable = %v, want %v", !tt.retryable, tt.retryable)
			}
		})
	}
}

func TestClientRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(nil, "", 0, nil)
	_, err := client.GetText(context.Background(), server.URL)

	var rl *errs.RateLimitedError
	if !errors.As(err, &rl) {
		t.Fatalf("error should wrap RateLimitedError, got %v", err)
	}
	if rl.RetryAfter != 30 {
		t.Errorf("RetryAfter = %d, want 30", rl.RetryAfter)
	}
	if !retry.IsRetryableError(err) {
		t.Error("429 should be retryable")
	}
}

func TestClientNetworkErrorIsRetryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(nil, "", 0, nil)
	_, err := client.GetText(context.Background(), url)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
	if !retry.IsRetryableError(err) {
		t.Error("connection failure should be retryable")
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)

	fetchCount := 0
	fetch := func(v *[]string) func() error {
		return func() error {
			fetchCount++
			*v = []string{"v0.5.0", "v0.4.10"}
			return nil
		}
	}

	var first []string
	if err := client.Cached(context.Background(), "releases", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	var second []string
	if err := client.Cached(context.Background(), "releases", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	if fetchCount != 1 {
		t.Errorf("fetch count = %d, want 1", fetchCount)
	}
	if len(second) != 2 || second[0] != "v0.5.0" {
		t.Errorf("cached value = %v", second)
	}
}

func TestClientCachedKeyIsScoped(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "github:", time.Hour, nil)
	var value string
	if err := client.Cached(context.Background(), "releases", false, &value, func() error {
		value = "fetched"
		return nil
	}); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}

	if _, hit, _ := c.Get(context.Background(), "github:http:api:releases"); !hit {
		t.Error("response not stored under the scoped key")
	}
	if _, hit, _ := c.Get(context.Background(), "releases"); hit {
		t.Error("response stored under the bare key")
	}
}

func TestClientCachedDisabled(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", 0, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for range 2 {
		if err := client.Cached(context.Background(), "k", false, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2 with caching disabled", fetchCount)
	}
}

func TestClientCachedRefresh(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, "test:", time.Hour, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for range 2 {
		if err := client.Cached(context.Background(), "k", true, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2 with refresh", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	client := NewClient(nil, "test:", time.Hour, nil)

	var value string
	err := client.Cached(context.Background(), "k", false, &value, func() error {
		return ErrNotFound
	})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}
}

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		code     int
		wantErr  bool
		wantType error
	}{
		{200, false, nil},
		{204, false, nil},
		{404, true, ErrNotFound},
		{401, true, ErrUnauthorized},
		{500, true, ErrNetwork},
		{502, true, ErrNetwork},
		{400, true, nil},
		{403, true, nil},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.code), func(t *testing.T) {
			err := checkStatus(tt.code)
			if (err != nil) != tt.wantErr {
				t.Fatalf("checkStatus(%d) error = %v, wantErr %v", tt.code, err, tt.wantErr)
			}
			if tt.wantType != nil && !errors.Is(err, tt.wantType) {
				t.Errorf("checkStatus(%d) = %v, want %v", tt.code, err, tt.wantType)
			}
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{&StatusError{StatusCode: 401, Err: ErrUnauthorized}, true},
		{fmt.Errorf("list: %w", ErrUnauthorized), true},
		{errors.New("HttpError: Bad credentials"), true},
		{&StatusError{StatusCode: 404, Err: ErrNotFound}, false},
	}
	for _, tt := range tests {
		if got := IsUnauthorized(tt.err); got != tt.want {
			t.Errorf("IsUnauthorized(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestNextPageURL(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"", ""},
		{`<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=5>; rel="last"`, "https://api.github.com/x?page=2"},
		{`<https://api.github.com/x?page=1>; rel="prev", <https://api.github.com/x?page=3>; rel="next"`, "https://api.github.com/x?page=3"},
		{`<https://api.github.com/x?page=1>; rel="first"`, ""},
	}
	for _, tt := range tests {
		if got := NextPageURL(tt.link); got != tt.want {
			t.Errorf("NextPageURL(%q) = %q, want %q", tt.link, got, tt.want)
		}
	}
}
