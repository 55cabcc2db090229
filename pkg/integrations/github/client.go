package github

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/astral-sh/ruff-action/pkg/cache"
	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/integrations"
	"github.com/astral-sh/ruff-action/pkg/retry"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"

	// DefaultOwner and DefaultRepo name the ruff repository.
	DefaultOwner = "astral-sh"
	DefaultRepo  = "ruff"

	perPage = 100
)

const (
	msgAnonymousFallback = "No (valid) GitHub token provided. Falling back to anonymous. Requests might be rate limited."
	msgListFailed        = "GitHub API request failed while getting releases. Check the GitHub status page for outages. Try again later."
	msgLatestFailed      = "GitHub API request failed while getting latest release. Check the GitHub status page for outages. Try again later."
)

// anonymous drops the Authorization header set from the token.
var anonymous = map[string]string{"Authorization": ""}

// Options configures a [Client]. All fields are optional.
type Options struct {
	Token    string         // API token; empty for anonymous access
	BaseURL  string         // Defaults to DefaultBaseURL
	Owner    string         // Defaults to DefaultOwner
	Repo     string         // Defaults to DefaultRepo
	Cache    cache.Cache    // Response cache for release listings
	CacheTTL time.Duration  // 0 disables response caching
	Retrier  *retry.Retrier // Defaults to retry.DefaultPolicy()
	Logger   *log.Logger    // Defaults to log.Default()
}

// Client provides access to the GitHub releases API.
type Client struct {
	*integrations.Client
	baseURL string
	owner   string
	repo    string
	token   string
	retrier *retry.Retrier
	logger  *log.Logger
}

// NewClient creates a GitHub API client.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Owner == "" {
		opts.Owner = DefaultOwner
	}
	if opts.Repo == "" {
		opts.Repo = DefaultRepo
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Retrier == nil {
		opts.Retrier = retry.New(retry.DefaultPolicy(), opts.Logger)
	}

	headers := map[string]string{
		"Accept":               "application/vnd.github.v3+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if opts.Token != "" {
		headers["Authorization"] = "Bearer " + opts.Token
	}

	return &Client{
		Client:  integrations.NewClient(opts.Cache, "github:", opts.CacheTTL, headers),
		baseURL: opts.BaseURL,
		owner:   opts.Owner,
		repo:    opts.Repo,
		token:   opts.Token,
		retrier: opts.Retrier,
		logger:  opts.Logger,
	}
}

// ListReleases returns all releases, following pagination. Pages are
// concatenated in API order, newest first.
// An empty listing is an EMPTY_CATALOG error.
func (c *Client) ListReleases(ctx context.Context) ([]Release, error) {
	key := fmt.Sprintf("%s/%s/%s:releases", c.baseURL, c.owner, c.repo)

	var releases []Release
	err := c.Cached(ctx, key, false, &releases, func() error {
		var err error
		releases, err = c.fetchReleases(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return releases, nil
}

// ReleaseTags returns the tag names of all releases.
func (c *Client) ReleaseTags(ctx context.Context) ([]string, error) {
	releases, err := c.ListReleases(ctx)
	if err != nil {
		return nil, err
	}
	return Tags(releases), nil
}

func (c *Client) fetchReleases(ctx context.Context) ([]Release, error) {
	releases, err := withAuthFallback(ctx, c, "list releases", func(ctx context.Context, headers map[string]string) ([]Release, error) {
		var all []Release
		url := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d", c.baseURL, c.owner, c.repo, perPage)
		for n := 1; url != ""; n++ {
			var page []Release
			next, err := c.GetPage(ctx, url, headers, &page)
			if err != nil {
				return nil, retry.Classify(fmt.Sprintf("fetch releases page %d", n), err)
			}
			all = append(all, page...)
			url = next
		}
		return all, nil
	})
	if err != nil {
		return nil, errs.Wrap(integrations.ErrorCode(err), err, "list %s/%s releases", c.owner, c.repo)
	}
	if len(releases) == 0 {
		return nil, errs.New(errs.ErrCodeEmptyCatalog, msgListFailed)
	}
	c.logger.Debug("listed releases", "count", len(releases))
	return releases, nil
}

// LatestRelease returns the release GitHub marks as latest.
func (c *Client) LatestRelease(ctx context.Context) (*Release, error) {
	rel, err := withAuthFallback(ctx, c, "get latest release", func(ctx context.Context, headers map[string]string) (*Release, error) {
		var rel Release
		url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)
		if err := c.GetWithHeaders(ctx, url, headers, &rel); err != nil {
			return nil, err
		}
		return &rel, nil
	})
	if err != nil {
		c.logger.Error(msgLatestFailed)
		return nil, errs.Wrap(integrations.ErrorCode(err), err, "get latest %s/%s release", c.owner, c.repo)
	}
	if rel.TagName == "" {
		return nil, errs.New(errs.ErrCodeEmptyCatalog, "could not determine latest release")
	}
	return rel, nil
}

// withAuthFallback runs fn through the client's retrier with its credentials.
// If the token is rejected, fn runs once more anonymously.
func withAuthFallback[T any](ctx context.Context, c *Client, name string, fn func(ctx context.Context, headers map[string]string) (T, error)) (T, error) {
	v, err := retry.Value(ctx, c.retrier, name, func(ctx context.Context) (T, error) {
		return fn(ctx, nil)
	})
	if err == nil || c.token == "" || !integrations.IsUnauthorized(err) {
		return v, err
	}

	c.logger.Info(msgAnonymousFallback)
	return retry.Value(ctx, c.retrier, name, func(ctx context.Context) (T, error) {
		return fn(ctx, anonymous)
	})
}

// LatestTag returns the tag name of the latest release.
func (c *Client) LatestTag(ctx context.Context) (string, error) {
	rel, err := c.LatestRelease(ctx)
	if err != nil {
		return "", err
	}
	return rel.TagName, nil
}
