// Package github provides a client for the GitHub releases API.
//
// # Overview
//
// The client lists the releases of a repository (astral-sh/ruff by default)
// and looks up the latest release. Every call runs inside a
// [retry.Retrier], so transient failures are retried with backoff.
//
// # Usage
//
//	client := github.NewClient(github.Options{Token: os.Getenv("GITHUB_TOKEN")})
//
//	tags, err := client.ReleaseTags(ctx)
//	if err != nil {
//	    return err
//	}
//
//	latest, err := client.LatestRelease(ctx)
//
// # Authentication
//
// A token is optional but recommended to avoid rate limits. Without a token
// the API allows 60 requests/hour, with one 5000 requests/hour.
//
// When a call made with a token fails because the token is invalid, the call
// is repeated once without the token. The fallback is logged, does not count
// as a retry, and never happens for anonymous clients.
//
// # Caching
//
// Release listings are cached through [cache.Cache] when Options.CacheTTL is
// positive. The latest release is never cached.
//
// [retry.Retrier]: github.com/astral-sh/ruff-action/pkg/retry.Retrier
// [cache.Cache]: github.com/astral-sh/ruff-action/pkg/cache.Cache
package github
