// Package integrations provides the HTTP plumbing shared by API clients.
//
// # Overview
//
// [Client] wraps net/http with the conventions every caller in ruff-action
// needs:
//   - default headers (Accept, Authorization) with per-request overrides
//   - status mapping to [StatusError], wrapping [ErrNotFound],
//     [ErrUnauthorized] or [ErrNetwork]
//   - transient failures returned as [retry.RetryableError]
//   - Link header pagination via [Client.GetPage]
//   - optional response caching via [cache.Cache]
//   - streaming downloads via [Client.Download]
//
// The GitHub releases API lives in the [github] subpackage.
//
// [github]: github.com/astral-sh/ruff-action/pkg/integrations/github
// [cache.Cache]: github.com/astral-sh/ruff-action/pkg/cache.Cache
// [retry.RetryableError]: github.com/astral-sh/ruff-action/pkg/retry.RetryableError
package integrations
