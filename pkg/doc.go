// Package pkg provides the libraries behind ruff-action, which installs the
// ruff linter from its GitHub releases.
//
// # Overview
//
// The pkg directory is organized into four areas:
//
//  1. Resolution: [version] resolves version requests against the release
//     catalog and [manifest] reads requests out of pyproject.toml and
//     requirements files
//  2. Acquisition: [artifact] computes download URLs, downloads, verifies
//     and extracts release archives, with digests from [checksum]
//  3. Infrastructure: [toolcache] stores installed versions, [cache] keeps
//     API responses, [retry] adds backoff and timeouts, [platform] detects
//     the target triple and [observability] exposes hooks
//  4. Orchestration: [pipeline] runs resolve → cache-check → acquire
//
// [integrations] holds the HTTP client shared by the GitHub release catalog
// in [github] and the asset downloader.
//
// # Architecture
//
//	version request (input, version file or pyproject.toml)
//	         ↓
//	    [version] package (exact, semver range, PEP 440 or latest)
//	         ↓
//	    [toolcache] package (hit: done)
//	         ↓
//	    [artifact] package (download → verify → extract)
//	         ↓
//	    [toolcache] entry with the ruff executable
//
// # Quick Start
//
//	runner := pipeline.NewRunner(pipeline.Config{Token: os.Getenv("GITHUB_TOKEN")})
//	result, err := runner.Execute(ctx, pipeline.Options{Version: "~=0.5.0"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Version, result.Dir)
//
// [version]: github.com/astral-sh/ruff-action/pkg/version
// [manifest]: github.com/astral-sh/ruff-action/pkg/manifest
// [artifact]: github.com/astral-sh/ruff-action/pkg/artifact
// [checksum]: github.com/astral-sh/ruff-action/pkg/checksum
// [toolcache]: github.com/astral-sh/ruff-action/pkg/toolcache
// [cache]: github.com/astral-sh/ruff-action/pkg/cache
// [retry]: github.com/astral-sh/ruff-action/pkg/retry
// [platform]: github.com/astral-sh/ruff-action/pkg/platform
// [observability]: github.com/astral-sh/ruff-action/pkg/observability
// [pipeline]: github.com/astral-sh/ruff-action/pkg/pipeline
// [integrations]: github.com/astral-sh/ruff-action/pkg/integrations
// [github]: github.com/astral-sh/ruff-action/pkg/integrations/github
package pkg
