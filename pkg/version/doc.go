// Package version resolves ruff version requests to concrete release tags.
//
// A request is one of:
//   - "latest": the release GitHub marks as latest
//   - an explicit version such as "0.5.0" or "v0.4.10", returned verbatim
//     without any network call
//   - a range or specifier, matched against all published release tags
//
// Ranges are evaluated in two stages. Semantic-version range rules come
// first (github.com/Masterminds/semver/v3). If no tag satisfies the request,
// or the request is not a valid semver range, PEP 440 specifier rules are
// tried next (github.com/aquasecurity/go-pep440-version). The maximal match
// of the first stage that finds one wins; the returned value is always the
// original tag string.
package version
