package checksum

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/retry"
	"github.com/astral-sh/ruff-action/pkg/version"
)

const digestSuffix = ".sha256"

// Fetcher downloads small text documents. *integrations.Client satisfies it.
type Fetcher interface {
	GetText(ctx context.Context, url string) (string, error)
}

// KeyFromURL derives the table key from a release asset URL such as
// .../download/0.5.0/ruff-x86_64-unknown-linux-gnu.tar.gz.sha256.
// Artifact names carrying the version (ruff-0.4.10-x86_64-...) resolve to
// the same key as unsuffixed ones.
func KeyFromURL(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInvalidInput, err, "parse %s", rawURL)
	}
	file := path.Base(u.Path)
	tag := path.Base(path.Dir(u.Path))
	if !strings.HasSuffix(file, digestSuffix) || tag == "." || tag == "/" {
		return "", errs.New(errs.ErrCodeInvalidInput, "not a checksum asset: %s", rawURL)
	}

	name := strings.TrimSuffix(file, digestSuffix)
	for _, ext := range []string{".tar.gz", ".zip"} {
		name = strings.TrimSuffix(name, ext)
	}
	name, ok := strings.CutPrefix(name, "ruff-")
	if !ok {
		return "", errs.New(errs.ErrCodeInvalidInput, "unexpected artifact name: %s", file)
	}
	v := version.Clean(tag)
	name = strings.TrimPrefix(name, v+"-")
	return name + "-" + v, nil
}

// ParseDigest returns the digest from a .sha256 file body, which may be
// followed by a file name.
func ParseDigest(body string) (string, error) {
	fields := strings.Fields(body)
	if len(fields) == 0 {
		return "", errs.New(errs.ErrCodeInvalidInput, "empty checksum file")
	}
	digest := fields[0]
	if err := errs.ValidateChecksum(digest); err != nil {
		return "", err
	}
	return strings.ToLower(digest), nil
}

// Record downloads every .sha256 asset in urls that is not already in the
// table and stores its digest. URLs that do not name a checksum asset are
// skipped. A nil retrier fetches each URL once. It returns the number of
// entries added.
func (s *Store) Record(ctx context.Context, f Fetcher, r *retry.Retrier, logger *log.Logger, urls []string) (int, error) {
	if logger == nil {
		logger = log.Default()
	}

	added := 0
	for _, u := range urls {
		key, err := KeyFromURL(u)
		if err != nil {
			logger.Debug("skipping asset", "url", u, "reason", err)
			continue
		}
		if _, ok := s.Lookup(key); ok {
			continue
		}

		fetch := func(ctx context.Context) (string, error) { return f.GetText(ctx, u) }
		var body string
		if r != nil {
			body, err = retry.Value(ctx, r, "download "+key+" checksum", fetch)
		} else {
			body, err = fetch(ctx)
		}
		if err != nil {
			return added, fmt.Errorf("fetch %s: %w", u, err)
		}

		digest, err := ParseDigest(body)
		if err != nil {
			return added, fmt.Errorf("parse %s: %w", u, err)
		}
		s.Set(key, digest)
		added++
		logger.Debug("recorded checksum", "key", key)
	}
	return added, nil
}
