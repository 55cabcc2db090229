package version

import (
	"context"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

// Catalog lists published releases. *github.Client satisfies it.
type Catalog interface {
	ReleaseTags(ctx context.Context) ([]string, error)
	LatestTag(ctx context.Context) (string, error)
}

// Resolver turns version requests into concrete release tags.
type Resolver struct {
	catalog Catalog
	logger  *log.Logger
}

// NewResolver creates a Resolver backed by catalog. A nil logger uses log.Default().
func NewResolver(catalog Catalog, logger *log.Logger) *Resolver {
	if logger == nil {
		logger = log.Default()
	}
	return &Resolver{catalog: catalog, logger: logger}
}

// Resolve returns the concrete tag for request. An empty request means
// "latest". Explicit versions are returned unchanged without contacting the
// catalog. A range no release satisfies yields a VERSION_NOT_FOUND error.
func (r *Resolver) Resolve(ctx context.Context, request string) (string, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		request = Latest
	}
	r.logger.Debug("resolving version", "request", request)

	spec := request
	if request == Latest {
		tag, err := r.catalog.LatestTag(ctx)
		if err != nil {
			return "", err
		}
		spec = tag
	}

	if IsExplicit(spec) {
		r.logger.Debug("version is explicit", "version", spec)
		return spec, nil
	}

	tags, err := r.catalog.ReleaseTags(ctx)
	if err != nil {
		return "", err
	}

	m := MaxSatisfying(tags, spec)
	if !m.Found() {
		return "", errs.New(errs.ErrCodeVersionNotFound, "No version found for %s", spec)
	}
	r.logger.Debug("resolved version", "request", request, "version", m.Tag, "stage", m.Stage)
	return m.Tag, nil
}
