package toolcache

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/astral-sh/ruff-action/pkg/observability"
)

// Locator answers whether a tool version is already cached.
type Locator struct {
	store  *Store
	tool   string
	logger *log.Logger
}

// NewLocator creates a Locator for tool. A nil logger uses log.Default().
func NewLocator(store *Store, tool string, logger *log.Logger) *Locator {
	if logger == nil {
		logger = log.Default()
	}
	return &Locator{store: store, tool: tool, logger: logger}
}

// Store returns the underlying store.
func (l *Locator) Store() *Store { return l.store }

// Hit reports whether the entry points at a cached directory.
func (e Entry) Hit() bool { return e.Path != "" }

// TryGetCached looks for a cached entry for arch matching version. The
// returned Version is the most specific cached version satisfying the
// request, or the request itself when nothing matches. Path is empty on a
// miss. It never touches the network.
func (l *Locator) TryGetCached(ctx context.Context, arch, v string) Entry {
	resolved := EvaluateVersions(l.store.FindAllVersions(l.tool, arch), v)
	if resolved == "" {
		resolved = v
	}

	path := l.store.Find(l.tool, resolved, arch)
	entry := Entry{Tool: l.tool, Version: resolved, Arch: arch, Path: path}
	if path == "" {
		observability.Cache().OnCacheMiss(ctx, "tool")
		l.logger.Debug("tool cache miss", "tool", l.tool, "version", v, "arch", arch)
		return entry
	}

	observability.Cache().OnCacheHit(ctx, "tool")
	l.logger.Info("Found in tool cache", "tool", l.tool, "version", resolved, "path", path)
	return entry
}
