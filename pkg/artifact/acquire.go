package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/astral-sh/ruff-action/pkg/checksum"
	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/toolcache"
)

// Options configures an [Acquirer]. Store and Downloader are required.
type Options struct {
	Layout     Layout
	Downloader *Downloader
	Checksums  *checksum.Store // Known digests; nil means none
	Store      *toolcache.Store
	Tool       string // Tool cache name; defaults to "ruff"
	TempDir    string // Scratch space for extraction; defaults to os.TempDir()
	Logger     *log.Logger
}

// Acquirer installs a concrete ruff version into the tool cache.
type Acquirer struct {
	layout     Layout
	downloader *Downloader
	checksums  *checksum.Store
	store      *toolcache.Store
	tool       string
	tempDir    string
	logger     *log.Logger
}

// NewAcquirer creates an Acquirer from opts.
func NewAcquirer(opts Options) *Acquirer {
	if opts.Layout.Naming == nil {
		base := opts.Layout.BaseURL
		opts.Layout = DefaultLayout()
		if base != "" {
			opts.Layout.BaseURL = base
		}
	}
	if opts.Tool == "" {
		opts.Tool = toolName
	}
	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Checksums == nil {
		opts.Checksums, _ = checksum.Parse(nil)
	}
	return &Acquirer{
		layout:     opts.Layout,
		downloader: opts.Downloader,
		checksums:  opts.Checksums,
		store:      opts.Store,
		tool:       opts.Tool,
		tempDir:    opts.TempDir,
		logger:     opts.Logger,
	}
}

// Result is an installed version.
type Result struct {
	Version string
	Dir     string // Tool cache directory holding the executable
	Cached  bool   // The entry already existed
}

// Acquire downloads version for platform/arch, verifies it and stores it in
// the tool cache. expected is an explicit SHA-256 digest; when empty the
// known checksums table is consulted, and when that has no entry the
// artifact is installed unverified with a warning. A checksum mismatch is a
// CHECKSUM_MISMATCH error and leaves no cache entry.
func (a *Acquirer) Acquire(ctx context.Context, plat, arch, version, expected string) (Result, error) {
	if dir := a.store.Find(a.tool, version, arch); dir != "" {
		a.logger.Debug("already cached", "version", version, "path", dir)
		return Result{Version: version, Dir: dir, Cached: true}, nil
	}

	desc, err := a.layout.Describe(version, plat, arch)
	if err != nil {
		return Result{}, err
	}

	a.logger.Info("Downloading ruff", "version", version, "url", desc.URL)
	archive, err := a.downloader.Download(ctx, desc.URL)
	if err != nil {
		return Result{}, fmt.Errorf("download %s: %w", desc.URL, err)
	}
	defer os.Remove(archive)
	a.logger.Debug("downloaded", "path", archive)

	if err := a.verify(archive, desc, expected); err != nil {
		return Result{}, err
	}

	extractDir, err := os.MkdirTemp(a.tempDir, "ruff-extract-")
	if err != nil {
		return Result{}, fmt.Errorf("create extract dir: %w", err)
	}
	defer os.RemoveAll(extractDir)

	if err := Extract(archive, desc.Extension, extractDir); err != nil {
		return Result{}, fmt.Errorf("extract %s: %w", desc.URL, err)
	}

	dir := extractDir
	if desc.Nested {
		dir = filepath.Join(extractDir, desc.Name)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Result{}, errs.Wrap(errs.ErrCodeInternal, err, "archive %s has unexpected layout", desc.URL)
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	a.logger.Debug("extracted", "dir", dir, "contents", strings.Join(names, ", "))

	cached, err := a.store.CacheDir(dir, a.tool, version, arch)
	if err != nil {
		return Result{}, fmt.Errorf("cache %s: %w", version, err)
	}
	return Result{Version: version, Dir: cached}, nil
}

func (a *Acquirer) verify(archive string, desc Descriptor, expected string) error {
	if expected == "" {
		if known, ok := a.checksums.Expected(desc.Version, desc.Platform, desc.Arch); ok {
			expected = known
		}
	}
	if expected == "" {
		a.logger.Warn("No checksum known for this version; skipping verification",
			"key", checksum.Key(desc.Arch, desc.Platform, desc.Version))
		return nil
	}
	if err := checksum.Validate(archive, expected); err != nil {
		return err
	}
	a.logger.Info("Checksum verified", "sha256", expected)
	return nil
}
