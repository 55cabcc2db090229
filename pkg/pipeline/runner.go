package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/astral-sh/ruff-action/pkg/artifact"
	"github.com/astral-sh/ruff-action/pkg/cache"
	"github.com/astral-sh/ruff-action/pkg/checksum"
	"github.com/astral-sh/ruff-action/pkg/integrations/github"
	"github.com/astral-sh/ruff-action/pkg/manifest"
	"github.com/astral-sh/ruff-action/pkg/observability"
	"github.com/astral-sh/ruff-action/pkg/platform"
	"github.com/astral-sh/ruff-action/pkg/retry"
	"github.com/astral-sh/ruff-action/pkg/toolcache"
	"github.com/astral-sh/ruff-action/pkg/version"
)

// ToolName is the tool cache name and manifest package name.
const ToolName = "ruff"

// Config wires a Runner. Zero values select production defaults.
type Config struct {
	Token           string
	APIBaseURL      string            // GitHub API endpoint
	DownloadBaseURL string            // Release asset endpoint
	ToolCacheDir    string            // Defaults to toolcache.DefaultRoot()
	TempDir         string            // Scratch space for downloads
	Cache           cache.Cache       // API response cache
	CacheTTL        time.Duration     // 0 disables API response caching
	Policy          *retry.Policy     // Defaults to retry.DefaultPolicy()
	DownloadPolicy  *retry.Policy     // Defaults to artifact.DefaultDownloadPolicy()
	Checksums       *checksum.Store   // Defaults to checksum.Known()
	Detector        platform.Detector // Defaults to the host
	Logger          *log.Logger
}

// Runner encapsulates pipeline execution.
//
// The Runner is stateless apart from its collaborators; it doesn't store
// pipeline results.
type Runner struct {
	Catalog    *github.Client
	Downloader *artifact.Downloader
	Resolver   *version.Resolver
	Locator    *toolcache.Locator
	Acquirer   *artifact.Acquirer
	Manifest   *manifest.Extractor
	Detector   platform.Detector
	Logger     *log.Logger
}

// NewRunner builds a Runner and all of its collaborators from cfg.
func NewRunner(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	policy := retry.DefaultPolicy()
	if cfg.Policy != nil {
		policy = *cfg.Policy
	}
	retrier := retry.New(policy, logger)
	downloadPolicy := artifact.DefaultDownloadPolicy()
	if cfg.DownloadPolicy != nil {
		downloadPolicy = *cfg.DownloadPolicy
	}
	downloader := artifact.NewDownloader(artifact.NewAssetClient(cfg.Token), retry.New(downloadPolicy, logger), cfg.TempDir)

	catalog := github.NewClient(github.Options{
		Token:    cfg.Token,
		BaseURL:  cfg.APIBaseURL,
		Cache:    cfg.Cache,
		CacheTTL: cfg.CacheTTL,
		Retrier:  retrier,
		Logger:   logger,
	})

	root := cfg.ToolCacheDir
	if root == "" {
		root = toolcache.DefaultRoot()
	}
	store := toolcache.NewStore(root)

	sums := cfg.Checksums
	if sums == nil {
		sums = checksum.Known()
	}
	layout := artifact.DefaultLayout()
	if cfg.DownloadBaseURL != "" {
		layout.BaseURL = cfg.DownloadBaseURL
	}

	detector := cfg.Detector
	if detector == nil {
		detector = platform.NewDetector("", "")
	}

	acquirer := artifact.NewAcquirer(artifact.Options{
		Layout:     layout,
		Downloader: downloader,
		Checksums:  sums,
		Store:      store,
		Tool:       ToolName,
		TempDir:    cfg.TempDir,
		Logger:     logger,
	})

	return &Runner{
		Catalog:    catalog,
		Downloader: downloader,
		Resolver:   version.NewResolver(catalog, logger),
		Locator:    toolcache.NewLocator(store, ToolName, logger),
		Acquirer:   acquirer,
		Manifest:   manifest.NewExtractor(ToolName, logger),
		Detector:   detector,
		Logger:     logger,
	}
}

// Execute runs the complete resolve → cache-check → acquire pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	target, err := r.Detector.Detect(ctx)
	if err != nil {
		return nil, err
	}
	result := &Result{Platform: target.Platform, Arch: target.Arch}

	// Stage 1: Resolve
	resolveStart := time.Now()
	result.Request = r.VersionRequest(opts)
	resolved, err := r.Resolve(ctx, result.Request)
	result.Stats.ResolveTime = time.Since(resolveStart)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}

	// Stage 2: Cache check
	entry := r.Locator.TryGetCached(ctx, target.Arch, resolved)
	result.Version = entry.Version
	if entry.Hit() {
		result.Dir = entry.Path
		result.CacheInfo.ToolHit = true
		return result, nil
	}

	// Stage 3: Acquire
	hooks := observability.Install()
	acquireStart := time.Now()
	hooks.OnAcquireStart(ctx, resolved, target.Platform, target.Arch)
	acquired, err := r.Acquirer.Acquire(ctx, target.Platform, target.Arch, resolved, opts.Checksum)
	result.Stats.AcquireTime = time.Since(acquireStart)
	hooks.OnAcquireComplete(ctx, resolved, acquired.Dir, result.Stats.AcquireTime, err)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}

	result.Version = acquired.Version
	result.Dir = acquired.Dir
	r.Logger.Info("installed ruff",
		"version", result.Version,
		"path", result.Dir,
		"duration", result.Stats.AcquireTime)
	return result, nil
}

// Resolve turns a version request into a concrete version, firing the
// install hooks around the resolution.
func (r *Runner) Resolve(ctx context.Context, request string) (string, error) {
	hooks := observability.Install()
	start := time.Now()
	hooks.OnResolveStart(ctx, request)
	v, err := r.Resolver.Resolve(ctx, request)
	hooks.OnResolveComplete(ctx, request, v, time.Since(start), err)
	return v, err
}

// VersionRequest derives the version request from opts: the explicit
// version, else the version file, else a pyproject.toml discovered from Src
// upwards. Anything not found yields "latest".
func (r *Runner) VersionRequest(opts Options) string {
	if opts.Version != "" {
		return opts.Version
	}

	file := opts.VersionFile
	if file == "" {
		file = r.Manifest.FindPyproject(opts.Src, opts.Workspace)
	}
	if file == "" {
		r.Logger.Info("No version specified and no pyproject.toml found. Using latest.")
		return version.Latest
	}

	if spec, ok := r.Manifest.FromFile(file); ok {
		return spec
	}
	r.Logger.Info("Could not find ruff version in file. Using latest.", "file", file)
	return version.Latest
}
