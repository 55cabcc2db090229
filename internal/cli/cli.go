package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/astral-sh/ruff-action/pkg/buildinfo"
	"github.com/astral-sh/ruff-action/pkg/cache"
	"github.com/astral-sh/ruff-action/pkg/observability"
	"github.com/astral-sh/ruff-action/pkg/pipeline"
	"github.com/astral-sh/ruff-action/pkg/platform"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "ruff-action"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger  *log.Logger
	verbose bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Install ruff from GitHub releases",
		Long:         `ruff-action resolves a ruff version request (an exact version, a semver range, a PEP 440 specifier or "latest"), downloads and verifies the matching release and keeps it in a local tool cache.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
				observability.NewLogHooks(c.Logger).Register()
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.installCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.checksumsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// Execute runs the root command with ctx.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// =============================================================================
// Cache Factory
// =============================================================================

// newAPICache opens the API response cache. A redis URL selects a shared
// redis cache; otherwise responses are kept in files under the user cache
// directory. A disabled cache drops everything.
func newAPICache(ctx context.Context, redisURL string, enabled bool) (cache.Cache, error) {
	if !enabled {
		return cache.NewNullCache(), nil
	}
	if redisURL != "" {
		rc, err := cache.NewRedisCache(ctx, redisURL)
		if err != nil {
			return nil, err
		}
		return rc, nil
	}
	dir, err := apiCacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newRunner builds the install pipeline from command inputs. The returned
// cache must be closed by the caller.
func (c *CLI) newRunner(ctx context.Context, in *inputs) (*pipeline.Runner, cache.Cache, error) {
	if err := in.validateURLs(); err != nil {
		return nil, nil, err
	}
	apiCache, err := newAPICache(ctx, in.cacheURL, in.cacheTTL > 0)
	if err != nil {
		return nil, nil, err
	}
	runner := pipeline.NewRunner(pipeline.Config{
		Token:           in.token,
		APIBaseURL:      in.apiURL,
		DownloadBaseURL: in.downloadURL,
		ToolCacheDir:    in.toolCache,
		TempDir:         os.Getenv("RUNNER_TEMP"),
		Cache:           apiCache,
		CacheTTL:        in.cacheTTL,
		Detector:        platform.NewDetector(in.platform, in.arch),
		Logger:          loggerFromContext(ctx),
	})
	return runner, apiCache, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/ruff-action/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// apiCacheDir returns the directory holding cached API responses.
func apiCacheDir() (string, error) {
	dir, err := cacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "api"), nil
}
