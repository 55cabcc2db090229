package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/astral-sh/ruff-action/pkg/cache"
	"github.com/astral-sh/ruff-action/pkg/pipeline"
	"github.com/astral-sh/ruff-action/pkg/toolcache"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the tool cache and manage the API response cache",
	}

	cmd.AddCommand(c.cacheListCommand())
	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// toolStore opens the tool cache at dir, or the default location.
func toolStore(dir string) *toolcache.Store {
	if dir == "" {
		dir = toolcache.DefaultRoot()
	}
	return toolcache.NewStore(dir)
}

// cacheListCommand creates the "cache list" subcommand.
func (c *CLI) cacheListCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List installed ruff versions",
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := toolStore(dir).List()
			if err != nil {
				return err
			}
			n := 0
			for _, e := range entries {
				if e.Tool != pipeline.ToolName {
					continue
				}
				printKeyValue(e.Version, e.Arch+"  "+e.Path)
				n++
			}
			if n == 0 {
				printInfo("No ruff versions in the tool cache")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "tool-cache", firstEnv("RUNNER_TOOL_CACHE"), "tool cache directory")
	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var (
		redisURL string
		tools    bool
		dir      string
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cached API responses",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := newAPICache(ctx, redisURL, true)
			if err != nil {
				return err
			}
			defer store.Close()

			if cl, ok := store.(cache.Clearer); ok {
				count, err := cl.Clear(ctx)
				if err != nil {
					return fmt.Errorf("clear cache: %w", err)
				}
				printSuccess("Cleared %d cached responses", count)
				if fc, ok := store.(*cache.FileCache); ok {
					printDetail("Directory: %s", fc.Dir())
				}
			} else {
				printInfo("Cache is empty")
			}

			if !tools {
				return nil
			}
			root := filepath.Join(toolStore(dir).Root(), pipeline.ToolName)
			if err := os.RemoveAll(root); err != nil {
				return fmt.Errorf("clear tool cache: %w", err)
			}
			printSuccess("Removed installed ruff versions")
			printDetail("Directory: %s", root)
			return nil
		},
	}

	cmd.Flags().StringVar(&redisURL, "api-cache-url", firstEnv("RUFF_ACTION_CACHE_URL"), "redis URL of a shared API response cache")
	cmd.Flags().BoolVar(&tools, "tools", false, "also remove installed ruff versions from the tool cache")
	cmd.Flags().StringVar(&dir, "tool-cache", firstEnv("RUNNER_TOOL_CACHE"), "tool cache directory")
	return cmd
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the cache directory paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := apiCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			printKeyValue("tools", toolStore(dir).Root())
			printKeyValue("api", api)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "tool-cache", firstEnv("RUNNER_TOOL_CACHE"), "tool cache directory")
	return cmd
}
