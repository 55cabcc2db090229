package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/astral-sh/ruff-action/pkg/pipeline"
)

// installCommand creates the install command: resolve, cache-check and
// acquire ruff, then publish its location to later workflow steps.
func (c *CLI) installCommand() *cobra.Command {
	var in inputs

	cmd := &cobra.Command{
		Use:   "install [version]",
		Short: "Install ruff into the tool cache",
		Long: `Install ruff into the tool cache.

The version is taken from the argument or --version, else from --version-file,
else from the nearest pyproject.toml above --src. Without any of these the
latest release is installed.

On a GitHub Actions runner the install directory is added to GITHUB_PATH and
the installed version is written to the "ruff-version" step output.

Afterwards ruff is run with --args followed by the --src paths, and its exit
status becomes the exit status of this command. Pass --args "" to only install.`,
		Example: `  ruff-action install
  ruff-action install 0.4.10
  ruff-action install --version ">=0.5,<0.7"
  ruff-action install --version-file requirements-dev.txt
  ruff-action install --args "format --check" --src "src tests"
  ruff-action install --args ""`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				in.version = args[0]
			}
			return c.runInstall(cmd, &in)
		},
	}

	in.addInstallFlags(cmd)
	return cmd
}

func (c *CLI) runInstall(cmd *cobra.Command, in *inputs) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	opts := in.options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, apiCache, err := c.newRunner(ctx, in)
	if err != nil {
		return err
	}
	defer apiCache.Close()

	spinner := newSpinnerWithContext(ctx, "Installing ruff...")
	spinner.Start()
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Install failed")
		return err
	}
	spinner.StopWithSuccess("Installed ruff " + StyleHighlight.Render(result.Version))

	printKeyValue("ruff-version", result.Version)
	printKeyValue("ruff-path", result.Dir)
	printKeyValue("target", result.Arch+"-"+result.Platform)
	printInstallStats(result.CacheInfo.ToolHit, result.Stats.ResolveTime, result.Stats.AcquireTime)

	if err := publish(result, logger); err != nil {
		return err
	}
	if in.args == "" {
		return nil
	}
	return runRuff(ctx, result, in.args, in.src, logger)
}

// publish exposes the install to later workflow steps.
func publish(result *pipeline.Result, logger *log.Logger) error {
	onPath, err := addPath(result.Dir)
	if err != nil {
		return err
	}
	wrote, err := setOutput("ruff-version", result.Version)
	if err != nil {
		return err
	}
	logger.Debug("published install", "github_path", onPath, "github_output", wrote)
	return nil
}
