package cli

import (
	"github.com/spf13/cobra"
)

// resolveCommand creates the resolve command, which prints the concrete
// version an install would pick without downloading anything.
func (c *CLI) resolveCommand() *cobra.Command {
	var in inputs

	cmd := &cobra.Command{
		Use:   "resolve [version]",
		Short: "Resolve a version request to a ruff release",
		Example: `  ruff-action resolve latest
  ruff-action resolve "~=0.4.0"
  ruff-action resolve --version-file pyproject.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				in.version = args[0]
			}
			return c.runResolve(cmd, &in)
		},
	}

	in.addRequestFlags(cmd)
	return cmd
}

func (c *CLI) runResolve(cmd *cobra.Command, in *inputs) error {
	ctx := cmd.Context()

	opts := in.options()
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, apiCache, err := c.newRunner(ctx, in)
	if err != nil {
		return err
	}
	defer apiCache.Close()

	prog := newProgress(loggerFromContext(ctx))
	request := runner.VersionRequest(opts)
	resolved, err := runner.Resolve(ctx, request)
	if err != nil {
		return err
	}
	prog.done("Resolved " + request)

	printKeyValue("request", request)
	printKeyValue("ruff-version", resolved)
	_, err = setOutput("ruff-version", resolved)
	return err
}
