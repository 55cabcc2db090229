package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
	"github.com/astral-sh/ruff-action/pkg/pipeline"
	"github.com/astral-sh/ruff-action/pkg/platform"
)

// ExitError reports that ruff ran and exited with a non-zero status.
// The process should exit with Code.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("ruff exited with status %d", e.Code)
}

// ruffBinary returns the path of the executable inside an install.
func ruffBinary(result *pipeline.Result) string {
	name := pipeline.ToolName
	if result.Platform == platform.Windows {
		name += ".exe"
	}
	return filepath.Join(result.Dir, name)
}

// runRuff runs the installed ruff with args followed by the src paths.
// Both are split on whitespace.
func runRuff(ctx context.Context, result *pipeline.Result, args, src string, logger *log.Logger) error {
	bin := ruffBinary(result)
	argv := append(strings.Fields(args), strings.Fields(src)...)
	logger.Info("running ruff", "args", strings.Join(argv, " "))

	cmd := exec.CommandContext(ctx, bin, argv...)
	cmd.Stdout = stdout
	cmd.Stderr = os.Stderr
	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		logger.Debug("ruff failed", "status", exitErr.ExitCode())
		return &ExitError{Code: exitErr.ExitCode()}
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "run %s", bin)
}
