package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

// Runner file commands. Each variable names a file the runner reads after
// the step finishes.
const (
	envOutput = "GITHUB_OUTPUT"
	envPath   = "GITHUB_PATH"
)

// setOutput records a step output for later workflow steps. It reports
// whether a runner output file was available.
func setOutput(name, value string) (bool, error) {
	delim := "ghadelimiter_" + uuid.NewString()
	if strings.Contains(name, delim) || strings.Contains(value, delim) {
		return false, errs.New(errs.ErrCodeInternal, "unexpected delimiter in output %q", name)
	}
	return appendFileCommand(envOutput, fmt.Sprintf("%s<<%s\n%s\n%s\n", name, delim, value, delim))
}

// addPath prepends dir to PATH for this process and, on a runner, for all
// later workflow steps.
func addPath(dir string) (bool, error) {
	os.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return appendFileCommand(envPath, dir+"\n")
}

func appendFileCommand(env, line string) (bool, error) {
	path := os.Getenv(env)
	if path == "" {
		return false, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return false, errs.Wrap(errs.ErrCodeInvalidPath, err, "open %s", env)
	}
	defer f.Close()
	if _, err := f.WriteString(line); err != nil {
		return false, errs.Wrap(errs.ErrCodeInvalidPath, err, "write %s", env)
	}
	return true, nil
}
