package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/astral-sh/ruff-action/internal/cli"
	errs "github.com/astral-sh/ruff-action/pkg/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c := cli.New(os.Stderr, cli.LogInfo)
	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		// ruff already reported its findings; keep its status.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if os.Getenv("GITHUB_ACTIONS") == "true" {
				fmt.Fprintf(os.Stdout, "::error::%s\n", exitErr)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, errs.UserMessage(err))
		// Runner annotation so the failure shows on the workflow summary.
		if os.Getenv("GITHUB_ACTIONS") == "true" {
			fmt.Fprintf(os.Stdout, "::error::%s\n", errs.UserMessage(err))
		}
		os.Exit(1)
	}
}
