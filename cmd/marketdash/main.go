// Package main is the marketdash command.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/marketdash/internal/cli"
	"github.com/rshade/marketdash/pkg/version"
)

func main() {
	if err := run(); err != nil {
		var exitErr *cli.FetchExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(extractExitCode(err))
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	root.SilenceErrors = true
	return root.ExecuteContext(ctx)
}

// extractExitCode maps an error returned by run to a process exit code.
func extractExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *cli.FetchExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode
	}
	return 1
}
