package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/marketdash/internal/api"
	"github.com/rshade/marketdash/internal/config"
	"github.com/rshade/marketdash/internal/dashboard"
	"github.com/rshade/marketdash/internal/tui"
	"github.com/rshade/marketdash/pkg/version"
)

// FetchExitCode is the process exit code when a one-shot refresh fails.
const FetchExitCode = 2

// FetchExitError reports that output was produced but the refresh behind it
// failed. main uses ExitCode instead of the generic 1.
type FetchExitError struct {
	ExitCode int
	Err      error
}

func (e *FetchExitError) Error() string {
	return fmt.Sprintf("refresh failed: %v", e.Err)
}

func (e *FetchExitError) Unwrap() error {
	return e.Err
}

// newCoordinator builds the API client and coordinator from cfg.
func newCoordinator(ctx context.Context, cfg *config.Config) (*dashboard.Coordinator, error) {
	log := baseLogger

	client, err := api.NewClient(api.Options{
		BaseURL:      cfg.API.BaseURL,
		StocksPath:   cfg.API.StocksPath,
		AnalysisPath: cfg.API.AnalysisPath,
		Timeout:      cfg.API.Timeout(),
		UserAgent:    "marketdash/" + version.GetVersion(),
		Logger:       log,
	})
	if err != nil {
		return nil, fmt.Errorf("creating API client: %w", err)
	}

	logger.Debug().Ctx(ctx).
		Str("stocks_url", client.StocksURL()).
		Str("analysis_url", client.AnalysisURL()).
		Msg("API client ready")

	return dashboard.NewCoordinator(client, dashboard.WithLogger(log)), nil
}

// renderOptions maps display config onto tui.RenderOptions. Now is left
// zero so the interactive model follows the wall clock.
func renderOptions(cfg *config.Config, plain bool, width int) (tui.RenderOptions, error) {
	loc, err := cfg.Display.ResolveLocation()
	if err != nil {
		return tui.RenderOptions{}, err
	}
	return tui.RenderOptions{
		Width:    width,
		Plain:    plain,
		Markdown: cfg.Display.Markdown,
		Location: loc,
	}, nil
}

// stdoutFile returns the command's output as a file when it is one.
func stdoutFile(cmd *cobra.Command) *os.File {
	if f, ok := cmd.OutOrStdout().(*os.File); ok {
		return f
	}
	return nil
}

// writesToTerminal reports whether the command's output is a terminal.
func writesToTerminal(cmd *cobra.Command) bool {
	f := stdoutFile(cmd)
	return f != nil && isTerminal(f)
}
