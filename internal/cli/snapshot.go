package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/rshade/marketdash/internal/config"
	"github.com/rshade/marketdash/internal/dashboard"
	"github.com/rshade/marketdash/internal/market"
	"github.com/rshade/marketdash/internal/tui"
)

// Snapshot output formats.
const (
	outputText = "text"
	outputJSON = "json"
)

// snapshotDocument is the JSON shape of one refresh. Prices are decimal
// strings so no precision is lost.
type snapshotDocument struct {
	Status    string                 `json:"status"`
	Error     string                 `json:"error,omitempty"`
	UpdatedAt *time.Time             `json:"updatedAt,omitempty"`
	Analysis  *market.MarketAnalysis `json:"analysis"`
	Stocks    []market.StockQuote    `json:"stocks"`
}

// NewSnapshotCmd creates the snapshot command, which runs one refresh and
// prints the result.
func NewSnapshotCmd() *cobra.Command {
	var (
		output     string
		plain      bool
		forceColor bool
		width      int
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch once and print the dashboard",
		Long: `Fetches the market analysis and the Nasdaq top 10 quotes together, prints
them and exits. The exit code is 2 when the refresh failed.`,
		Example: `  # Print the dashboard as text
  marketdash snapshot

  # Print without colours or borders
  marketdash snapshot --plain

  # Print as JSON
  marketdash snapshot --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch output {
			case outputText, outputJSON:
			default:
				return fmt.Errorf("unsupported output format %q (want %s or %s)", output, outputText, outputJSON)
			}

			ctx := cmd.Context()
			cfg := config.GetGlobalConfig()
			coordinator, err := newCoordinator(ctx, cfg)
			if err != nil {
				return err
			}

			if output == outputJSON {
				return renderSnapshotJSON(ctx, cmd.OutOrStdout(), coordinator)
			}

			mode := tui.DetectOutputModeForTTY(writesToTerminal(cmd), forceColor, plain, true)
			if width <= 0 && mode == tui.OutputModeStyled {
				width = tui.TerminalWidth()
			}
			return renderSnapshotText(ctx, cmd, coordinator, cfg, mode == tui.OutputModePlain, width)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", outputText, "output format: text or json")
	cmd.Flags().BoolVar(&plain, "plain", false, "disable colours and borders")
	cmd.Flags().BoolVar(&forceColor, "force-color", false, "style output even when stdout is not a terminal")
	cmd.Flags().IntVar(&width, "width", 0, "render width in columns (default: terminal width)")

	return cmd
}

// renderSnapshotText runs one refresh and writes RenderDashboard output.
func renderSnapshotText(
	ctx context.Context,
	cmd *cobra.Command,
	coordinator *dashboard.Coordinator,
	cfg *config.Config,
	plain bool,
	width int,
) error {
	opts, err := renderOptions(cfg, plain, width)
	if err != nil {
		return err
	}

	state, refreshErr := coordinator.Refresh(ctx)
	opts.Now = time.Now()

	out := RenderSnapshot(state, opts)
	if _, err := io.WriteString(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	return fetchExit(refreshErr)
}

// RenderSnapshot renders state for one-shot output, with a trailing newline.
func RenderSnapshot(state dashboard.ViewState, opts tui.RenderOptions) string {
	return strings.TrimRight(tui.RenderDashboard(state, opts), "\n") + "\n"
}

// renderSnapshotJSON runs one refresh and writes it as indented JSON.
func renderSnapshotJSON(ctx context.Context, w io.Writer, coordinator *dashboard.Coordinator) error {
	state, refreshErr := coordinator.Refresh(ctx)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newSnapshotDocument(state)); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return fetchExit(refreshErr)
}

func newSnapshotDocument(state dashboard.ViewState) snapshotDocument {
	doc := snapshotDocument{
		Status:   state.Status.String(),
		Analysis: state.Analysis,
		Stocks:   state.Stocks,
	}
	if doc.Stocks == nil {
		doc.Stocks = []market.StockQuote{}
	}
	if state.Err != nil {
		doc.Error = state.Err.Error()
	}
	if !state.UpdatedAt.IsZero() {
		updated := state.UpdatedAt.UTC()
		doc.UpdatedAt = &updated
	}
	return doc
}

// fetchExit wraps a refresh failure so main exits with FetchExitCode.
func fetchExit(err error) error {
	if err == nil {
		return nil
	}
	var exitErr *FetchExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return &FetchExitError{ExitCode: FetchExitCode, Err: err}
}
