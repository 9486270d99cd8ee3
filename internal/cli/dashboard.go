package cli

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rshade/marketdash/internal/config"
	"github.com/rshade/marketdash/internal/dashboard"
	"github.com/rshade/marketdash/internal/logging"
	"github.com/rshade/marketdash/internal/schedule"
	"github.com/rshade/marketdash/internal/tui"
)

// dashboardFlags are the output flags shared by the root and dashboard commands.
type dashboardFlags struct {
	plain         bool
	noInteractive bool
	forceColor    bool
}

func addDashboardFlags(cmd *cobra.Command, flags *dashboardFlags) {
	cmd.Flags().BoolVar(&flags.plain, "plain", false, "render once without colours or borders")
	cmd.Flags().BoolVar(&flags.noInteractive, "no-interactive", false, "render once with styling instead of running the dashboard")
	cmd.Flags().BoolVar(&flags.forceColor, "force-color", false, "style output even when NO_COLOR is set or stdout is not a terminal")
}

// NewDashboardCmd creates the dashboard command. On a terminal it runs the
// interactive dashboard; otherwise it renders a single snapshot.
func NewDashboardCmd() *cobra.Command {
	var flags dashboardFlags

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the interactive market dashboard",
		Long: `Opens the market dashboard: the latest market analysis above one card per
Nasdaq top 10 stock. Both are fetched together on start and on every refresh.

Keys: r refresh, up/down and pgup/pgdown scroll, q quit.

When stdout is not a terminal the dashboard is rendered once and the command exits.`,
		Example: `  # Open the dashboard
  marketdash dashboard

  # Refresh automatically every minute
  marketdash dashboard --auto-refresh "@every 1m"

  # Render once without interaction
  marketdash dashboard --no-interactive`,
		Annotations: map[string]string{
			annotationInteractive: "true",
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, flags)
		},
	}

	addDashboardFlags(cmd, &flags)
	return cmd
}

// runDashboard routes to the interactive program or a one-shot render based
// on the detected output mode.
func runDashboard(cmd *cobra.Command, flags dashboardFlags) error {
	ctx := cmd.Context()
	cfg := config.GetGlobalConfig()

	coordinator, err := newCoordinator(ctx, cfg)
	if err != nil {
		return err
	}

	mode := tui.DetectOutputModeForTTY(writesToTerminal(cmd), flags.forceColor, flags.plain, flags.noInteractive)
	logger.Debug().Ctx(ctx).Str("mode", mode.String()).Msg("output mode selected")

	if mode != tui.OutputModeInteractive {
		width := 0
		if mode == tui.OutputModeStyled {
			width = tui.TerminalWidth()
		}
		return renderSnapshotText(ctx, cmd, coordinator, cfg, mode == tui.OutputModePlain, width)
	}

	opts, err := renderOptions(cfg, false, tui.TerminalWidth())
	if err != nil {
		return err
	}
	return runInteractiveDashboard(ctx, coordinator, opts, cfg.Refresh.Schedule)
}

// runInteractiveDashboard runs the Bubble Tea program until the user quits.
// With a schedule, a cron trigger sends refresh requests into the program.
func runInteractiveDashboard(
	ctx context.Context,
	coordinator *dashboard.Coordinator,
	opts tui.RenderOptions,
	spec string,
) error {
	model := tui.NewDashboardModel(ctx, coordinator, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if spec != "" {
		trigger, err := schedule.New(spec, func() {
			p.Send(tui.RefreshRequestedMsg{})
		}, logging.ComponentLogger(baseLogger, "schedule"))
		if err != nil {
			return fmt.Errorf("auto refresh: %w", err)
		}
		trigger.Start()
		defer trigger.Stop()
	}

	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}
