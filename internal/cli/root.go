package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/marketdash/internal/config"
	"github.com/rshade/marketdash/internal/logging"
)

// Command annotations read by the root pre-run hook.
const (
	// annotationInteractive marks commands that may take over the terminal.
	annotationInteractive = "marketdash/interactive"
	// annotationLenientConfig lets a command run on defaults when the config
	// file cannot be loaded, so a broken file can be repaired.
	annotationLenientConfig = "marketdash/lenient-config"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// baseLogger is the untagged logger other components derive their own
// component loggers from.
var baseLogger = zerolog.Nop() //nolint:gochecknoglobals // Set once per command by setupLogging.

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath  string
	apiURL      string
	timeout     int
	debug       bool
	autoRefresh string
}

// NewRootCmd creates the root Cobra command for the marketdash CLI.
// Running it without a subcommand opens the dashboard.
func NewRootCmd(ver string) *cobra.Command {
	var (
		flags     globalFlags
		dashFlags dashboardFlags
		logResult *logging.LogPathResult
	)

	cmd := &cobra.Command{
		Use:     "marketdash",
		Short:   "Nasdaq market dashboard for the terminal",
		Long:    "marketdash shows the latest market analysis and the Nasdaq top 10 quotes from a market data backend.",
		Version: ver,
		Example: rootCmdExample,
		Annotations: map[string]string{
			annotationInteractive: "true",
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfig(cmd, flags); err != nil {
				return err
			}
			result := setupLogging(cmd)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, dashFlags)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "",
		"config file (default $MARKETDASH_CONFIG or ~/.marketdash/config.yaml)")
	pf.StringVar(&flags.apiURL, "api-url", "", "backend base URL (overrides api.base_url)")
	pf.IntVar(&flags.timeout, "timeout", 0, "per-request timeout in seconds (overrides api.timeout_seconds)")
	pf.BoolVar(&flags.debug, "debug", false, "enable debug logging")
	pf.StringVar(&flags.autoRefresh, "auto-refresh", "",
		`refresh on a cron schedule, e.g. "@every 5m" (overrides refresh.schedule)`)

	addDashboardFlags(cmd, &dashFlags)
	cmd.AddCommand(NewDashboardCmd(), NewSnapshotCmd(), newConfigCmd())

	return cmd
}

const rootCmdExample = `  # Open the dashboard against a local backend
  marketdash

  # Point at another backend and refresh every five minutes
  marketdash --api-url https://markets.example.com --auto-refresh "@every 5m"

  # Print one refresh as JSON
  marketdash snapshot --output json

  # Initialize configuration
  marketdash config init

  # Show one configuration value
  marketdash config get api.base_url`

// loadConfig resolves configuration in order: defaults, config file,
// project overlay, .env and environment, then explicitly set flags. The
// result is validated and stored as the global config.
func loadConfig(cmd *cobra.Command, flags globalFlags) error {
	if err := config.LoadDotEnv(""); err != nil {
		cmd.PrintErrf("Warning: %v\n", err)
	}

	workDir, _ := os.Getwd()
	cfg, err := config.Load(flags.configPath, workDir)
	if err != nil {
		if !hasAnnotation(cmd, annotationLenientConfig) {
			return err
		}
		cmd.PrintErrf("Warning: %v; using defaults\n", err)
		cfg = config.New()
	}

	fs := cmd.Flags()
	if fs.Changed("api-url") {
		cfg.API.BaseURL = flags.apiURL
	}
	if fs.Changed("timeout") {
		cfg.API.TimeoutSeconds = flags.timeout
	}
	if fs.Changed("auto-refresh") {
		cfg.Refresh.Schedule = flags.autoRefresh
	}

	if !hasAnnotation(cmd, annotationLenientConfig) {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
	}

	config.SetGlobalConfig(cfg)
	return nil
}

// hasAnnotation reports whether cmd or any of its parents carries key.
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}

// isInteractiveCommand reports whether cmd itself may take over the terminal.
func isInteractiveCommand(cmd *cobra.Command) bool {
	return cmd.Annotations[annotationInteractive] == "true"
}

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
		Annotations: map[string]string{
			annotationLenientConfig: "true",
		},
	}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigGetCmd(), NewConfigListCmd(), NewConfigValidateCmd())
	return cmd
}
