package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rshade/marketdash/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Loads the configuration file, project overlay and environment overrides and
checks them for correctness:
- api.base_url is an absolute http or https URL
- api.timeout_seconds is positive
- refresh.schedule, when set, is a valid cron spec
- display.location is a known time zone`,
		Example: `  # Validate current configuration
  marketdash config validate

  # Validate and show detailed information
  marketdash config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate loads the configuration strictly, without the fallback
// to defaults the config commands otherwise get.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	path, _ := cmd.Flags().GetString("config")
	workDir, _ := os.Getwd()

	cfg, err := config.Load(path, workDir)
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	source := cfg.Path()
	if source == "" {
		source = "(defaults)"
	}
	schedule := cfg.Refresh.Schedule
	if schedule == "" {
		schedule = "(manual refresh only)"
	}

	cmd.Println()
	cmd.Println("Configuration details:")
	cmd.Printf("  Config file: %s\n", source)
	cmd.Printf("  API base URL: %s\n", cfg.API.BaseURL)
	cmd.Printf("  Request timeout: %s\n", cfg.API.Timeout())
	cmd.Printf("  Auto refresh: %s\n", schedule)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	cmd.Printf("  Log file: %s\n", cfg.Logging.File)
}
