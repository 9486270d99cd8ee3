package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/marketdash/internal/config"
)

// NewConfigGetCmd creates the config get command, which prints one
// effective configuration value.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print one configuration value",
		Long: `Prints the effective value of a dotted configuration key after the config
file, environment variables and global flags have been applied.`,
		Example: `  marketdash config get api.base_url
  marketdash config get refresh.schedule`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if errors.Is(err, config.ErrUnknownKey) {
				return fmt.Errorf("%w (see 'marketdash config list')", err)
			}
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}

// NewConfigListCmd creates the config list command, which prints every
// effective configuration value.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Short:   "Print all configuration values",
		Example: `  marketdash config list`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flat, err := config.GetGlobalConfig().Flatten()
			if err != nil {
				return err
			}
			for _, k := range config.SortedKeys(flat) {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, flat[k])
			}
			return nil
		},
	}
}
