package cli

import (
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/ecoplus-hub/ecoplus/internal/daemon"
)

func init() {
	configCmd.Flags().BoolVar(&configWrite, "write", false, "Also save the effective config to $ECOPLUS_HOME/config.toml")
	rootCmd.AddCommand(configCmd)
}

var configWrite bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig()
	if err != nil {
		return err
	}
	if configWrite {
		if err := daemon.SaveConfig(cfg); err != nil {
			return err
		}
	}
	return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
}
