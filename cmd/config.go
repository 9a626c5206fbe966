package cmd

import (
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manages the lazywarden configuration file",
	Long: `Provides commands for working with the TOML configuration file passed
through --config.

Examples:
  # Write the current settings to lazywarden.toml
  lazywarden config init

  # Write them somewhere else, replacing an existing file
  lazywarden config init ~/.config/lazywarden/config.toml --force`,
}

func init() {
	configCmd.AddCommand(configInitCmd)
}
