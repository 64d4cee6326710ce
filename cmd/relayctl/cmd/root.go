package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "Relay CLI tool",
	Long: `relayctl is a command-line interface for operating the relay.

Available commands:
  health    Probe a running relay's health endpoint

Use "relayctl [command] --help" for more information about a specific command.`,
}

// Execute executes the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
