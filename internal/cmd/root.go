package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "harnessctl",
	Short: "Reproducible verification harness runner",
	Long: `harnessctl orchestrates isolated verification runs against the working tree.
For each data point it injects the exported library files, pins the tracked
directories (rtl/, docs/, verification/) to the configured revision, runs the
data point's docker services in declaration order, and restores everything,
whatever the outcome.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
