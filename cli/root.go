// Package cli holds the civictrack command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "civictrack",
		Short:         "CivicTrack - civic issue reporting backend",
		Long:          `CivicTrack serves the issue reporting API and runs the monthly suggestion jobs.`,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newSuggestionsCommand(),
	)
	return rootCmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
