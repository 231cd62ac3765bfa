// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pr-analytics",
	Short: "A CLI tool to analyze pull request activity across repositories.",
	Long: `pr-analytics fetches pull request records for one or more GitHub
repositories and produces structured analytics: monthly activity counts,
lifecycle metrics, contributor rankings, and cross-repository comparisons
when several repositories are analyzed together.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// Add a persistent flag for verbose output, available to all commands.
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug logging")
}
