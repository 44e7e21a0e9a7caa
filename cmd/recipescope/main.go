// Package main provides the recipescope CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "recipescope",
		Short: "Quality qualification for Yocto recipe reports",
		Long: `Recipescope evaluates the quality report of a Yocto build against
configurable per-category thresholds and reports whether the project
and each recipe qualify.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newEvaluateCmd(),
		newStatsCmd(),
		newRecipesCmd(),
		newUploadCmd(),
		newHistoryCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
