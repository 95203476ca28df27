// Package main provides the mcsp CLI entry point.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mcsp",
	Short: "Collect and rank the most-cited software-engineering papers",
	Long: `mcsp collects papers published in major software-engineering venues,
enriches them with citation counts, and emits citation-ranked reports.

Paper metadata comes from the Crossref works API and citation counts
from the Semantic Scholar graph API. Raw API responses are cached in a
local SQLite database so repeated runs make no redundant network calls.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}
