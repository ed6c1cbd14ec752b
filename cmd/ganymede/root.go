package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ganymede",
	Short: "Ganymede - resilient API gateway client",
	Long: `Ganymede is a resilient client for HTTP API gateways.

Every request passes through a local resilience pipeline:
  - Per-category rate limiting with fixed windows
  - Error classification (network, rate-limit, server, client, auth)
  - Bounded retries with exponential backoff
  - An offline queue that replays requests after connectivity outages
  - Newline-delimited JSON stream decoding`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
