package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mercator-hq/ganymede/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Load a configuration file, apply defaults and environment overrides,
and report every validation error found.

Examples:
  # Validate the default config file
  ganymede validate

  # Validate a specific file
  ganymede validate --config /etc/ganymede/config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		var validationErr config.ValidationError
		if errors.As(err, &validationErr) {
			fmt.Printf("Configuration is invalid (%d errors):\n", len(validationErr.Errors))
			for _, fieldErr := range validationErr.Errors {
				fmt.Printf("  - %s\n", fieldErr.Error())
			}
			return fmt.Errorf("validation failed")
		}
		return err
	}

	fmt.Printf("Configuration %s is valid.\n", cfgFile)
	fmt.Printf("  Base URL:   %s\n", cfg.HTTP.BaseURL)
	fmt.Printf("  Retries:    %d attempts, %s base delay\n", cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay)
	fmt.Printf("  Categories: %d\n", len(cfg.Categories))
	if cfg.Queue.Persist {
		fmt.Printf("  Queue:      persistent (%s)\n", cfg.Queue.JournalPath)
	} else {
		fmt.Printf("  Queue:      in-memory\n")
	}
	return nil
}
