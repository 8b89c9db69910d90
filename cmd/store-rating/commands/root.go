// Package commands implements the store-rating command line.
package commands

import (
	"fmt"
	"os"

	"github.com/bissquit/store-rating/internal/config"
	"github.com/bissquit/store-rating/internal/version"
	"github.com/spf13/cobra"
)

var configPath string

// rootCmd runs the HTTP server when invoked without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "store-rating",
	Short: "Store rating service",
	Long: `store-rating serves a role-based store rating API.

Administrators manage users and stores, normal users rate stores from 1 to 5,
and store owners review the ratings their stores receive.

Configuration is read from defaults, the optional --config YAML file and
STORERATING_ environment variables, in that order.`,
	Version: version.Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML config file")
	rootCmd.SilenceUsage = true

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
