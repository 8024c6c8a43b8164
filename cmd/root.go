// Package cmd defines the CLI commands for the warn-scraper executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/USDepartmentofLabor/cdf-warn/internal/config"
	"github.com/USDepartmentofLabor/cdf-warn/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warn-scraper",
		Short: "Scrapes state WARN notice archives into a uniform record stream",
		Long: `warn-scraper collects Worker Adjustment and Retraining Notification
(WARN) notices from state government archives. Each state publishes its
archive differently: HTML tables, PDFs, spreadsheets, CSV exports, or
searchable JobLink portals. The scraper extracts each archive into rows,
cleans them, and maps state-specific column names onto a canonical
vocabulary so downstream consumers see one schema.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newSourcesCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadEnvironment reads configuration and builds the process logger.
func loadEnvironment() (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, logger, nil
}
