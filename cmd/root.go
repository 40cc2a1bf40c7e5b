package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vitessce/vitcat/internal/config"
	"github.com/vitessce/vitcat/internal/logging"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "vitcat",
	Short: "vitcat - dataset view-configuration catalog",
	Long: `vitcat serves the catalog of dataset view configurations used by the
visualization frontend: which datasets exist, their data layers and the grid
layout of components that displays them.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $XDG_CONFIG_HOME/vitcat/config.yaml)")
}

func Execute() error {
	// Silence usage and errors to avoid cluttering output with Cobra defaults
	rootCmd.SilenceUsage = true
	rootCmd.SilenceErrors = true
	return rootCmd.Execute()
}

// loadSettings resolves the config and builds a logger from it.
func loadSettings() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}
