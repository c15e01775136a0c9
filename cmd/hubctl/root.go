package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"reseller_hub/internal/config"
	"reseller_hub/internal/database"
	"reseller_hub/internal/logger"
)

var version = "1.0.0"

func newRootCmd(cfg *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hubctl",
		Short: "Operator tooling for the reseller hub",
		Long: `hubctl runs maintenance and reporting tasks against the reseller hub
database without going through the HTTP API.

Configuration is read from the environment and an optional .env file:
  DATABASE_URL      - postgres:// URL, or sqlite://path for a local file
  ADMIN_PASSPHRASE  - required by "hubctl clear"
  TIMEZONE          - business time zone for the settlement week`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newMigrateCmd(cfg),
		newPayoutCmd(cfg),
		newExportCmd(cfg),
		newClearCmd(cfg),
	)
	return rootCmd
}

func execute(cfg *config.Config) int {
	log := logger.WithComponent("cmd")

	if err := newRootCmd(cfg).Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		return 1
	}
	return 0
}

func openDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { database.Close(db) }, nil
}

// createOutput creates name inside dir, creating dir when needed.
func createOutput(dir, name string) (*os.File, string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("create %s: %w", path, err)
	}
	return f, path, nil
}
