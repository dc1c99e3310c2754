package main

import (
	"fmt"

	"aura-hype/internal/config"
	"aura-hype/internal/database"
	"aura-hype/internal/logger"

	"github.com/spf13/cobra"
)

// bootDB loads config and opens the database pool
func bootDB() (database.Service, error) {
	cfg := config.Load()
	return database.New(cfg.Database)
}

// catalogctl migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer db.Close()

		if err := database.RunMigrations(db.DB(), logger.NewWithDefaults()); err != nil {
			return err
		}

		version, err := database.CurrentVersion(db.DB())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %d\n", version)
		return nil
	},
}

// catalogctl migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := bootDB()
		if err != nil {
			return err
		}
		defer db.Close()

		return database.GetMigrationStatus(db.DB())
	},
}
