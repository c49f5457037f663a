package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/config"
	"github.com/virtualcloset/closet/internal/storage"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the local database schema to the latest version.

This runs automatically before every command; use it directly to set up
the database ahead of time or to verify an upgrade.`,
		RunE: runMigrate,
	}
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}
	dbPath = config.ExpandPath(dbPath)

	common.LogInfo("Running database migrations", common.Fields{
		"database":       dbPath,
		"target_version": storage.ExpectedSchemaVersion,
	})

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return common.NewUserError("could not open the closet database at "+dbPath, err)
	}
	defer func() { _ = store.Close() }()

	if err := store.Migrate(cmd.Context()); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	common.LogInfo("Database migrations completed successfully", common.Fields{
		"version": storage.ExpectedSchemaVersion,
	})
	return nil
}
