package main

import (
	"context"

	"github.com/spf13/viper"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/config"
	"github.com/virtualcloset/closet/internal/service"
	"github.com/virtualcloset/closet/internal/storage"
)

// initStorage opens the local database and runs migrations, which also seed
// the singleton preferences and sync cursor rows on first use.
func initStorage(ctx context.Context) (service.Storage, error) {
	// Get database path from config
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = config.DefaultDatabasePath()
	}

	// Expand tilde and environment variables
	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, common.NewUserError("could not open the closet database at "+dbPath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, common.NewUserError("could not update the closet database schema", err)
	}

	return store, nil
}
