package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 4

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS items (
					id TEXT PRIMARY KEY,
					images TEXT NOT NULL DEFAULT '[]',
					category TEXT NOT NULL,
					colors TEXT NOT NULL DEFAULT '[]',
					tags TEXT NOT NULL DEFAULT '[]',
					season TEXT,
					brand TEXT,
					url TEXT,
					notes TEXT,
					is_favorite INTEGER NOT NULL DEFAULT 0,
					status TEXT NOT NULL DEFAULT 'active',
					wear_count INTEGER NOT NULL DEFAULT 0,
					last_worn_at INTEGER,
					created_at INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_items_category ON items(category)`,
				`CREATE INDEX idx_items_status ON items(status)`,

				`CREATE TABLE IF NOT EXISTS capsules (
					id TEXT PRIMARY KEY,
					name TEXT NOT NULL,
					item_ids TEXT NOT NULL DEFAULT '[]'
				)`,

				`CREATE TABLE IF NOT EXISTS outfits (
					id TEXT PRIMARY KEY,
					item_ids TEXT NOT NULL DEFAULT '[]',
					occasion TEXT NOT NULL,
					capsule_id TEXT,
					is_favorite INTEGER NOT NULL DEFAULT 0,
					created_at INTEGER NOT NULL
				)`,
				`CREATE INDEX idx_outfits_occasion ON outfits(occasion)`,

				`CREATE TABLE IF NOT EXISTS wear_events (
					id TEXT PRIMARY KEY,
					outfit_id TEXT NOT NULL,
					worn_at INTEGER NOT NULL,
					item_ids_snapshot TEXT NOT NULL DEFAULT '[]'
				)`,
				`CREATE INDEX idx_wear_events_outfit ON wear_events(outfit_id)`,
				`CREATE INDEX idx_wear_events_worn_at ON wear_events(worn_at)`,

				`CREATE TABLE IF NOT EXISTS user_prefs (
					id INTEGER PRIMARY KEY CHECK (id = 1),
					avoid_repeat_days INTEGER NOT NULL DEFAULT 7,
					prefer_favorites INTEGER NOT NULL DEFAULT 0
				)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add updated_at for delta sync and backfill from existing timestamps",
		Up: func(tx *sql.Tx) error {
			now := time.Now().UnixMilli()

			alters := []string{
				`ALTER TABLE items ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE capsules ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE outfits ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE wear_events ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`,
				`ALTER TABLE user_prefs ADD COLUMN updated_at INTEGER NOT NULL DEFAULT 0`,
			}
			for _, query := range alters {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}

			// Backfill from the best timestamp each table already has.
			backfills := []struct {
				query string
				args  []any
			}{
				{`UPDATE items SET updated_at = created_at WHERE updated_at = 0`, nil},
				{`UPDATE capsules SET updated_at = ? WHERE updated_at = 0`, []any{now}},
				{`UPDATE outfits SET updated_at = created_at WHERE updated_at = 0`, nil},
				{`UPDATE wear_events SET updated_at = worn_at WHERE updated_at = 0`, nil},
				{`UPDATE user_prefs SET updated_at = ? WHERE updated_at = 0`, []any{now}},
			}
			for _, b := range backfills {
				if _, err := tx.Exec(b.query, b.args...); err != nil {
					return fmt.Errorf("failed to backfill updated_at: %w", err)
				}
			}

			indexes := []string{
				`CREATE INDEX idx_items_updated_at ON items(updated_at)`,
				`CREATE INDEX idx_capsules_updated_at ON capsules(updated_at)`,
				`CREATE INDEX idx_outfits_updated_at ON outfits(updated_at)`,
				`CREATE INDEX idx_wear_events_updated_at ON wear_events(updated_at)`,
			}
			for _, query := range indexes {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Add deleted_at tombstones so deletions survive sync",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`ALTER TABLE items ADD COLUMN deleted_at INTEGER`,
				`ALTER TABLE capsules ADD COLUMN deleted_at INTEGER`,
				`ALTER TABLE outfits ADD COLUMN deleted_at INTEGER`,
			}
			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query '%s': %w", query, err)
				}
			}
			return nil
		},
	},
	{
		Version:     4,
		Description: "Seed singleton prefs and sync cursor rows",
		Up: func(tx *sql.Tx) error {
			now := time.Now().UnixMilli()

			if _, err := tx.Exec(`CREATE TABLE IF NOT EXISTS sync_state (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				last_sync_at INTEGER NOT NULL DEFAULT 0
			)`); err != nil {
				return fmt.Errorf("failed to create sync_state table: %w", err)
			}

			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO sync_state (id, last_sync_at) VALUES (1, 0)`,
			); err != nil {
				return fmt.Errorf("failed to seed sync_state: %w", err)
			}

			if _, err := tx.Exec(
				`INSERT OR IGNORE INTO user_prefs (id, avoid_repeat_days, prefer_favorites, updated_at)
				 VALUES (1, 7, 0, ?)`, now,
			); err != nil {
				return fmt.Errorf("failed to seed user_prefs: %w", err)
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	// Apply migrations
	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		// Update version
		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
