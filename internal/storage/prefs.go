package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/model"
)

// GetPrefs returns the singleton user preferences row. Migrations seed it
// on first open, so a missing row means a corrupted database.
func (s *SQLiteStore) GetPrefs(ctx context.Context) (*model.UserPrefs, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPrefs(ctx, s.db)
}

// SavePrefs overwrites the singleton user preferences row.
func (s *SQLiteStore) SavePrefs(ctx context.Context, prefs *model.UserPrefs) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePrefs(prefs); err != nil {
		return err
	}
	return savePrefs(ctx, s.db, prefs)
}

// GetLastSyncAt reads the per-device sync cursor. Zero means never synced.
func (s *SQLiteStore) GetLastSyncAt(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return getLastSyncAt(ctx, s.db)
}

// SetLastSyncAt durably advances the per-device sync cursor.
func (s *SQLiteStore) SetLastSyncAt(ctx context.Context, ts int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return setLastSyncAt(ctx, s.db, ts)
}

func getPrefs(ctx context.Context, q dbtx) (*model.UserPrefs, error) {
	var prefs model.UserPrefs
	err := q.QueryRowContext(ctx, `
		SELECT avoid_repeat_days, prefer_favorites, updated_at
		FROM user_prefs WHERE id = ?
	`, model.PrefsID).Scan(&prefs.AvoidRepeatDays, &prefs.PreferFavorites, &prefs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user prefs: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user prefs: %w", err)
	}
	return &prefs, nil
}

func savePrefs(ctx context.Context, q dbtx, prefs *model.UserPrefs) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO user_prefs (id, avoid_repeat_days, prefer_favorites, updated_at)
		VALUES (?, ?, ?, ?)
	`, model.PrefsID, prefs.AvoidRepeatDays, prefs.PreferFavorites, prefs.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user prefs: %w", err)
	}
	return nil
}

func getLastSyncAt(ctx context.Context, q dbtx) (int64, error) {
	var ts int64
	err := q.QueryRowContext(ctx, `SELECT last_sync_at FROM sync_state WHERE id = 1`).Scan(&ts)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get sync cursor: %w", err)
	}
	return ts, nil
}

func setLastSyncAt(ctx context.Context, q dbtx, ts int64) error {
	_, err := q.ExecContext(ctx, `
		INSERT OR REPLACE INTO sync_state (id, last_sync_at) VALUES (1, ?)
	`, ts)
	if err != nil {
		return fmt.Errorf("failed to set sync cursor: %w", err)
	}
	return nil
}
