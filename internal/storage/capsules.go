package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/model"
)

const capsuleColumns = `id, name, item_ids, updated_at, deleted_at`

// SaveCapsule inserts or replaces a capsule.
func (s *SQLiteStore) SaveCapsule(ctx context.Context, capsule *model.Capsule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCapsule(capsule); err != nil {
		return err
	}
	return saveCapsule(ctx, s.db, capsule)
}

// GetCapsuleByID returns one live capsule, or common.ErrNotFound.
func (s *SQLiteStore) GetCapsuleByID(ctx context.Context, id string) (*model.Capsule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getCapsuleByID(ctx, s.db, id)
}

// GetCapsules returns all live capsules ordered by name.
func (s *SQLiteStore) GetCapsules(ctx context.Context) ([]model.Capsule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCapsules(ctx, s.db)
}

// DeleteCapsule tombstones a capsule.
func (s *SQLiteStore) DeleteCapsule(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteCapsule(ctx, s.db, id, at)
}

// GetCapsulesUpdatedSince returns capsules modified after the cursor,
// tombstones included.
func (s *SQLiteStore) GetCapsulesUpdatedSince(ctx context.Context, since int64) ([]model.Capsule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCapsulesUpdatedSince(ctx, s.db, since)
}

// UpsertCapsules bulk-writes capsules with overwrite-on-conflict.
func (s *SQLiteStore) UpsertCapsules(ctx context.Context, capsules []model.Capsule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertCapsules(ctx, s.db, capsules)
}

func saveCapsule(ctx context.Context, q dbtx, capsule *model.Capsule) error {
	itemIDs, err := encodeStringList(capsule.ItemIDs)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT OR REPLACE INTO capsules (id, name, item_ids, updated_at, deleted_at)
		VALUES (?, ?, ?, ?, ?)
	`, capsule.ID, capsule.Name, itemIDs, capsule.UpdatedAt, nullMillis(capsule.DeletedAt))
	if err != nil {
		return fmt.Errorf("failed to save capsule %s: %w", capsule.ID, err)
	}
	return nil
}

func getCapsuleByID(ctx context.Context, q dbtx, id string) (*model.Capsule, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+capsuleColumns+`
		FROM capsules
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	capsule, err := scanCapsule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("capsule %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get capsule %s: %w", id, err)
	}
	return capsule, nil
}

func getCapsules(ctx context.Context, q dbtx) ([]model.Capsule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+capsuleColumns+`
		FROM capsules
		WHERE deleted_at IS NULL
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query capsules: %w", err)
	}
	return collectCapsules(rows)
}

func deleteCapsule(ctx context.Context, q dbtx, id string, at int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE capsules SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, at, at, id)
	if err != nil {
		return fmt.Errorf("failed to delete capsule %s: %w", id, err)
	}
	return nil
}

func getCapsulesUpdatedSince(ctx context.Context, q dbtx, since int64) ([]model.Capsule, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+capsuleColumns+`
		FROM capsules
		WHERE updated_at > ?
		ORDER BY updated_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query changed capsules: %w", err)
	}
	return collectCapsules(rows)
}

func upsertCapsules(ctx context.Context, q dbtx, capsules []model.Capsule) error {
	for i := range capsules {
		if err := validateCapsule(&capsules[i]); err != nil {
			return fmt.Errorf("capsule at index %d: %w", i, err)
		}
		if err := saveCapsule(ctx, q, &capsules[i]); err != nil {
			return err
		}
	}
	return nil
}

func scanCapsule(row rowScanner) (*model.Capsule, error) {
	var (
		capsule   model.Capsule
		itemIDs   string
		deletedAt sql.NullInt64
	)

	err := row.Scan(&capsule.ID, &capsule.Name, &itemIDs, &capsule.UpdatedAt, &deletedAt)
	if err != nil {
		return nil, err
	}

	capsule.DeletedAt = deletedAt.Int64
	if capsule.ItemIDs, err = decodeStringList(itemIDs); err != nil {
		return nil, err
	}
	return &capsule, nil
}

func collectCapsules(rows *sql.Rows) ([]model.Capsule, error) {
	defer func() { _ = rows.Close() }()

	var capsules []model.Capsule
	for rows.Next() {
		capsule, err := scanCapsule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan capsule: %w", err)
		}
		capsules = append(capsules, *capsule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating capsules: %w", err)
	}
	return capsules, nil
}
