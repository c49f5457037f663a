package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/model"
)

const outfitColumns = `id, item_ids, occasion, capsule_id, is_favorite, created_at, updated_at, deleted_at`

// SaveOutfit inserts or replaces a saved outfit.
func (s *SQLiteStore) SaveOutfit(ctx context.Context, outfit *model.Outfit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOutfit(outfit); err != nil {
		return err
	}
	return saveOutfit(ctx, s.db, outfit)
}

// GetOutfitByID returns one live outfit, or common.ErrNotFound.
func (s *SQLiteStore) GetOutfitByID(ctx context.Context, id string) (*model.Outfit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getOutfitByID(ctx, s.db, id)
}

// GetOutfits returns all live saved outfits, newest first.
func (s *SQLiteStore) GetOutfits(ctx context.Context) ([]model.Outfit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOutfits(ctx, s.db)
}

// DeleteOutfit tombstones an outfit.
func (s *SQLiteStore) DeleteOutfit(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteOutfit(ctx, s.db, id, at)
}

// GetOutfitsUpdatedSince returns outfits modified after the cursor,
// tombstones included.
func (s *SQLiteStore) GetOutfitsUpdatedSince(ctx context.Context, since int64) ([]model.Outfit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOutfitsUpdatedSince(ctx, s.db, since)
}

// UpsertOutfits bulk-writes outfits with overwrite-on-conflict.
func (s *SQLiteStore) UpsertOutfits(ctx context.Context, outfits []model.Outfit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertOutfits(ctx, s.db, outfits)
}

func saveOutfit(ctx context.Context, q dbtx, outfit *model.Outfit) error {
	itemIDs, err := encodeStringList(outfit.ItemIDs)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT OR REPLACE INTO outfits (
			id, item_ids, occasion, capsule_id, is_favorite, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		outfit.ID, itemIDs, string(outfit.Occasion), nullString(outfit.CapsuleID),
		outfit.IsFavorite, outfit.CreatedAt, outfit.UpdatedAt, nullMillis(outfit.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save outfit %s: %w", outfit.ID, err)
	}
	return nil
}

func getOutfitByID(ctx context.Context, q dbtx, id string) (*model.Outfit, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+outfitColumns+`
		FROM outfits
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	outfit, err := scanOutfit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("outfit %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get outfit %s: %w", id, err)
	}
	return outfit, nil
}

func getOutfits(ctx context.Context, q dbtx) ([]model.Outfit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+outfitColumns+`
		FROM outfits
		WHERE deleted_at IS NULL
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query outfits: %w", err)
	}
	return collectOutfits(rows)
}

func deleteOutfit(ctx context.Context, q dbtx, id string, at int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE outfits SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, at, at, id)
	if err != nil {
		return fmt.Errorf("failed to delete outfit %s: %w", id, err)
	}
	return nil
}

func getOutfitsUpdatedSince(ctx context.Context, q dbtx, since int64) ([]model.Outfit, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+outfitColumns+`
		FROM outfits
		WHERE updated_at > ?
		ORDER BY updated_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query changed outfits: %w", err)
	}
	return collectOutfits(rows)
}

func upsertOutfits(ctx context.Context, q dbtx, outfits []model.Outfit) error {
	for i := range outfits {
		if err := validateOutfit(&outfits[i]); err != nil {
			return fmt.Errorf("outfit at index %d: %w", i, err)
		}
		if err := saveOutfit(ctx, q, &outfits[i]); err != nil {
			return err
		}
	}
	return nil
}

func scanOutfit(row rowScanner) (*model.Outfit, error) {
	var (
		outfit    model.Outfit
		itemIDs   string
		occasion  string
		capsuleID sql.NullString
		deletedAt sql.NullInt64
	)

	err := row.Scan(
		&outfit.ID, &itemIDs, &occasion, &capsuleID,
		&outfit.IsFavorite, &outfit.CreatedAt, &outfit.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	outfit.Occasion = model.Occasion(occasion)
	outfit.CapsuleID = capsuleID.String
	outfit.DeletedAt = deletedAt.Int64
	if outfit.ItemIDs, err = decodeStringList(itemIDs); err != nil {
		return nil, err
	}
	return &outfit, nil
}

func collectOutfits(rows *sql.Rows) ([]model.Outfit, error) {
	defer func() { _ = rows.Close() }()

	var outfits []model.Outfit
	for rows.Next() {
		outfit, err := scanOutfit(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outfit: %w", err)
		}
		outfits = append(outfits, *outfit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outfits: %w", err)
	}
	return outfits, nil
}
