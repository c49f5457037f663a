package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/service"
)

const itemColumns = `id, images, category, colors, tags, season, brand, url, notes,
	is_favorite, status, wear_count, last_worn_at, created_at, updated_at, deleted_at`

// SaveItem inserts or replaces a single item.
func (s *SQLiteStore) SaveItem(ctx context.Context, item *model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItem(item); err != nil {
		return err
	}
	return saveItem(ctx, s.db, item)
}

// GetItemByID returns one live item, or common.ErrNotFound.
func (s *SQLiteStore) GetItemByID(ctx context.Context, id string) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getItemByID(ctx, s.db, id)
}

// GetItems returns live items matching the filter, newest first.
func (s *SQLiteStore) GetItems(ctx context.Context, filter service.ItemFilter) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getItems(ctx, s.db, filter)
}

// GetActiveItems returns every live item with active status.
func (s *SQLiteStore) GetActiveItems(ctx context.Context) ([]model.Item, error) {
	return s.GetItems(ctx, service.ItemFilter{Status: model.StatusActive})
}

// DeleteItem tombstones an item. The row stays in place so the deletion
// propagates through sync; queries stop returning it.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteItem(ctx, s.db, id, at)
}

// IncrementItemWear bumps the wear counter and stamps last_worn_at and
// updated_at. Unknown ids are a no-op: outfits may reference items that
// were deleted since.
func (s *SQLiteStore) IncrementItemWear(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return incrementItemWear(ctx, s.db, id, at)
}

// GetItemsUpdatedSince returns items modified after the cursor, tombstones
// included. A zero cursor returns everything.
func (s *SQLiteStore) GetItemsUpdatedSince(ctx context.Context, since int64) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getItemsUpdatedSince(ctx, s.db, since)
}

// UpsertItems bulk-writes items with overwrite-on-conflict. This is the
// sync pull path: last write wins at the row level.
func (s *SQLiteStore) UpsertItems(ctx context.Context, items []model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertItems(ctx, s.db, items)
}

func saveItem(ctx context.Context, q dbtx, item *model.Item) error {
	images, err := encodeStringList(item.Images)
	if err != nil {
		return err
	}
	colors, err := encodeStringList(item.Colors)
	if err != nil {
		return err
	}
	tags, err := encodeStringList(item.Tags)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT OR REPLACE INTO items (
			id, images, category, colors, tags, season, brand, url, notes,
			is_favorite, status, wear_count, last_worn_at, created_at, updated_at, deleted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID, images, string(item.Category), colors, tags,
		nullString(string(item.Season)), nullString(item.Brand),
		nullString(item.URL), nullString(item.Notes),
		item.IsFavorite, string(item.Status), item.WearCount,
		nullMillis(item.LastWornAt), item.CreatedAt, item.UpdatedAt,
		nullMillis(item.DeletedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.ID, err)
	}
	return nil
}

func getItemByID(ctx context.Context, q dbtx, id string) (*model.Item, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item %s: %w", id, err)
	}
	return item, nil
}

func getItems(ctx context.Context, q dbtx, filter service.ItemFilter) ([]model.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE deleted_at IS NULL`
	args := make([]any, 0, 6)

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	if filter.Season != "" {
		query += ` AND season = ?`
		args = append(args, string(filter.Season))
	}
	if filter.Color != "" {
		// Colors are stored as a JSON array; match the quoted element.
		query += ` AND colors LIKE ?`
		args = append(args, `%"`+filter.Color+`"%`)
	}
	if filter.Tag != "" {
		query += ` AND tags LIKE ?`
		args = append(args, `%"`+filter.Tag+`"%`)
	}
	if filter.Search != "" {
		query += ` AND (LOWER(brand) LIKE ? OR LOWER(notes) LIKE ? OR LOWER(tags) LIKE ? OR LOWER(category) LIKE ?)`
		needle := "%" + strings.ToLower(filter.Search) + "%"
		args = append(args, needle, needle, needle, needle)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	return collectItems(rows)
}

func deleteItem(ctx context.Context, q dbtx, id string, at int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE items SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, at, at, id)
	if err != nil {
		return fmt.Errorf("failed to delete item %s: %w", id, err)
	}
	return nil
}

func incrementItemWear(ctx context.Context, q dbtx, id string, at int64) error {
	_, err := q.ExecContext(ctx, `
		UPDATE items
		SET wear_count = wear_count + 1, last_worn_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`, at, at, id)
	if err != nil {
		return fmt.Errorf("failed to increment wear for item %s: %w", id, err)
	}
	return nil
}

func getItemsUpdatedSince(ctx context.Context, q dbtx, since int64) ([]model.Item, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+itemColumns+`
		FROM items
		WHERE updated_at > ?
		ORDER BY updated_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query changed items: %w", err)
	}
	return collectItems(rows)
}

func upsertItems(ctx context.Context, q dbtx, items []model.Item) error {
	for i := range items {
		if err := validateItem(&items[i]); err != nil {
			return fmt.Errorf("item at index %d: %w", i, err)
		}
		if err := saveItem(ctx, q, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// rowScanner abstracts sql.Row and sql.Rows for shared scan code.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var (
		item                     model.Item
		images, colors, tags     string
		season, brand, url       sql.NullString
		notes                    sql.NullString
		lastWornAt, deletedAt    sql.NullInt64
		category, status         string
	)

	err := row.Scan(
		&item.ID, &images, &category, &colors, &tags,
		&season, &brand, &url, &notes,
		&item.IsFavorite, &status, &item.WearCount,
		&lastWornAt, &item.CreatedAt, &item.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Category = model.Category(category)
	item.Status = model.ItemStatus(status)
	item.Season = model.Season(season.String)
	item.Brand = brand.String
	item.URL = url.String
	item.Notes = notes.String
	item.LastWornAt = lastWornAt.Int64
	item.DeletedAt = deletedAt.Int64

	if item.Images, err = decodeStringList(images); err != nil {
		return nil, err
	}
	if item.Colors, err = decodeStringList(colors); err != nil {
		return nil, err
	}
	if item.Tags, err = decodeStringList(tags); err != nil {
		return nil, err
	}
	return &item, nil
}

func collectItems(rows *sql.Rows) ([]model.Item, error) {
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}
	return items, nil
}
