package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/service"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore implements the service.Storage interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// dbtx is the subset of sql.DB and sql.Tx the entity queries need, so the
// same query code serves both the store and an open transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewSQLiteStore creates a new SQLite storage instance.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := validateString(dbPath, "dbPath"); err != nil {
		return nil, err
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite doesn't benefit from multiple connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// BeginTx starts a new database transaction.
func (s *SQLiteStore) BeginTx(ctx context.Context) (service.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &sqliteTransaction{
		tx:      tx,
		storage: s,
	}, nil
}

// encodeStringList serializes a string slice for a TEXT column. The
// in-memory model always holds native slices; JSON encoding happens only
// at this boundary.
func encodeStringList(values []string) (string, error) {
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode string list: %w", err)
	}
	return string(data), nil
}

// decodeStringList deserializes a TEXT column into a string slice.
func decodeStringList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode string list: %w", err)
	}
	return values, nil
}

// nullString maps an empty string to NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullMillis maps a zero timestamp to NULL.
func nullMillis(ts int64) sql.NullInt64 {
	return sql.NullInt64{Int64: ts, Valid: ts != 0}
}

// sqliteTransaction wraps sql.Tx to implement service.Transaction.
type sqliteTransaction struct {
	tx      *sql.Tx
	storage *SQLiteStore
}

func (t *sqliteTransaction) Commit() error {
	return t.tx.Commit()
}

func (t *sqliteTransaction) Rollback() error {
	return t.tx.Rollback()
}

// Transaction methods delegate to the shared query helpers bound to the
// open transaction.

func (t *sqliteTransaction) SaveItem(ctx context.Context, item *model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItem(item); err != nil {
		return err
	}
	return saveItem(ctx, t.tx, item)
}

func (t *sqliteTransaction) GetItemByID(ctx context.Context, id string) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getItemByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetItems(ctx context.Context, filter service.ItemFilter) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getItems(ctx, t.tx, filter)
}

func (t *sqliteTransaction) GetActiveItems(ctx context.Context) ([]model.Item, error) {
	return t.GetItems(ctx, service.ItemFilter{Status: model.StatusActive})
}

func (t *sqliteTransaction) DeleteItem(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteItem(ctx, t.tx, id, at)
}

func (t *sqliteTransaction) IncrementItemWear(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return incrementItemWear(ctx, t.tx, id, at)
}

func (t *sqliteTransaction) GetItemsUpdatedSince(ctx context.Context, since int64) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getItemsUpdatedSince(ctx, t.tx, since)
}

func (t *sqliteTransaction) UpsertItems(ctx context.Context, items []model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertItems(ctx, t.tx, items)
}

func (t *sqliteTransaction) SaveCapsule(ctx context.Context, capsule *model.Capsule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateCapsule(capsule); err != nil {
		return err
	}
	return saveCapsule(ctx, t.tx, capsule)
}

func (t *sqliteTransaction) GetCapsuleByID(ctx context.Context, id string) (*model.Capsule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getCapsuleByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetCapsules(ctx context.Context) ([]model.Capsule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCapsules(ctx, t.tx)
}

func (t *sqliteTransaction) DeleteCapsule(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteCapsule(ctx, t.tx, id, at)
}

func (t *sqliteTransaction) GetCapsulesUpdatedSince(ctx context.Context, since int64) ([]model.Capsule, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getCapsulesUpdatedSince(ctx, t.tx, since)
}

func (t *sqliteTransaction) UpsertCapsules(ctx context.Context, capsules []model.Capsule) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertCapsules(ctx, t.tx, capsules)
}

func (t *sqliteTransaction) SaveOutfit(ctx context.Context, outfit *model.Outfit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateOutfit(outfit); err != nil {
		return err
	}
	return saveOutfit(ctx, t.tx, outfit)
}

func (t *sqliteTransaction) GetOutfitByID(ctx context.Context, id string) (*model.Outfit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return getOutfitByID(ctx, t.tx, id)
}

func (t *sqliteTransaction) GetOutfits(ctx context.Context) ([]model.Outfit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOutfits(ctx, t.tx)
}

func (t *sqliteTransaction) DeleteOutfit(ctx context.Context, id string, at int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}
	return deleteOutfit(ctx, t.tx, id, at)
}

func (t *sqliteTransaction) GetOutfitsUpdatedSince(ctx context.Context, since int64) ([]model.Outfit, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getOutfitsUpdatedSince(ctx, t.tx, since)
}

func (t *sqliteTransaction) UpsertOutfits(ctx context.Context, outfits []model.Outfit) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertOutfits(ctx, t.tx, outfits)
}

func (t *sqliteTransaction) SaveWearEvent(ctx context.Context, event *model.WearEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateWearEvent(event); err != nil {
		return err
	}
	return saveWearEvent(ctx, t.tx, event)
}

func (t *sqliteTransaction) GetWearEventsByOutfit(ctx context.Context, outfitID string) ([]model.WearEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(outfitID, "outfitID"); err != nil {
		return nil, err
	}
	return getWearEventsByOutfit(ctx, t.tx, outfitID)
}

func (t *sqliteTransaction) GetWearEventsUpdatedSince(ctx context.Context, since int64) ([]model.WearEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getWearEventsUpdatedSince(ctx, t.tx, since)
}

func (t *sqliteTransaction) UpsertWearEvents(ctx context.Context, events []model.WearEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertWearEvents(ctx, t.tx, events)
}

func (t *sqliteTransaction) GetPrefs(ctx context.Context) (*model.UserPrefs, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getPrefs(ctx, t.tx)
}

func (t *sqliteTransaction) SavePrefs(ctx context.Context, prefs *model.UserPrefs) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validatePrefs(prefs); err != nil {
		return err
	}
	return savePrefs(ctx, t.tx, prefs)
}

func (t *sqliteTransaction) GetLastSyncAt(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return getLastSyncAt(ctx, t.tx)
}

func (t *sqliteTransaction) SetLastSyncAt(ctx context.Context, ts int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return setLastSyncAt(ctx, t.tx, ts)
}

func (t *sqliteTransaction) Migrate(_ context.Context) error {
	// Migrations should not be run within a transaction
	return fmt.Errorf("migrations cannot be run within a transaction")
}

func (t *sqliteTransaction) BeginTx(_ context.Context) (service.Transaction, error) {
	// Nested transactions not supported
	return nil, fmt.Errorf("nested transactions not supported")
}

func (t *sqliteTransaction) Close() error {
	// Transactions should be committed or rolled back, not closed
	return fmt.Errorf("transactions must be committed or rolled back, not closed")
}
