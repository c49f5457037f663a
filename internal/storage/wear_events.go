package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/model"
)

const wearEventColumns = `id, outfit_id, worn_at, item_ids_snapshot, updated_at`

// SaveWearEvent appends one wear event. Events are immutable: inserting an
// existing id fails with common.ErrDuplicateEntry.
func (s *SQLiteStore) SaveWearEvent(ctx context.Context, event *model.WearEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateWearEvent(event); err != nil {
		return err
	}
	return saveWearEvent(ctx, s.db, event)
}

// GetWearEventsByOutfit returns the wear history of one outfit, most
// recent first.
func (s *SQLiteStore) GetWearEventsByOutfit(ctx context.Context, outfitID string) ([]model.WearEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(outfitID, "outfitID"); err != nil {
		return nil, err
	}
	return getWearEventsByOutfit(ctx, s.db, outfitID)
}

// GetWearEventsUpdatedSince returns events recorded after the cursor.
func (s *SQLiteStore) GetWearEventsUpdatedSince(ctx context.Context, since int64) ([]model.WearEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return getWearEventsUpdatedSince(ctx, s.db, since)
}

// UpsertWearEvents bulk-writes events with overwrite-on-conflict. Only the
// sync pull path uses this; local writes go through SaveWearEvent.
func (s *SQLiteStore) UpsertWearEvents(ctx context.Context, events []model.WearEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return upsertWearEvents(ctx, s.db, events)
}

func saveWearEvent(ctx context.Context, q dbtx, event *model.WearEvent) error {
	snapshot, err := encodeStringList(event.ItemIDsSnapshot)
	if err != nil {
		return err
	}

	_, err = q.ExecContext(ctx, `
		INSERT INTO wear_events (id, outfit_id, worn_at, item_ids_snapshot, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, event.ID, event.OutfitID, event.WornAt, snapshot, event.UpdatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("wear event %s: %w", event.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to save wear event %s: %w", event.ID, err)
	}
	return nil
}

func getWearEventsByOutfit(ctx context.Context, q dbtx, outfitID string) ([]model.WearEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+wearEventColumns+`
		FROM wear_events
		WHERE outfit_id = ?
		ORDER BY worn_at DESC
	`, outfitID)
	if err != nil {
		return nil, fmt.Errorf("failed to query wear events: %w", err)
	}
	return collectWearEvents(rows)
}

func getWearEventsUpdatedSince(ctx context.Context, q dbtx, since int64) ([]model.WearEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+wearEventColumns+`
		FROM wear_events
		WHERE updated_at > ?
		ORDER BY updated_at
	`, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query changed wear events: %w", err)
	}
	return collectWearEvents(rows)
}

func upsertWearEvents(ctx context.Context, q dbtx, events []model.WearEvent) error {
	for i := range events {
		if err := validateWearEvent(&events[i]); err != nil {
			return fmt.Errorf("wear event at index %d: %w", i, err)
		}
		snapshot, err := encodeStringList(events[i].ItemIDsSnapshot)
		if err != nil {
			return err
		}
		_, err = q.ExecContext(ctx, `
			INSERT OR REPLACE INTO wear_events (id, outfit_id, worn_at, item_ids_snapshot, updated_at)
			VALUES (?, ?, ?, ?, ?)
		`, events[i].ID, events[i].OutfitID, events[i].WornAt, snapshot, events[i].UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert wear event %s: %w", events[i].ID, err)
		}
	}
	return nil
}

func scanWearEvent(row rowScanner) (*model.WearEvent, error) {
	var (
		event    model.WearEvent
		snapshot string
	)

	err := row.Scan(&event.ID, &event.OutfitID, &event.WornAt, &snapshot, &event.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if event.ItemIDsSnapshot, err = decodeStringList(snapshot); err != nil {
		return nil, err
	}
	return &event, nil
}

func collectWearEvents(rows *sql.Rows) ([]model.WearEvent, error) {
	defer func() { _ = rows.Close() }()

	var events []model.WearEvent
	for rows.Next() {
		event, err := scanWearEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wear event: %w", err)
		}
		events = append(events, *event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wear events: %w", err)
	}
	return events, nil
}
