// Package wear records outfit wear events and keeps per-item wear counters
// consistent with the immutable event log.
package wear

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/service"
)

// Tracker marks outfits as worn. The counter updates and the event insert
// share one storage transaction: a failure anywhere leaves neither applied.
type Tracker struct {
	store service.Storage
	newID func() string
	now   func() time.Time
}

// New creates a tracker backed by the given storage.
func New(store service.Storage) *Tracker {
	return &Tracker{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// MarkWorn records one wearing of the outfit at the given time (zero means
// now). Every item the outfit references gets its wear counter incremented
// and last_worn_at stamped; one wear event with an immutable item-id
// snapshot is appended. Item ids that no longer resolve are skipped, since
// outfits keep weak references.
func (t *Tracker) MarkWorn(ctx context.Context, outfit *model.Outfit, at time.Time) error {
	if outfit == nil {
		return fmt.Errorf("outfit cannot be nil")
	}
	if at.IsZero() {
		at = t.now()
	}
	wornAt := at.UnixMilli()

	tx, err := t.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin wear transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, itemID := range outfit.ItemIDs {
		if err := tx.IncrementItemWear(ctx, itemID, wornAt); err != nil {
			return fmt.Errorf("failed to update wear counters: %w", err)
		}
	}

	event := &model.WearEvent{
		ID:              t.newID(),
		OutfitID:        outfit.ID,
		WornAt:          wornAt,
		ItemIDsSnapshot: append([]string(nil), outfit.ItemIDs...),
		UpdatedAt:       wornAt,
	}
	if err := tx.SaveWearEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to record wear event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit wear transaction: %w", err)
	}

	slog.Info("Marked outfit worn",
		"outfit_id", outfit.ID,
		"items", len(outfit.ItemIDs),
		"worn_at", wornAt)
	return nil
}
