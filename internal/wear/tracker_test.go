package wear

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/service"
	"github.com/virtualcloset/closet/internal/storage"
)

func setupTracker(t *testing.T) (*Tracker, service.Storage) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Failed to migrate: %v", err)
	}

	return New(store), store
}

func seedOutfit(t *testing.T, store service.Storage, itemIDs []string) *model.Outfit {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UnixMilli()

	for _, id := range itemIDs {
		item := model.Item{
			ID:        id,
			Category:  model.CategoryTop,
			Status:    model.StatusActive,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := store.SaveItem(ctx, &item); err != nil {
			t.Fatalf("Failed to save item %s: %v", id, err)
		}
	}

	outfit := &model.Outfit{
		ID:        "outfit-1",
		ItemIDs:   itemIDs,
		Occasion:  model.OccasionCasual,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := store.SaveOutfit(ctx, outfit); err != nil {
		t.Fatalf("Failed to save outfit: %v", err)
	}
	return outfit
}

func TestMarkWorn(t *testing.T) {
	tracker, store := setupTracker(t)
	ctx := context.Background()

	outfit := seedOutfit(t, store, []string{"item-1", "item-2", "item-3"})
	wornAt := time.Now().Add(-2 * time.Hour)

	if err := tracker.MarkWorn(ctx, outfit, wornAt); err != nil {
		t.Fatalf("MarkWorn failed: %v", err)
	}

	for _, id := range outfit.ItemIDs {
		item, err := store.GetItemByID(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get item %s: %v", id, err)
		}
		if item.WearCount != 1 {
			t.Errorf("item %s WearCount = %d, want 1", id, item.WearCount)
		}
		if item.LastWornAt != wornAt.UnixMilli() {
			t.Errorf("item %s LastWornAt = %d, want %d", id, item.LastWornAt, wornAt.UnixMilli())
		}
	}

	events, err := store.GetWearEventsByOutfit(ctx, outfit.ID)
	if err != nil {
		t.Fatalf("Failed to get wear events: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("got %d wear events, want 1", len(events))
	}
	if len(events[0].ItemIDsSnapshot) != 3 {
		t.Errorf("snapshot has %d ids, want 3", len(events[0].ItemIDsSnapshot))
	}
}

func TestMarkWornSkipsMissingItems(t *testing.T) {
	tracker, store := setupTracker(t)
	ctx := context.Background()

	outfit := seedOutfit(t, store, []string{"item-1"})
	outfit.ItemIDs = append(outfit.ItemIDs, "deleted-item")

	if err := tracker.MarkWorn(ctx, outfit, time.Now()); err != nil {
		t.Fatalf("MarkWorn with a dangling id failed: %v", err)
	}

	item, err := store.GetItemByID(ctx, "item-1")
	if err != nil {
		t.Fatalf("Failed to get item: %v", err)
	}
	if item.WearCount != 1 {
		t.Errorf("WearCount = %d, want 1", item.WearCount)
	}

	// The snapshot keeps the dangling id: it reflects the outfit as worn.
	events, err := store.GetWearEventsByOutfit(ctx, outfit.ID)
	if err != nil {
		t.Fatalf("Failed to get wear events: %v", err)
	}
	if len(events) != 1 || len(events[0].ItemIDsSnapshot) != 2 {
		t.Errorf("snapshot = %+v, want both ids", events)
	}
}

func TestMarkWornAtomicRollback(t *testing.T) {
	tracker, store := setupTracker(t)
	ctx := context.Background()

	outfit := seedOutfit(t, store, []string{"item-1", "item-2"})

	// Force the event insert to collide so the transaction fails after the
	// counters were already updated inside it.
	tracker.newID = func() string { return "fixed-event-id" }

	if err := tracker.MarkWorn(ctx, outfit, time.Now()); err != nil {
		t.Fatalf("First MarkWorn failed: %v", err)
	}
	err := tracker.MarkWorn(ctx, outfit, time.Now())
	if !errors.Is(err, common.ErrDuplicateEntry) {
		t.Fatalf("Second MarkWorn err = %v, want duplicate entry", err)
	}

	// The failed attempt must roll back the counter bumps.
	for _, id := range outfit.ItemIDs {
		item, err := store.GetItemByID(ctx, id)
		if err != nil {
			t.Fatalf("Failed to get item %s: %v", id, err)
		}
		if item.WearCount != 1 {
			t.Errorf("item %s WearCount = %d after rollback, want 1", id, item.WearCount)
		}
	}

	events, err := store.GetWearEventsByOutfit(ctx, outfit.ID)
	if err != nil {
		t.Fatalf("Failed to get wear events: %v", err)
	}
	if len(events) != 1 {
		t.Errorf("got %d wear events, want exactly 1", len(events))
	}

	// A retry with a fresh id succeeds and lands exactly one more event.
	tracker.newID = func() string { return "second-event-id" }
	if err := tracker.MarkWorn(ctx, outfit, time.Now()); err != nil {
		t.Fatalf("Retry MarkWorn failed: %v", err)
	}
	events, err = store.GetWearEventsByOutfit(ctx, outfit.ID)
	if err != nil {
		t.Fatalf("Failed to get wear events: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("got %d wear events after retry, want 2", len(events))
	}
}

func TestMarkWornNilOutfit(t *testing.T) {
	tracker, _ := setupTracker(t)
	if err := tracker.MarkWorn(context.Background(), nil, time.Now()); err == nil {
		t.Error("MarkWorn(nil) should fail")
	}
}
