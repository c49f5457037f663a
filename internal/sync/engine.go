// Package sync implements the bidirectional delta sync between the local
// SQLite store and a remote per-user store. Changes flow both ways keyed by
// a single durable timestamp cursor: each table pushes local rows updated
// after the cursor, pulls remote rows updated after the cursor, and the
// cursor advances to the sync start time only once every table succeeds.
// Conflicts resolve last-write-wins at row granularity.
package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/remote"
	"github.com/virtualcloset/closet/internal/service"
)

// ErrSyncInProgress is returned when SyncAll is invoked while another sync
// on the same engine is still running.
var ErrSyncInProgress = errors.New("sync already in progress")

// Tables lists the synced tables in the order the engine processes them.
var Tables = []string{"items", "capsules", "outfits", "wear_events", "user_prefs"}

// TableResult reports what a single table's push/pull pass moved.
type TableResult struct {
	Table  string
	Pushed int
	Pulled int
}

// Report summarizes a completed sync run.
type Report struct {
	StartedAt int64 // epoch ms; the new cursor value
	Since     int64 // cursor the run started from (0 = first sync)
	Tables    []TableResult
	Duration  time.Duration
}

// Pushed returns the total number of rows pushed across all tables.
func (r *Report) Pushed() int {
	var n int
	for _, t := range r.Tables {
		n += t.Pushed
	}
	return n
}

// Pulled returns the total number of rows pulled across all tables.
func (r *Report) Pulled() int {
	var n int
	for _, t := range r.Tables {
		n += t.Pulled
	}
	return n
}

// Engine drives sync runs. Safe for concurrent use; overlapping runs are
// rejected rather than queued.
type Engine struct {
	store  service.Storage
	remote remote.Store

	mu  gosync.Mutex
	now func() time.Time

	// Progress, when set, is invoked after each table completes.
	Progress func(TableResult)

	retryOpts service.RetryOptions
}

// New creates a sync engine over the given local store and remote.
func New(store service.Storage, rs remote.Store) *Engine {
	return &Engine{
		store:  store,
		remote: rs,
		now:    time.Now,
		retryOpts: service.RetryOptions{
			MaxAttempts:  2,
			InitialDelay: 500 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			Multiplier:   2.0,
		},
	}
}

// SyncAll runs one full push/pull pass over every table for the given user.
// On failure the cursor is not advanced; already-completed tables are left
// in place, which is safe because every write on both sides is an
// idempotent upsert and the next run re-covers the same window.
func (e *Engine) SyncAll(ctx context.Context, userID string) (*Report, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required for sync", common.ErrMissingConfig)
	}
	if !e.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer e.mu.Unlock()

	since, err := e.store.GetLastSyncAt(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read sync cursor: %w", err)
	}

	start := e.now()
	// Captured before any table runs: writes that land mid-sync fall after
	// this mark and are re-pushed on the next run instead of being skipped.
	startedAt := start.UnixMilli()

	report := &Report{StartedAt: startedAt, Since: since}
	slog.Info("sync started", "user_id", userID, "since", since)

	steps := []struct {
		table string
		run   func(ctx context.Context, userID string, since int64) (TableResult, error)
	}{
		{"items", e.syncItems},
		{"capsules", e.syncCapsules},
		{"outfits", e.syncOutfits},
		{"wear_events", e.syncWearEvents},
		{"user_prefs", e.syncPrefs},
	}

	for _, step := range steps {
		result, err := step.run(ctx, userID, since)
		if err != nil {
			slog.Error("sync aborted", "table", step.table, "error", err)
			return nil, fmt.Errorf("sync %s: %w", step.table, err)
		}
		report.Tables = append(report.Tables, result)
		if e.Progress != nil {
			e.Progress(result)
		}
	}

	if err := e.store.SetLastSyncAt(ctx, startedAt); err != nil {
		return nil, fmt.Errorf("failed to advance sync cursor: %w", err)
	}

	report.Duration = e.now().Sub(start)
	slog.Info("sync completed",
		"pushed", report.Pushed(),
		"pulled", report.Pulled(),
		"cursor", startedAt,
		"duration", report.Duration)
	return report, nil
}

// withRetry wraps a remote call with the engine's retry policy. Errors the
// remote explicitly marked non-retryable (auth and other client errors)
// fail immediately; everything else gets one more attempt.
func (e *Engine) withRetry(ctx context.Context, op func() error) error {
	return common.WithRetry(ctx, op, e.retryOpts)
}

func (e *Engine) syncItems(ctx context.Context, userID string, since int64) (TableResult, error) {
	result := TableResult{Table: "items"}

	local, err := e.store.GetItemsUpdatedSince(ctx, since)
	if err != nil {
		return result, fmt.Errorf("failed to load local items: %w", err)
	}
	if len(local) > 0 {
		rows := make([]remote.Item, len(local))
		for i := range local {
			rows[i] = itemToRemote(&local[i], userID)
		}
		if err := e.withRetry(ctx, func() error {
			return e.remote.UpsertItems(ctx, rows)
		}); err != nil {
			return result, fmt.Errorf("failed to push items: %w", err)
		}
		result.Pushed = len(rows)
	}

	var pulled []remote.Item
	if err := e.withRetry(ctx, func() error {
		var err error
		pulled, err = e.remote.ItemsUpdatedSince(ctx, userID, since)
		return err
	}); err != nil {
		return result, fmt.Errorf("failed to pull items: %w", err)
	}
	if len(pulled) > 0 {
		items := make([]model.Item, 0, len(pulled))
		for i := range pulled {
			item, err := itemFromRemote(&pulled[i])
			if err != nil {
				return result, err
			}
			items = append(items, item)
		}
		if err := e.store.UpsertItems(ctx, items); err != nil {
			return result, fmt.Errorf("failed to apply pulled items: %w", err)
		}
		result.Pulled = len(items)
	}
	return result, nil
}

func (e *Engine) syncCapsules(ctx context.Context, userID string, since int64) (TableResult, error) {
	result := TableResult{Table: "capsules"}

	local, err := e.store.GetCapsulesUpdatedSince(ctx, since)
	if err != nil {
		return result, fmt.Errorf("failed to load local capsules: %w", err)
	}
	if len(local) > 0 {
		rows := make([]remote.Capsule, len(local))
		for i := range local {
			rows[i] = capsuleToRemote(&local[i], userID)
		}
		if err := e.withRetry(ctx, func() error {
			return e.remote.UpsertCapsules(ctx, rows)
		}); err != nil {
			return result, fmt.Errorf("failed to push capsules: %w", err)
		}
		result.Pushed = len(rows)
	}

	var pulled []remote.Capsule
	if err := e.withRetry(ctx, func() error {
		var err error
		pulled, err = e.remote.CapsulesUpdatedSince(ctx, userID, since)
		return err
	}); err != nil {
		return result, fmt.Errorf("failed to pull capsules: %w", err)
	}
	if len(pulled) > 0 {
		capsules := make([]model.Capsule, 0, len(pulled))
		for i := range pulled {
			capsule, err := capsuleFromRemote(&pulled[i])
			if err != nil {
				return result, err
			}
			capsules = append(capsules, capsule)
		}
		if err := e.store.UpsertCapsules(ctx, capsules); err != nil {
			return result, fmt.Errorf("failed to apply pulled capsules: %w", err)
		}
		result.Pulled = len(capsules)
	}
	return result, nil
}

func (e *Engine) syncOutfits(ctx context.Context, userID string, since int64) (TableResult, error) {
	result := TableResult{Table: "outfits"}

	local, err := e.store.GetOutfitsUpdatedSince(ctx, since)
	if err != nil {
		return result, fmt.Errorf("failed to load local outfits: %w", err)
	}
	if len(local) > 0 {
		rows := make([]remote.Outfit, len(local))
		for i := range local {
			rows[i] = outfitToRemote(&local[i], userID)
		}
		if err := e.withRetry(ctx, func() error {
			return e.remote.UpsertOutfits(ctx, rows)
		}); err != nil {
			return result, fmt.Errorf("failed to push outfits: %w", err)
		}
		result.Pushed = len(rows)
	}

	var pulled []remote.Outfit
	if err := e.withRetry(ctx, func() error {
		var err error
		pulled, err = e.remote.OutfitsUpdatedSince(ctx, userID, since)
		return err
	}); err != nil {
		return result, fmt.Errorf("failed to pull outfits: %w", err)
	}
	if len(pulled) > 0 {
		outfits := make([]model.Outfit, 0, len(pulled))
		for i := range pulled {
			outfit, err := outfitFromRemote(&pulled[i])
			if err != nil {
				return result, err
			}
			outfits = append(outfits, outfit)
		}
		if err := e.store.UpsertOutfits(ctx, outfits); err != nil {
			return result, fmt.Errorf("failed to apply pulled outfits: %w", err)
		}
		result.Pulled = len(outfits)
	}
	return result, nil
}

func (e *Engine) syncWearEvents(ctx context.Context, userID string, since int64) (TableResult, error) {
	result := TableResult{Table: "wear_events"}

	local, err := e.store.GetWearEventsUpdatedSince(ctx, since)
	if err != nil {
		return result, fmt.Errorf("failed to load local wear events: %w", err)
	}
	if len(local) > 0 {
		rows := make([]remote.WearEvent, len(local))
		for i := range local {
			rows[i] = wearEventToRemote(&local[i], userID)
		}
		if err := e.withRetry(ctx, func() error {
			return e.remote.UpsertWearEvents(ctx, rows)
		}); err != nil {
			return result, fmt.Errorf("failed to push wear events: %w", err)
		}
		result.Pushed = len(rows)
	}

	var pulled []remote.WearEvent
	if err := e.withRetry(ctx, func() error {
		var err error
		pulled, err = e.remote.WearEventsUpdatedSince(ctx, userID, since)
		return err
	}); err != nil {
		return result, fmt.Errorf("failed to pull wear events: %w", err)
	}
	if len(pulled) > 0 {
		events := make([]model.WearEvent, 0, len(pulled))
		for i := range pulled {
			event, err := wearEventFromRemote(&pulled[i])
			if err != nil {
				return result, err
			}
			events = append(events, event)
		}
		if err := e.store.UpsertWearEvents(ctx, events); err != nil {
			return result, fmt.Errorf("failed to apply pulled wear events: %w", err)
		}
		result.Pulled = len(events)
	}
	return result, nil
}

func (e *Engine) syncPrefs(ctx context.Context, userID string, since int64) (TableResult, error) {
	result := TableResult{Table: "user_prefs"}

	local, err := e.store.GetPrefs(ctx)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return result, fmt.Errorf("failed to load local prefs: %w", err)
	}
	if local != nil && local.UpdatedAt > since {
		if err := e.withRetry(ctx, func() error {
			return e.remote.UpsertPrefs(ctx, prefsToRemote(local, userID))
		}); err != nil {
			return result, fmt.Errorf("failed to push prefs: %w", err)
		}
		result.Pushed = 1
	}

	var pulled *remote.Prefs
	if err := e.withRetry(ctx, func() error {
		var err error
		pulled, err = e.remote.PrefsUpdatedSince(ctx, userID, since)
		return err
	}); err != nil {
		return result, fmt.Errorf("failed to pull prefs: %w", err)
	}
	if pulled != nil {
		// Singleton row: apply the remote copy only if it is newer than
		// what we have, otherwise the local version just pushed wins.
		if local == nil || pulled.UpdatedAt > local.UpdatedAt {
			prefs := prefsFromRemote(pulled)
			if err := e.store.SavePrefs(ctx, &prefs); err != nil {
				return result, fmt.Errorf("failed to apply pulled prefs: %w", err)
			}
			result.Pulled = 1
		}
	}
	return result, nil
}
