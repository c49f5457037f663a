package sync

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/remote"
	"github.com/virtualcloset/closet/internal/service"
	"github.com/virtualcloset/closet/internal/storage"
)

const testUser = "user-1"

func setupEngine(t *testing.T) (*Engine, service.Storage, *remote.Mock) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	mock := remote.NewMock()
	engine := New(store, mock)
	// No backoff waits in tests.
	engine.retryOpts.InitialDelay = time.Millisecond
	engine.retryOpts.MaxDelay = time.Millisecond
	return engine, store, mock
}

func seedLocalItem(t *testing.T, store service.Storage, id string, updatedAt int64) model.Item {
	t.Helper()
	item := model.Item{
		ID:        id,
		Category:  model.CategoryTop,
		Colors:    []string{"black"},
		Status:    model.StatusActive,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
	require.NoError(t, store.SaveItem(context.Background(), &item))
	return item
}

func TestSyncAllFirstRunPushesEverything(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	seedLocalItem(t, store, "item-1", now-1000)
	seedLocalItem(t, store, "item-2", now-500)

	report, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err)

	assert.Equal(t, 2, len(mock.Items), "both items pushed")
	assert.Equal(t, testUser, mock.Items["item-1"].UserID, "pushed rows carry the user id")
	// Migrations seeded the prefs row, so it counts as pushed too.
	assert.Equal(t, 3, report.Pushed())
	// The pull after the push echoes the freshly pushed rows back; the
	// upserts are idempotent so this is harmless.
	assert.Equal(t, 2, report.Pulled())
	assert.Equal(t, int64(0), report.Since)

	cursor, err := store.GetLastSyncAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.StartedAt, cursor, "cursor advances to the run's start time")
}

func TestSyncAllPullsRemoteChanges(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	now := time.Now().UnixMilli()
	mock.Items["item-r"] = remote.Item{
		ID:        "item-r",
		UserID:    testUser,
		Images:    `[]`,
		Category:  "dress",
		Colors:    `["red"]`,
		Tags:      `[]`,
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}

	report, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pulled())

	got, err := store.GetItemByID(ctx, "item-r")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryDress, got.Category)
	assert.Equal(t, []string{"red"}, got.Colors)
}

func TestSyncAllSecondRunPushesOnlyDeltas(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	seedLocalItem(t, store, "item-1", time.Now().UnixMilli()-1000)
	_, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err)

	firstCalls := mock.UpsertCalls["items"]

	// Nothing changed: the second run pushes no items.
	report, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err)
	assert.Zero(t, report.Pushed())
	assert.Equal(t, firstCalls, mock.UpsertCalls["items"], "no new item upserts without changes")

	// A new local write lands in the third run.
	seedLocalItem(t, store, "item-2", time.Now().UnixMilli()+1000)
	report, err = engine.SyncAll(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Pushed())
}

func TestSyncAllFailureLeavesCursorUntouched(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	seedLocalItem(t, store, "item-1", time.Now().UnixMilli())
	mock.FailOn["outfits"] = errors.New("remote exploded")

	_, err := engine.SyncAll(ctx, testUser)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outfits")

	cursor, err := store.GetLastSyncAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), cursor, "failed run must not advance the cursor")

	// Tables before the failure completed; re-running re-covers them
	// idempotently once the remote recovers.
	assert.Equal(t, 1, len(mock.Items))
	delete(mock.FailOn, "outfits")

	report, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, 1, len(mock.Items), "re-pushed item overwrites, not duplicates")

	cursor, err = store.GetLastSyncAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.StartedAt, cursor)
}

func TestSyncAllRetriesTransientFailure(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	seedLocalItem(t, store, "item-1", time.Now().UnixMilli())
	mock.FailTimes["items"] = 1

	report, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err, "one transient failure must be absorbed by the retry")
	assert.Equal(t, 2, mock.UpsertCalls["items"], "failed push retried once")
	assert.Equal(t, 1, len(mock.Items))

	cursor, err := store.GetLastSyncAt(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.StartedAt, cursor)
}

func TestSyncAllTombstonePropagation(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	// A remote tombstone arrives for an item this device still has.
	item := seedLocalItem(t, store, "item-1", 1000)
	deletedAt := time.Now().UnixMilli()
	row := remote.Item{
		ID:        item.ID,
		UserID:    testUser,
		Images:    `[]`,
		Category:  string(item.Category),
		Colors:    `["black"]`,
		Tags:      `[]`,
		Status:    string(item.Status),
		CreatedAt: item.CreatedAt,
		UpdatedAt: deletedAt,
		DeletedAt: &deletedAt,
	}
	mock.Items[item.ID] = row

	_, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err)

	// The local row is now a tombstone: invisible to reads, present in the
	// change feed.
	_, err = store.GetItemByID(ctx, item.ID)
	require.Error(t, err)

	changed, err := store.GetItemsUpdatedSince(ctx, 0)
	require.NoError(t, err)
	require.Len(t, changed, 1)
	assert.Equal(t, deletedAt, changed[0].DeletedAt)
}

func TestSyncAllLocalDeletePushedAsTombstone(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	item := seedLocalItem(t, store, "item-1", time.Now().UnixMilli()-1000)
	require.NoError(t, store.DeleteItem(ctx, item.ID, time.Now().UnixMilli()))

	_, err := engine.SyncAll(ctx, testUser)
	require.NoError(t, err)

	pushed, ok := mock.Items[item.ID]
	require.True(t, ok, "tombstone must be pushed")
	require.NotNil(t, pushed.DeletedAt)
}

func TestSyncAllSingleFlight(t *testing.T) {
	engine, _, _ := setupEngine(t)

	engine.mu.Lock()
	defer engine.mu.Unlock()

	_, err := engine.SyncAll(context.Background(), testUser)
	assert.ErrorIs(t, err, ErrSyncInProgress)
}

func TestSyncAllRequiresUserID(t *testing.T) {
	engine, _, _ := setupEngine(t)

	_, err := engine.SyncAll(context.Background(), "")
	require.Error(t, err)
}

func TestSyncAllPrefsLastWriteWins(t *testing.T) {
	engine, store, mock := setupEngine(t)
	ctx := context.Background()

	local, err := store.GetPrefs(ctx)
	require.NoError(t, err)

	// Remote copy is newer than the seeded local row.
	mock.Prefs[testUser] = remote.Prefs{
		UserID:          testUser,
		AvoidRepeatDays: 14,
		PreferFavorites: true,
		UpdatedAt:       local.UpdatedAt + 5000,
	}

	_, err = engine.SyncAll(ctx, testUser)
	require.NoError(t, err)

	got, err := store.GetPrefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 14, got.AvoidRepeatDays)
	assert.True(t, got.PreferFavorites)

	// Now the local row is newer: a later remote pull must not clobber it.
	got.AvoidRepeatDays = 3
	got.UpdatedAt = time.Now().UnixMilli() + 10000
	require.NoError(t, store.SavePrefs(ctx, got))

	_, err = engine.SyncAll(ctx, testUser)
	require.NoError(t, err)

	final, err := store.GetPrefs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, final.AvoidRepeatDays)
}

func TestSyncAllProgressCallback(t *testing.T) {
	engine, _, _ := setupEngine(t)

	var tables []string
	engine.Progress = func(result TableResult) {
		tables = append(tables, result.Table)
	}

	_, err := engine.SyncAll(context.Background(), testUser)
	require.NoError(t, err)
	assert.Equal(t, Tables, tables)
}
