// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/virtualcloset/closet/internal/model"
)

// ItemFilter defines filtering options for item queries. Zero-value fields
// are ignored; Search matches brand, notes and tags.
type ItemFilter struct {
	Category model.Category
	Status   model.ItemStatus
	Season   model.Season
	Color    string
	Tag      string
	Search   string
}

// Storage defines the contract for the local persistence layer. Regular
// queries never return tombstoned rows; the UpdatedSince methods include
// them so deletions propagate through sync.
type Storage interface {
	// Item operations
	SaveItem(ctx context.Context, item *model.Item) error
	GetItemByID(ctx context.Context, id string) (*model.Item, error)
	GetItems(ctx context.Context, filter ItemFilter) ([]model.Item, error)
	GetActiveItems(ctx context.Context) ([]model.Item, error)
	DeleteItem(ctx context.Context, id string, at int64) error
	IncrementItemWear(ctx context.Context, id string, at int64) error
	GetItemsUpdatedSince(ctx context.Context, since int64) ([]model.Item, error)
	UpsertItems(ctx context.Context, items []model.Item) error

	// Capsule operations
	SaveCapsule(ctx context.Context, capsule *model.Capsule) error
	GetCapsuleByID(ctx context.Context, id string) (*model.Capsule, error)
	GetCapsules(ctx context.Context) ([]model.Capsule, error)
	DeleteCapsule(ctx context.Context, id string, at int64) error
	GetCapsulesUpdatedSince(ctx context.Context, since int64) ([]model.Capsule, error)
	UpsertCapsules(ctx context.Context, capsules []model.Capsule) error

	// Outfit operations
	SaveOutfit(ctx context.Context, outfit *model.Outfit) error
	GetOutfitByID(ctx context.Context, id string) (*model.Outfit, error)
	GetOutfits(ctx context.Context) ([]model.Outfit, error)
	DeleteOutfit(ctx context.Context, id string, at int64) error
	GetOutfitsUpdatedSince(ctx context.Context, since int64) ([]model.Outfit, error)
	UpsertOutfits(ctx context.Context, outfits []model.Outfit) error

	// Wear event operations. SaveWearEvent is a strict insert: events are
	// immutable and never overwritten locally.
	SaveWearEvent(ctx context.Context, event *model.WearEvent) error
	GetWearEventsByOutfit(ctx context.Context, outfitID string) ([]model.WearEvent, error)
	GetWearEventsUpdatedSince(ctx context.Context, since int64) ([]model.WearEvent, error)
	UpsertWearEvents(ctx context.Context, events []model.WearEvent) error

	// User preferences (singleton row)
	GetPrefs(ctx context.Context) (*model.UserPrefs, error)
	SavePrefs(ctx context.Context, prefs *model.UserPrefs) error

	// Sync cursor (singleton row, epoch ms, 0 = never synced)
	GetLastSyncAt(ctx context.Context) (int64, error)
	SetLastSyncAt(ctx context.Context, ts int64) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
