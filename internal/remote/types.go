// Package remote defines the remote store boundary the sync engine talks
// to: snake_case row shapes, the per-table Store interface, and an HTTP
// client for a PostgREST-style row API.
package remote

import "context"

// Item is the remote row shape for a closet item. Array-valued fields
// travel as JSON-encoded strings; optional fields are pointers so the
// wire distinguishes absent from zero.
type Item struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	Images     string  `json:"images"`
	Category   string  `json:"category"`
	Colors     string  `json:"colors"`
	Tags       string  `json:"tags"`
	Season     *string `json:"season"`
	Brand      *string `json:"brand"`
	URL        *string `json:"url"`
	Notes      *string `json:"notes"`
	IsFavorite bool    `json:"is_favorite"`
	Status     string  `json:"status"`
	WearCount  int     `json:"wear_count"`
	LastWornAt *int64  `json:"last_worn_at"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
	DeletedAt  *int64  `json:"deleted_at"`
}

// Capsule is the remote row shape for a capsule.
type Capsule struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Name      string `json:"name"`
	ItemIDs   string `json:"item_ids"`
	UpdatedAt int64  `json:"updated_at"`
	DeletedAt *int64 `json:"deleted_at"`
}

// Outfit is the remote row shape for a saved outfit.
type Outfit struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	ItemIDs    string  `json:"item_ids"`
	Occasion   string  `json:"occasion"`
	CapsuleID  *string `json:"capsule_id"`
	IsFavorite bool    `json:"is_favorite"`
	CreatedAt  int64   `json:"created_at"`
	UpdatedAt  int64   `json:"updated_at"`
	DeletedAt  *int64  `json:"deleted_at"`
}

// WearEvent is the remote row shape for a wear event. Events are
// append-only, so there is no deleted_at.
type WearEvent struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	OutfitID        string `json:"outfit_id"`
	WornAt          int64  `json:"worn_at"`
	ItemIDsSnapshot string `json:"item_ids_snapshot"`
	UpdatedAt       int64  `json:"updated_at"`
}

// Prefs is the remote row shape for the per-user preferences singleton,
// keyed by user id rather than a local row id.
type Prefs struct {
	UserID          string `json:"user_id"`
	AvoidRepeatDays int    `json:"avoid_repeat_days"`
	PreferFavorites bool   `json:"prefer_favorites"`
	UpdatedAt       int64  `json:"updated_at"`
}

// Store is the remote boundary the sync engine drives: per-table upsert
// (insert-or-replace keyed by id) and delta select by owner and cursor.
// The UpdatedSince queries return tombstoned rows too, so deletions made
// on another device propagate.
type Store interface {
	UpsertItems(ctx context.Context, items []Item) error
	ItemsUpdatedSince(ctx context.Context, userID string, since int64) ([]Item, error)

	UpsertCapsules(ctx context.Context, capsules []Capsule) error
	CapsulesUpdatedSince(ctx context.Context, userID string, since int64) ([]Capsule, error)

	UpsertOutfits(ctx context.Context, outfits []Outfit) error
	OutfitsUpdatedSince(ctx context.Context, userID string, since int64) ([]Outfit, error)

	UpsertWearEvents(ctx context.Context, events []WearEvent) error
	WearEventsUpdatedSince(ctx context.Context, userID string, since int64) ([]WearEvent, error)

	UpsertPrefs(ctx context.Context, prefs Prefs) error
	PrefsUpdatedSince(ctx context.Context, userID string, since int64) (*Prefs, error)
}
