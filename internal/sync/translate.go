package sync

import (
	"encoding/json"
	"fmt"

	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/remote"
)

// The sync engine owns the translation between the local camelCase model
// and the remote snake_case row shapes: slices are JSON-encoded for the
// wire, empty strings and zero timestamps become NULLs, and every pushed
// row is tagged with the owning user id.

func encodeList(values []string) string {
	data, err := json.Marshal(values)
	if err != nil {
		// []string cannot fail to marshal; keep the row well-formed anyway.
		return "[]"
	}
	return string(data)
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list field: %w", err)
	}
	return values, nil
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optMillis(ts int64) *int64 {
	if ts == 0 {
		return nil
	}
	return &ts
}

func fromOptString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func fromOptMillis(p *int64) int64 {
	if p == nil {
		return 0
	}
	return *p
}

func itemToRemote(item *model.Item, userID string) remote.Item {
	return remote.Item{
		ID:         item.ID,
		UserID:     userID,
		Images:     encodeList(item.Images),
		Category:   string(item.Category),
		Colors:     encodeList(item.Colors),
		Tags:       encodeList(item.Tags),
		Season:     optString(string(item.Season)),
		Brand:      optString(item.Brand),
		URL:        optString(item.URL),
		Notes:      optString(item.Notes),
		IsFavorite: item.IsFavorite,
		Status:     string(item.Status),
		WearCount:  item.WearCount,
		LastWornAt: optMillis(item.LastWornAt),
		CreatedAt:  item.CreatedAt,
		UpdatedAt:  item.UpdatedAt,
		DeletedAt:  optMillis(item.DeletedAt),
	}
}

func itemFromRemote(row *remote.Item) (model.Item, error) {
	images, err := decodeList(row.Images)
	if err != nil {
		return model.Item{}, fmt.Errorf("item %s images: %w", row.ID, err)
	}
	colors, err := decodeList(row.Colors)
	if err != nil {
		return model.Item{}, fmt.Errorf("item %s colors: %w", row.ID, err)
	}
	tags, err := decodeList(row.Tags)
	if err != nil {
		return model.Item{}, fmt.Errorf("item %s tags: %w", row.ID, err)
	}

	return model.Item{
		ID:         row.ID,
		Images:     images,
		Category:   model.Category(row.Category),
		Colors:     colors,
		Tags:       tags,
		Season:     model.Season(fromOptString(row.Season)),
		Brand:      fromOptString(row.Brand),
		URL:        fromOptString(row.URL),
		Notes:      fromOptString(row.Notes),
		IsFavorite: row.IsFavorite,
		Status:     model.ItemStatus(row.Status),
		WearCount:  row.WearCount,
		LastWornAt: fromOptMillis(row.LastWornAt),
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		DeletedAt:  fromOptMillis(row.DeletedAt),
	}, nil
}

func capsuleToRemote(capsule *model.Capsule, userID string) remote.Capsule {
	return remote.Capsule{
		ID:        capsule.ID,
		UserID:    userID,
		Name:      capsule.Name,
		ItemIDs:   encodeList(capsule.ItemIDs),
		UpdatedAt: capsule.UpdatedAt,
		DeletedAt: optMillis(capsule.DeletedAt),
	}
}

func capsuleFromRemote(row *remote.Capsule) (model.Capsule, error) {
	itemIDs, err := decodeList(row.ItemIDs)
	if err != nil {
		return model.Capsule{}, fmt.Errorf("capsule %s item ids: %w", row.ID, err)
	}
	return model.Capsule{
		ID:        row.ID,
		Name:      row.Name,
		ItemIDs:   itemIDs,
		UpdatedAt: row.UpdatedAt,
		DeletedAt: fromOptMillis(row.DeletedAt),
	}, nil
}

func outfitToRemote(outfit *model.Outfit, userID string) remote.Outfit {
	return remote.Outfit{
		ID:         outfit.ID,
		UserID:     userID,
		ItemIDs:    encodeList(outfit.ItemIDs),
		Occasion:   string(outfit.Occasion),
		CapsuleID:  optString(outfit.CapsuleID),
		IsFavorite: outfit.IsFavorite,
		CreatedAt:  outfit.CreatedAt,
		UpdatedAt:  outfit.UpdatedAt,
		DeletedAt:  optMillis(outfit.DeletedAt),
	}
}

func outfitFromRemote(row *remote.Outfit) (model.Outfit, error) {
	itemIDs, err := decodeList(row.ItemIDs)
	if err != nil {
		return model.Outfit{}, fmt.Errorf("outfit %s item ids: %w", row.ID, err)
	}
	return model.Outfit{
		ID:         row.ID,
		ItemIDs:    itemIDs,
		Occasion:   model.Occasion(row.Occasion),
		CapsuleID:  fromOptString(row.CapsuleID),
		IsFavorite: row.IsFavorite,
		CreatedAt:  row.CreatedAt,
		UpdatedAt:  row.UpdatedAt,
		DeletedAt:  fromOptMillis(row.DeletedAt),
	}, nil
}

func wearEventToRemote(event *model.WearEvent, userID string) remote.WearEvent {
	return remote.WearEvent{
		ID:              event.ID,
		UserID:          userID,
		OutfitID:        event.OutfitID,
		WornAt:          event.WornAt,
		ItemIDsSnapshot: encodeList(event.ItemIDsSnapshot),
		UpdatedAt:       event.UpdatedAt,
	}
}

func wearEventFromRemote(row *remote.WearEvent) (model.WearEvent, error) {
	snapshot, err := decodeList(row.ItemIDsSnapshot)
	if err != nil {
		return model.WearEvent{}, fmt.Errorf("wear event %s snapshot: %w", row.ID, err)
	}
	return model.WearEvent{
		ID:              row.ID,
		OutfitID:        row.OutfitID,
		WornAt:          row.WornAt,
		ItemIDsSnapshot: snapshot,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func prefsToRemote(prefs *model.UserPrefs, userID string) remote.Prefs {
	return remote.Prefs{
		UserID:          userID,
		AvoidRepeatDays: prefs.AvoidRepeatDays,
		PreferFavorites: prefs.PreferFavorites,
		UpdatedAt:       prefs.UpdatedAt,
	}
}

func prefsFromRemote(row *remote.Prefs) model.UserPrefs {
	return model.UserPrefs{
		AvoidRepeatDays: row.AvoidRepeatDays,
		PreferFavorites: row.PreferFavorites,
		UpdatedAt:       row.UpdatedAt,
	}
}
