package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/remote"
)

func TestItemTranslationRoundTrip(t *testing.T) {
	item := model.Item{
		ID:         "item-1",
		Images:     []string{"/img/a.jpg", "/img/b.jpg"},
		Category:   model.CategoryOuterwear,
		Colors:     []string{"navy", "white"},
		Tags:       []string{"rain", "spring"},
		Season:     model.SeasonSpring,
		Brand:      "Rains",
		URL:        "https://example.com/coat",
		Notes:      "waterproof",
		IsFavorite: true,
		Status:     model.StatusActive,
		WearCount:  4,
		LastWornAt: 1700000000000,
		CreatedAt:  1690000000000,
		UpdatedAt:  1700000001000,
		DeletedAt:  1700000002000,
	}

	row := itemToRemote(&item, "user-1")
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, `["navy","white"]`, row.Colors)
	require.NotNil(t, row.DeletedAt)

	back, err := itemFromRemote(&row)
	require.NoError(t, err)
	assert.Equal(t, item, back)
}

func TestItemTranslationEmptyOptionals(t *testing.T) {
	item := model.Item{
		ID:        "item-1",
		Category:  model.CategoryTop,
		Status:    model.StatusActive,
		CreatedAt: 1,
		UpdatedAt: 1,
	}

	row := itemToRemote(&item, "user-1")
	// Unset fields travel as NULLs, not empty strings or zeros.
	assert.Nil(t, row.Season)
	assert.Nil(t, row.Brand)
	assert.Nil(t, row.URL)
	assert.Nil(t, row.Notes)
	assert.Nil(t, row.LastWornAt)
	assert.Nil(t, row.DeletedAt)

	back, err := itemFromRemote(&row)
	require.NoError(t, err)
	assert.Equal(t, item.Season, back.Season)
	assert.Equal(t, int64(0), back.LastWornAt)
}

func TestItemFromRemoteBadList(t *testing.T) {
	row := remote.Item{ID: "x", Colors: "not json", Images: `[]`, Tags: `[]`}
	_, err := itemFromRemote(&row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "x")
}

func TestCapsuleTranslationRoundTrip(t *testing.T) {
	capsule := model.Capsule{
		ID:        "cap-1",
		Name:      "Paris trip",
		ItemIDs:   []string{"a", "b"},
		UpdatedAt: 42,
	}

	row := capsuleToRemote(&capsule, "user-1")
	back, err := capsuleFromRemote(&row)
	require.NoError(t, err)
	assert.Equal(t, capsule, back)
}

func TestOutfitTranslationRoundTrip(t *testing.T) {
	outfit := model.Outfit{
		ID:         "outfit-1",
		ItemIDs:    []string{"top-1", "bottom-1", "shoes-1"},
		Occasion:   model.OccasionDate,
		CapsuleID:  "cap-1",
		IsFavorite: true,
		CreatedAt:  1,
		UpdatedAt:  2,
	}

	row := outfitToRemote(&outfit, "user-1")
	require.NotNil(t, row.CapsuleID)

	back, err := outfitFromRemote(&row)
	require.NoError(t, err)
	assert.Equal(t, outfit, back)
}

func TestWearEventTranslationRoundTrip(t *testing.T) {
	event := model.WearEvent{
		ID:              "evt-1",
		OutfitID:        "outfit-1",
		WornAt:          100,
		ItemIDsSnapshot: []string{"a", "b"},
		UpdatedAt:       100,
	}

	row := wearEventToRemote(&event, "user-1")
	back, err := wearEventFromRemote(&row)
	require.NoError(t, err)
	assert.Equal(t, event, back)
}

func TestPrefsTranslationRoundTrip(t *testing.T) {
	prefs := model.UserPrefs{AvoidRepeatDays: 10, PreferFavorites: true, UpdatedAt: 7}

	row := prefsToRemote(&prefs, "user-1")
	assert.Equal(t, "user-1", row.UserID)
	assert.Equal(t, prefs, prefsFromRemote(&row))
}
