// Package model defines the core domain types shared across the application.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Category identifies which outfit slot an item can fill.
type Category string

// Item categories.
const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryDress     Category = "dress"
	CategoryJumpsuit  Category = "jumpsuit"
	CategoryOuterwear Category = "outerwear"
	CategoryShoes     Category = "shoes"
	CategoryAccessory Category = "accessory"
)

// Categories lists all valid item categories.
var Categories = []Category{
	CategoryTop,
	CategoryBottom,
	CategoryDress,
	CategoryJumpsuit,
	CategoryOuterwear,
	CategoryShoes,
	CategoryAccessory,
}

// Season restricts an item to part of the year. Empty means unset.
type Season string

// Item seasons.
const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
	SeasonAll    Season = "all"
)

// Seasons lists all valid seasons.
var Seasons = []Season{SeasonSpring, SeasonSummer, SeasonFall, SeasonWinter, SeasonAll}

// ItemStatus marks whether an item participates in outfit generation.
type ItemStatus string

// Item statuses.
const (
	StatusActive   ItemStatus = "active"
	StatusArchived ItemStatus = "archived"
)

// NamedColors are the color tags an item can carry. Dominant-color
// extraction produces a subset of these; hand-entered colors are validated
// against the full list.
var NamedColors = []string{
	"black", "white", "grey", "navy", "blue", "red", "pink",
	"orange", "yellow", "green", "purple", "brown", "beige", "cream",
}

// IsNamedColor reports whether name is one of the catalog's color tags.
func IsNamedColor(name string) bool {
	for _, c := range NamedColors {
		if c == name {
			return true
		}
	}
	return false
}

// Item is a single piece of clothing in the closet.
//
// All timestamps are epoch milliseconds: the sync protocol compares and
// round-trips them between the local and remote stores, so the wire unit
// is part of the contract. A zero LastWornAt means never worn; a zero
// DeletedAt means the item is live.
type Item struct {
	ID         string
	Images     []string
	Category   Category
	Colors     []string
	Tags       []string
	Season     Season
	Brand      string
	URL        string
	Notes      string
	IsFavorite bool
	Status     ItemStatus
	WearCount  int
	LastWornAt int64
	CreatedAt  int64
	UpdatedAt  int64
	DeletedAt  int64
}

// SearchText returns the lowercased free text used for occasion keyword
// matching: tags, category, notes and brand joined together.
func (i *Item) SearchText() string {
	parts := make([]string, 0, len(i.Tags)+3)
	parts = append(parts, i.Tags...)
	parts = append(parts, string(i.Category), i.Notes, i.Brand)
	return strings.ToLower(strings.Join(parts, " "))
}

// Deleted reports whether the item carries a tombstone.
func (i *Item) Deleted() bool {
	return i.DeletedAt != 0
}

// FormatLastWorn renders a wear timestamp as a human-readable phrase
// relative to now.
func FormatLastWorn(lastWornAt int64, now time.Time) string {
	if lastWornAt == 0 {
		return "Never worn"
	}
	days := int(now.Sub(time.UnixMilli(lastWornAt)).Hours() / 24)
	switch {
	case days <= 0:
		return "Worn today"
	case days == 1:
		return "Worn yesterday"
	case days < 7:
		return fmt.Sprintf("Worn %d days ago", days)
	case days < 30:
		weeks := days / 7
		if days >= 14 {
			return fmt.Sprintf("Worn %d weeks ago", weeks)
		}
		return fmt.Sprintf("Worn %d week ago", weeks)
	case days < 365:
		months := days / 30
		if days >= 60 {
			return fmt.Sprintf("Worn %d months ago", months)
		}
		return fmt.Sprintf("Worn %d month ago", months)
	default:
		return "Worn over a year ago"
	}
}

// ParseCategory converts a string into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Categories {
		if c == valid {
			return c, nil
		}
	}
	return "", fmt.Errorf("invalid category %q", s)
}

// ParseSeason converts a string into a Season.
func ParseSeason(s string) (Season, error) {
	season := Season(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Seasons {
		if season == valid {
			return season, nil
		}
	}
	return "", fmt.Errorf("invalid season %q", s)
}
