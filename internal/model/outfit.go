package model

import (
	"fmt"
	"sort"
	"strings"
)

// Occasion tags the social context an outfit is generated for.
type Occasion string

// Occasions.
const (
	OccasionCasual Occasion = "casual"
	OccasionWork   Occasion = "work"
	OccasionDate   Occasion = "date"
	OccasionFormal Occasion = "formal"
	OccasionGym    Occasion = "gym"
)

// Occasions lists all valid occasions.
var Occasions = []Occasion{OccasionCasual, OccasionWork, OccasionDate, OccasionFormal, OccasionGym}

// ParseOccasion converts a string into an Occasion.
func ParseOccasion(s string) (Occasion, error) {
	o := Occasion(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Occasions {
		if o == valid {
			return o, nil
		}
	}
	return "", fmt.Errorf("invalid occasion %q", s)
}

// Outfit is a saved combination of items. Items are referenced by id only;
// a referenced item may since have been deleted, and readers are expected
// to skip ids they cannot resolve.
type Outfit struct {
	ID         string
	ItemIDs    []string
	Occasion   Occasion
	CapsuleID  string
	IsFavorite bool
	CreatedAt  int64
	UpdatedAt  int64
	DeletedAt  int64
}

// Deleted reports whether the outfit carries a tombstone.
func (o *Outfit) Deleted() bool {
	return o.DeletedAt != 0
}

// GeneratedOutfit is an ephemeral generator candidate. Unlike Outfit it
// holds full item snapshots, and it is never persisted until the user
// explicitly saves it. Shoes is always set; every other slot is optional.
type GeneratedOutfit struct {
	Top       *Item
	Bottom    *Item
	Dress     *Item
	Jumpsuit  *Item
	Shoes     *Item
	Outerwear *Item
	Accessory *Item
	Rationale []string
	Score     float64
}

// Items returns the filled slots in display order.
func (g *GeneratedOutfit) Items() []*Item {
	slots := []*Item{g.Top, g.Bottom, g.Dress, g.Jumpsuit, g.Shoes, g.Outerwear, g.Accessory}
	items := make([]*Item, 0, len(slots))
	for _, it := range slots {
		if it != nil {
			items = append(items, it)
		}
	}
	return items
}

// ItemIDs returns the ids of all filled slots.
func (g *GeneratedOutfit) ItemIDs() []string {
	items := g.Items()
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// Signature identifies the item combination independent of slot order:
// the sorted, pipe-joined set of item ids. Two candidates with the same
// signature are the same outfit.
func (g *GeneratedOutfit) Signature() string {
	ids := g.ItemIDs()
	sort.Strings(ids)
	return strings.Join(ids, "|")
}
