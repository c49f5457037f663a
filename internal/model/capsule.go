package model

// Capsule is a user-curated named subset of the closet, e.g. "Paris trip".
// Membership is by item id only: deleting an item does not remove it from
// capsules, and readers filter out ids they cannot resolve.
type Capsule struct {
	ID        string
	Name      string
	ItemIDs   []string
	UpdatedAt int64
	DeletedAt int64
}

// Deleted reports whether the capsule carries a tombstone.
func (c *Capsule) Deleted() bool {
	return c.DeletedAt != 0
}

// Contains reports whether the capsule includes the given item id.
func (c *Capsule) Contains(itemID string) bool {
	for _, id := range c.ItemIDs {
		if id == itemID {
			return true
		}
	}
	return false
}
