package model

// WearEvent records one wearing of an outfit. Events are immutable once
// written: ItemIDsSnapshot captures the outfit's item set at wear time so
// later edits to the outfit do not rewrite history.
type WearEvent struct {
	ID              string
	OutfitID        string
	WornAt          int64
	ItemIDsSnapshot []string
	UpdatedAt       int64
}
