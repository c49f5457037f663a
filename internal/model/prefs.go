package model

// PrefsID is the fixed row id of the singleton user preferences record.
const PrefsID = 1

// Default preference values seeded on first open.
const (
	DefaultAvoidRepeatDays = 7
)

// UserPrefs is the process-wide singleton holding generation defaults.
// Each preference can still be overridden per generation call.
type UserPrefs struct {
	AvoidRepeatDays int
	PreferFavorites bool
	UpdatedAt       int64
}
