package remote

import (
	"context"
	"fmt"
	"sync"

	"github.com/virtualcloset/closet/internal/common"
)

// Mock is an in-memory Store for tests and offline development. Rows are
// kept per table keyed by id; FailOn lets a test force one table's
// operations to fail.
type Mock struct {
	mu sync.Mutex

	Items      map[string]Item
	Capsules   map[string]Capsule
	Outfits    map[string]Outfit
	WearEvents map[string]WearEvent
	Prefs      map[string]Prefs

	// FailOn maps a table name to the error its operations return.
	FailOn map[string]error

	// FailTimes fails the next N operations on a table with a retryable
	// error before letting them succeed.
	FailTimes map[string]int

	// UpsertCalls counts upsert invocations per table.
	UpsertCalls map[string]int
}

// NewMock creates an empty in-memory store.
func NewMock() *Mock {
	return &Mock{
		Items:       make(map[string]Item),
		Capsules:    make(map[string]Capsule),
		Outfits:     make(map[string]Outfit),
		WearEvents:  make(map[string]WearEvent),
		Prefs:       make(map[string]Prefs),
		FailOn:      make(map[string]error),
		FailTimes:   make(map[string]int),
		UpsertCalls: make(map[string]int),
	}
}

func (m *Mock) fail(table string) error {
	if err := m.FailOn[table]; err != nil {
		return err
	}
	if n := m.FailTimes[table]; n > 0 {
		m.FailTimes[table] = n - 1
		return fmt.Errorf("%s temporarily unavailable: %w", table, common.ErrRemoteUnavailable)
	}
	return nil
}

// UpsertItems stores item rows keyed by id.
func (m *Mock) UpsertItems(_ context.Context, items []Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls["items"]++
	if err := m.fail("items"); err != nil {
		return err
	}
	for _, row := range items {
		m.Items[row.ID] = row
	}
	return nil
}

// ItemsUpdatedSince returns item rows for the user changed after the cursor.
func (m *Mock) ItemsUpdatedSince(_ context.Context, userID string, since int64) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("items"); err != nil {
		return nil, err
	}
	var rows []Item
	for _, row := range m.Items {
		if row.UserID == userID && row.UpdatedAt > since {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// UpsertCapsules stores capsule rows keyed by id.
func (m *Mock) UpsertCapsules(_ context.Context, capsules []Capsule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls["capsules"]++
	if err := m.fail("capsules"); err != nil {
		return err
	}
	for _, row := range capsules {
		m.Capsules[row.ID] = row
	}
	return nil
}

// CapsulesUpdatedSince returns capsule rows for the user changed after the cursor.
func (m *Mock) CapsulesUpdatedSince(_ context.Context, userID string, since int64) ([]Capsule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("capsules"); err != nil {
		return nil, err
	}
	var rows []Capsule
	for _, row := range m.Capsules {
		if row.UserID == userID && row.UpdatedAt > since {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// UpsertOutfits stores outfit rows keyed by id.
func (m *Mock) UpsertOutfits(_ context.Context, outfits []Outfit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls["outfits"]++
	if err := m.fail("outfits"); err != nil {
		return err
	}
	for _, row := range outfits {
		m.Outfits[row.ID] = row
	}
	return nil
}

// OutfitsUpdatedSince returns outfit rows for the user changed after the cursor.
func (m *Mock) OutfitsUpdatedSince(_ context.Context, userID string, since int64) ([]Outfit, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("outfits"); err != nil {
		return nil, err
	}
	var rows []Outfit
	for _, row := range m.Outfits {
		if row.UserID == userID && row.UpdatedAt > since {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// UpsertWearEvents stores wear event rows keyed by id.
func (m *Mock) UpsertWearEvents(_ context.Context, events []WearEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls["wear_events"]++
	if err := m.fail("wear_events"); err != nil {
		return err
	}
	for _, row := range events {
		m.WearEvents[row.ID] = row
	}
	return nil
}

// WearEventsUpdatedSince returns wear event rows for the user changed after the cursor.
func (m *Mock) WearEventsUpdatedSince(_ context.Context, userID string, since int64) ([]WearEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("wear_events"); err != nil {
		return nil, err
	}
	var rows []WearEvent
	for _, row := range m.WearEvents {
		if row.UserID == userID && row.UpdatedAt > since {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

// UpsertPrefs stores the preferences row keyed by user id.
func (m *Mock) UpsertPrefs(_ context.Context, prefs Prefs) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls["user_prefs"]++
	if err := m.fail("user_prefs"); err != nil {
		return err
	}
	m.Prefs[prefs.UserID] = prefs
	return nil
}

// PrefsUpdatedSince returns the preferences row when changed after the cursor.
func (m *Mock) PrefsUpdatedSince(_ context.Context, userID string, since int64) (*Prefs, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail("user_prefs"); err != nil {
		return nil, err
	}
	row, ok := m.Prefs[userID]
	if !ok || row.UpdatedAt <= since {
		return nil, nil
	}
	return &row, nil
}
