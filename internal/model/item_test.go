package model

import (
	"strings"
	"testing"
	"time"
)

func TestFormatLastWorn(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		at   int64
		want string
	}{
		{"never", 0, "Never worn"},
		{"today", now.Add(-2 * time.Hour).UnixMilli(), "Worn today"},
		{"yesterday", now.Add(-1 * day).UnixMilli(), "Worn yesterday"},
		{"days", now.Add(-3 * day).UnixMilli(), "Worn 3 days ago"},
		{"one week", now.Add(-8 * day).UnixMilli(), "Worn 1 week ago"},
		{"weeks", now.Add(-15 * day).UnixMilli(), "Worn 2 weeks ago"},
		{"one month", now.Add(-35 * day).UnixMilli(), "Worn 1 month ago"},
		{"months", now.Add(-70 * day).UnixMilli(), "Worn 2 months ago"},
		{"over a year", now.Add(-400 * day).UnixMilli(), "Worn over a year ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatLastWorn(tt.at, now); got != tt.want {
				t.Errorf("FormatLastWorn = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchText(t *testing.T) {
	item := Item{
		Category: CategoryTop,
		Tags:     []string{"Blazer", "WORK"},
		Notes:    "Good with Jeans",
		Brand:    "Aritzia",
	}

	text := item.SearchText()
	for _, want := range []string{"blazer", "work", "top", "good with jeans", "aritzia"} {
		if !strings.Contains(text, want) {
			t.Errorf("SearchText %q missing %q", text, want)
		}
	}
	if text != strings.ToLower(text) {
		t.Error("SearchText must be lowercased")
	}
}

func TestParseCategory(t *testing.T) {
	if c, err := ParseCategory("  Shoes "); err != nil || c != CategoryShoes {
		t.Errorf("ParseCategory(Shoes) = (%q, %v)", c, err)
	}
	if _, err := ParseCategory("hat"); err == nil {
		t.Error("ParseCategory(hat) should fail")
	}
}

func TestParseSeason(t *testing.T) {
	if s, err := ParseSeason("FALL"); err != nil || s != SeasonFall {
		t.Errorf("ParseSeason(FALL) = (%q, %v)", s, err)
	}
	if _, err := ParseSeason("monsoon"); err == nil {
		t.Error("ParseSeason(monsoon) should fail")
	}
}

func TestItemDeleted(t *testing.T) {
	live := Item{}
	if live.Deleted() {
		t.Error("zero DeletedAt must not read as deleted")
	}
	gone := Item{DeletedAt: 1}
	if !gone.Deleted() {
		t.Error("set DeletedAt must read as deleted")
	}
}

func TestIsNamedColor(t *testing.T) {
	for _, name := range NamedColors {
		if !IsNamedColor(name) {
			t.Errorf("IsNamedColor(%q) = false for a listed color", name)
		}
	}
	for _, name := range []string{"", "chartreuse", "Blue", "dark blue"} {
		if IsNamedColor(name) {
			t.Errorf("IsNamedColor(%q) = true, want false", name)
		}
	}
}
