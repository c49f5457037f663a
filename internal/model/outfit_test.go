package model

import "testing"

func TestGeneratedOutfitSignature(t *testing.T) {
	a := GeneratedOutfit{
		Top:    &Item{ID: "top-1"},
		Bottom: &Item{ID: "bottom-1"},
		Shoes:  &Item{ID: "shoes-1"},
	}
	// Same items arranged through different slots still identify equal.
	b := GeneratedOutfit{
		Top:       &Item{ID: "bottom-1"},
		Bottom:    &Item{ID: "shoes-1"},
		Accessory: &Item{ID: "top-1"},
	}

	if a.Signature() != b.Signature() {
		t.Errorf("signatures differ for the same item set: %q vs %q", a.Signature(), b.Signature())
	}
	if want := "bottom-1|shoes-1|top-1"; a.Signature() != want {
		t.Errorf("Signature = %q, want %q", a.Signature(), want)
	}

	c := GeneratedOutfit{
		Top:    &Item{ID: "top-2"},
		Bottom: &Item{ID: "bottom-1"},
		Shoes:  &Item{ID: "shoes-1"},
	}
	if a.Signature() == c.Signature() {
		t.Error("different item sets must have different signatures")
	}
}

func TestGeneratedOutfitItems(t *testing.T) {
	o := GeneratedOutfit{
		Dress:     &Item{ID: "d"},
		Shoes:     &Item{ID: "s"},
		Accessory: &Item{ID: "a"},
	}

	items := o.Items()
	if len(items) != 3 {
		t.Fatalf("Items() returned %d entries, want 3", len(items))
	}
	ids := o.ItemIDs()
	want := []string{"d", "s", "a"}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ItemIDs[%d] = %q, want %q", i, ids[i], want[i])
		}
	}
}

func TestCapsuleContains(t *testing.T) {
	c := Capsule{ItemIDs: []string{"a", "b"}}
	if !c.Contains("a") || c.Contains("z") {
		t.Error("Contains misreports membership")
	}
}

func TestParseOccasion(t *testing.T) {
	if o, err := ParseOccasion(" Work "); err != nil || o != OccasionWork {
		t.Errorf("ParseOccasion(Work) = (%q, %v)", o, err)
	}
	if _, err := ParseOccasion("brunch"); err == nil {
		t.Error("ParseOccasion(brunch) should fail")
	}
}
