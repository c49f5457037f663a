package generator

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/virtualcloset/closet/internal/model"
)

func testRand() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func makeItem(id string, category model.Category) model.Item {
	return model.Item{
		ID:       id,
		Category: category,
		Status:   model.StatusActive,
	}
}

// workableCloset returns a closet that can produce both archetypes.
func workableCloset() []model.Item {
	items := []model.Item{
		makeItem("dress-1", model.CategoryDress),
		makeItem("jumpsuit-1", model.CategoryJumpsuit),
		makeItem("outerwear-1", model.CategoryOuterwear),
		makeItem("accessory-1", model.CategoryAccessory),
	}
	for i := 0; i < 4; i++ {
		items = append(items,
			makeItem(fmt.Sprintf("top-%d", i+1), model.CategoryTop),
			makeItem(fmt.Sprintf("bottom-%d", i+1), model.CategoryBottom),
			makeItem(fmt.Sprintf("shoes-%d", i+1), model.CategoryShoes),
		)
	}
	return items
}

func TestValidateCloset(t *testing.T) {
	tests := []struct {
		name        string
		items       []model.Item
		canGenerate bool
	}{
		{
			name: "complete closet",
			items: []model.Item{
				makeItem("t", model.CategoryTop),
				makeItem("b", model.CategoryBottom),
				makeItem("s", model.CategoryShoes),
			},
			canGenerate: true,
		},
		{
			name: "dress and shoes only",
			items: []model.Item{
				makeItem("d", model.CategoryDress),
				makeItem("s", model.CategoryShoes),
			},
			canGenerate: true,
		},
		{
			name: "jumpsuit counts as dress-style",
			items: []model.Item{
				makeItem("j", model.CategoryJumpsuit),
				makeItem("s", model.CategoryShoes),
			},
			canGenerate: true,
		},
		{
			name: "no shoes",
			items: []model.Item{
				makeItem("t", model.CategoryTop),
				makeItem("b", model.CategoryBottom),
			},
			canGenerate: false,
		},
		{
			name: "top without bottom",
			items: []model.Item{
				makeItem("t", model.CategoryTop),
				makeItem("s", model.CategoryShoes),
			},
			canGenerate: false,
		},
		{
			name:        "empty closet",
			items:       nil,
			canGenerate: false,
		},
		{
			name: "archived items do not count",
			items: []model.Item{
				{ID: "t", Category: model.CategoryTop, Status: model.StatusArchived},
				makeItem("b", model.CategoryBottom),
				makeItem("s", model.CategoryShoes),
			},
			canGenerate: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := ValidateCloset(tt.items)
			if v.CanGenerate != tt.canGenerate {
				t.Errorf("CanGenerate = %v, want %v (%s)", v.CanGenerate, tt.canGenerate, v.MissingMessage)
			}
			if !v.CanGenerate && v.MissingMessage == "" {
				t.Error("infeasible closet must carry a message")
			}
		})
	}
}

func TestGenerateStructure(t *testing.T) {
	outfits := Generate(workableCloset(), model.OccasionCasual, Options{Rand: testRand()}, nil)
	if len(outfits) == 0 {
		t.Fatal("expected outfits from a workable closet")
	}
	if len(outfits) > 10 {
		t.Errorf("got %d outfits, want at most 10", len(outfits))
	}

	for i := range outfits {
		o := &outfits[i]
		if o.Shoes == nil {
			t.Error("every outfit needs shoes")
		}
		dressStyle := o.Dress != nil || o.Jumpsuit != nil
		topBottom := o.Top != nil && o.Bottom != nil
		if dressStyle == topBottom {
			t.Errorf("outfit %d must be exactly one archetype: %+v", i, o)
		}
		if o.Dress != nil && o.Jumpsuit != nil {
			t.Errorf("outfit %d has both dress and jumpsuit", i)
		}
		if dressStyle && (o.Top != nil || o.Bottom != nil) {
			t.Errorf("outfit %d mixes dress-style with top/bottom", i)
		}
	}
}

func TestGenerateDeduplicatesBySignature(t *testing.T) {
	outfits := Generate(workableCloset(), model.OccasionCasual, Options{Rand: testRand()}, nil)

	seen := make(map[string]bool)
	for i := range outfits {
		sig := outfits[i].Signature()
		if seen[sig] {
			t.Errorf("duplicate signature %q", sig)
		}
		seen[sig] = true
	}
}

func TestGenerateDeterministicWithFixedSeed(t *testing.T) {
	a := Generate(workableCloset(), model.OccasionWork, Options{Rand: testRand()}, nil)
	b := Generate(workableCloset(), model.OccasionWork, Options{Rand: testRand()}, nil)

	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i].Signature() != b[i].Signature() {
			t.Errorf("outfit %d differs: %q vs %q", i, a[i].Signature(), b[i].Signature())
		}
	}
}

func TestGenerateNeverReturnsArchivedItems(t *testing.T) {
	items := workableCloset()
	items = append(items, model.Item{ID: "retired", Category: model.CategoryShoes, Status: model.StatusArchived})

	outfits := Generate(items, model.OccasionCasual, Options{Rand: testRand()}, nil)
	for i := range outfits {
		for _, item := range outfits[i].Items() {
			if item.ID == "retired" {
				t.Fatal("archived item appeared in an outfit")
			}
		}
	}
}

func TestGenerateArchivedLockedItemIsIgnored(t *testing.T) {
	items := workableCloset()
	items = append(items, model.Item{ID: "retired", Category: model.CategoryAccessory, Status: model.StatusArchived})

	outfits := Generate(items, model.OccasionCasual, Options{Rand: testRand()}, []string{"retired"})
	for i := range outfits {
		for _, item := range outfits[i].Items() {
			if item.ID == "retired" {
				t.Fatal("archived locked item appeared in an outfit")
			}
		}
	}
}

func TestGenerateRecencyAvoidance(t *testing.T) {
	now := time.Now()
	items := workableCloset()
	for i := range items {
		if items[i].ID == "shoes-1" {
			items[i].LastWornAt = now.Add(-24 * time.Hour).UnixMilli()
		}
	}

	opts := Options{AvoidRecentDays: 7, Now: now, Rand: testRand()}
	outfits := Generate(items, model.OccasionCasual, opts, nil)
	if len(outfits) == 0 {
		t.Fatal("expected outfits")
	}
	for i := range outfits {
		for _, item := range outfits[i].Items() {
			if item.ID == "shoes-1" {
				t.Fatal("recently worn item appeared without a lock")
			}
		}
	}
}

func TestGenerateLockOverridesRecency(t *testing.T) {
	now := time.Now()
	items := workableCloset()
	for i := range items {
		if items[i].ID == "shoes-1" {
			items[i].LastWornAt = now.Add(-24 * time.Hour).UnixMilli()
		}
	}

	opts := Options{AvoidRecentDays: 7, Now: now, Rand: testRand()}
	outfits := Generate(items, model.OccasionCasual, opts, []string{"shoes-1"})
	if len(outfits) == 0 {
		t.Fatal("expected outfits")
	}
	for i := range outfits {
		if outfits[i].Shoes == nil || outfits[i].Shoes.ID != "shoes-1" {
			t.Fatalf("outfit %d missing locked shoes", i)
		}
	}
}

func TestGenerateLockedItemsInEveryOutfit(t *testing.T) {
	outfits := Generate(workableCloset(), model.OccasionCasual, Options{Rand: testRand()},
		[]string{"top-1", "accessory-1"})
	if len(outfits) == 0 {
		t.Fatal("expected outfits")
	}
	for i := range outfits {
		o := &outfits[i]
		if o.Top == nil || o.Top.ID != "top-1" {
			t.Errorf("outfit %d missing locked top", i)
		}
		if o.Accessory == nil || o.Accessory.ID != "accessory-1" {
			t.Errorf("outfit %d missing locked accessory", i)
		}
	}
}

func TestGenerateLockedDressForcesDressStyle(t *testing.T) {
	outfits := Generate(workableCloset(), model.OccasionCasual, Options{Rand: testRand()},
		[]string{"dress-1"})
	if len(outfits) == 0 {
		t.Fatal("expected outfits")
	}
	for i := range outfits {
		o := &outfits[i]
		if o.Dress == nil || o.Dress.ID != "dress-1" {
			t.Errorf("outfit %d missing locked dress", i)
		}
		if o.Top != nil || o.Bottom != nil {
			t.Errorf("outfit %d mixes archetypes despite locked dress", i)
		}
	}
}

func TestGenerateSortedByScoreDescending(t *testing.T) {
	outfits := Generate(workableCloset(), model.OccasionCasual, Options{PreferLeastWorn: true, Rand: testRand()}, nil)
	for i := 1; i < len(outfits); i++ {
		if outfits[i].Score > outfits[i-1].Score {
			t.Errorf("outfits not sorted: score[%d]=%f > score[%d]=%f",
				i, outfits[i].Score, i-1, outfits[i-1].Score)
		}
	}
}

func TestGenerateInfeasibleClosetReturnsEmpty(t *testing.T) {
	items := []model.Item{
		makeItem("t", model.CategoryTop),
		makeItem("s", model.CategoryShoes),
	}
	if got := Generate(items, model.OccasionCasual, Options{Rand: testRand()}, nil); len(got) != 0 {
		t.Errorf("got %d outfits from infeasible closet, want 0", len(got))
	}
}

func TestGenerateSmallClosetFewerThanTen(t *testing.T) {
	items := []model.Item{
		makeItem("t", model.CategoryTop),
		makeItem("b", model.CategoryBottom),
		makeItem("s", model.CategoryShoes),
	}
	outfits := Generate(items, model.OccasionCasual, Options{Rand: testRand()}, nil)
	if len(outfits) != 1 {
		t.Errorf("got %d outfits from a 3-item closet, want exactly 1", len(outfits))
	}
}

func TestScoreItemOccasionBoost(t *testing.T) {
	rng := testRand()
	work := model.Item{ID: "w", Category: model.CategoryTop, Tags: []string{"blazer"}, Status: model.StatusActive}
	plain := model.Item{ID: "p", Category: model.CategoryTop, Status: model.StatusActive}

	if got := occasionScore(&work, model.OccasionWork); got != occasionBoost {
		t.Errorf("occasionScore(blazer, work) = %f, want %f", got, float64(occasionBoost))
	}
	if got := occasionScore(&plain, model.OccasionWork); got != 0 {
		t.Errorf("occasionScore(plain, work) = %f, want 0", got)
	}

	// Jitter stays inside [0, 2).
	for i := 0; i < 100; i++ {
		s := scoreItem(&plain, model.OccasionCasual, 0, Options{}, rng)
		if s < 0 || s >= jitterRange {
			t.Fatalf("score with no boosts = %f, want [0, %f)", s, float64(jitterRange))
		}
	}
}

func TestScoreItemLeastWornDelta(t *testing.T) {
	rng := testRand()
	worn := model.Item{ID: "a", WearCount: 10, Status: model.StatusActive}
	fresh := model.Item{ID: "b", WearCount: 0, Status: model.StatusActive}
	opts := Options{PreferLeastWorn: true}

	wornScore := scoreItem(&worn, model.OccasionCasual, 10, opts, rng)
	freshScore := scoreItem(&fresh, model.OccasionCasual, 10, opts, rng)

	// Delta is 10 and jitter is at most 2, so fresh always wins.
	if freshScore <= wornScore {
		t.Errorf("least-worn item scored %f, heavily worn %f", freshScore, wornScore)
	}
}

func TestWeightedPickPoolBounds(t *testing.T) {
	rng := testRand()

	if _, ok := weightedPick(rng, nil); ok {
		t.Error("weightedPick on empty bucket must report failure")
	}

	single := []scoredItem{{item: &model.Item{ID: "only"}, score: 0}}
	picked, ok := weightedPick(rng, single)
	if !ok || picked.item.ID != "only" {
		t.Errorf("weightedPick on single bucket = (%v, %v)", picked, ok)
	}

	// With a dominant top scorer and pool fraction 0.6, the lowest scorer
	// of five is never eligible.
	bucket := make([]scoredItem, 5)
	for i := range bucket {
		bucket[i] = scoredItem{item: &model.Item{ID: fmt.Sprintf("i%d", i)}, score: float64(10 - i)}
	}
	for i := 0; i < 200; i++ {
		picked, ok := weightedPick(rng, bucket)
		if !ok {
			t.Fatal("pick failed")
		}
		if picked.item.ID == "i4" {
			t.Fatal("item outside the top 60% pool was picked")
		}
	}
}

func TestBuildRationale(t *testing.T) {
	opts := Options{
		PreferLeastWorn: true,
		AvoidRecentDays: 7,
		PreferFavorites: true,
		CapsuleOnly:     true,
		CapsuleID:       "cap-1",
	}
	lines := buildRationale(opts, model.OccasionDate)

	want := []string{
		"Built for Date.",
		"Prioritized least-worn items.",
		"Avoided items worn in the last 7 days.",
		"Boosted your favorited items.",
		"Filtered to your selected capsule.",
	}
	if len(lines) != len(want) {
		t.Fatalf("got %d rationale lines, want %d: %v", len(lines), len(want), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, lines[i], want[i])
		}
	}
}
