// Package generator implements the outfit generation algorithm: a
// constrained-randomized selection over the active closet that balances
// quality (score-weighted picks) with variety (randomized pools and slot
// choices), under uniqueness and bounded-work guarantees.
package generator

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/virtualcloset/closet/internal/model"
)

const (
	// maxResults is the number of unique outfits one call collects.
	maxResults = 10
	// maxAttempts bounds the assembly loop regardless of how many unique
	// outfits were found.
	maxAttempts = 50

	favoriteBoost  = 10.0
	occasionBoost  = 5.0
	jitterRange    = 2.0
	poolFraction   = 0.6
	minPickWeight  = 0.1
	dressStyleOdds = 0.3
	outerwearOdds  = 0.3
	accessoryOdds  = 0.4
)

// occasionKeywords maps each occasion to the text fragments that mark an
// item as a fit for it.
var occasionKeywords = map[model.Occasion][]string{
	model.OccasionCasual: {"casual", "everyday", "relaxed", "denim", "sneakers", "basic", "comfy"},
	model.OccasionWork:   {"work", "formal", "professional", "business", "blazer", "office", "smart"},
	model.OccasionDate:   {"date", "elegant", "chic", "romantic", "dressy", "stylish"},
	model.OccasionFormal: {"formal", "gala", "black tie", "suit", "gown", "ceremony", "event"},
	model.OccasionGym:    {"gym", "athletic", "activewear", "sport", "workout", "running", "yoga"},
}

// Options configures one generation call. The zero value asks for no
// preference weighting at all.
type Options struct {
	PreferLeastWorn bool
	AvoidRecentDays int
	PreferFavorites bool
	CapsuleOnly     bool
	CapsuleID       string

	// Now anchors recency checks; zero means time.Now(). Rand drives all
	// randomized choices; nil means a time-seeded source. Both exist so
	// tests can pin down exact selections.
	Now  time.Time
	Rand *rand.Rand
}

func (o *Options) clock() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

func (o *Options) rng() *rand.Rand {
	if o.Rand != nil {
		return o.Rand
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// scoredItem pairs an item snapshot with its score for this call.
type scoredItem struct {
	item  *model.Item
	score float64
}

// Validation is the result of a pre-flight closet check.
type Validation struct {
	CanGenerate    bool
	MissingMessage string
}

// ValidateCloset reports whether the closet can produce at least one
// outfit, with a user-facing explanation when it cannot. It mirrors the
// feasibility precheck inside Generate: for every closet where
// CanGenerate is false, Generate returns no outfits.
func ValidateCloset(items []model.Item) Validation {
	var hasTops, hasBottoms, hasDresses, hasShoes bool
	for i := range items {
		if items[i].Status != model.StatusActive {
			continue
		}
		switch items[i].Category {
		case model.CategoryTop:
			hasTops = true
		case model.CategoryBottom:
			hasBottoms = true
		case model.CategoryDress, model.CategoryJumpsuit:
			hasDresses = true
		case model.CategoryShoes:
			hasShoes = true
		}
	}

	if !hasShoes {
		return Validation{MissingMessage: "Add some shoes to generate outfits."}
	}
	if !(hasTops && hasBottoms) && !hasDresses {
		return Validation{
			MissingMessage: "Add at least a top + bottom, or a dress/jumpsuit, to generate outfits.",
		}
	}
	return Validation{CanGenerate: true}
}

// Generate assembles up to ten distinct outfit candidates for the given
// occasion, sorted by descending score. It is pure: no I/O, and fully
// deterministic for a fixed Options.Rand and Options.Now. An infeasible
// closet yields an empty slice, never an error.
func Generate(items []model.Item, occasion model.Occasion, opts Options, lockedItemIDs []string) []model.GeneratedOutfit {
	rng := opts.rng()
	now := opts.clock().UnixMilli()
	avoidMs := int64(opts.AvoidRecentDays) * 24 * int64(time.Hour/time.Millisecond)

	locked := make(map[string]bool, len(lockedItemIDs))
	for _, id := range lockedItemIDs {
		locked[id] = true
	}

	// Eligibility: active items only; recently worn items are excluded
	// unless locked (locks override recency avoidance).
	eligible := make([]*model.Item, 0, len(items))
	for i := range items {
		item := &items[i]
		if item.Status != model.StatusActive {
			continue
		}
		if opts.AvoidRecentDays > 0 && item.LastWornAt != 0 && !locked[item.ID] &&
			now-item.LastWornAt < avoidMs {
			continue
		}
		eligible = append(eligible, item)
	}

	maxWearCount := 0
	for _, item := range eligible {
		if item.WearCount > maxWearCount {
			maxWearCount = item.WearCount
		}
	}

	buckets := make(map[model.Category][]scoredItem)
	lockedByCategory := make(map[model.Category]scoredItem)
	for _, item := range eligible {
		s := scoredItem{item: item, score: scoreItem(item, occasion, maxWearCount, opts, rng)}
		buckets[item.Category] = append(buckets[item.Category], s)
		if locked[item.ID] {
			lockedByCategory[item.Category] = s
		}
	}

	canMakeTopBottom := len(buckets[model.CategoryTop]) > 0 &&
		len(buckets[model.CategoryBottom]) > 0 &&
		len(buckets[model.CategoryShoes]) > 0
	canMakeDress := (len(buckets[model.CategoryDress]) > 0 || len(buckets[model.CategoryJumpsuit]) > 0) &&
		len(buckets[model.CategoryShoes]) > 0

	if !canMakeTopBottom && !canMakeDress {
		return nil
	}

	rationale := buildRationale(opts, occasion)
	var results []model.GeneratedOutfit
	signatures := make(map[string]bool)

	for attempts := 0; len(results) < maxResults && attempts < maxAttempts; attempts++ {
		lockedDress, hasLockedDress := lockedByCategory[model.CategoryDress]
		lockedJumpsuit, hasLockedJumpsuit := lockedByCategory[model.CategoryJumpsuit]
		lockedTop, hasLockedTop := lockedByCategory[model.CategoryTop]
		lockedBottom, hasLockedBottom := lockedByCategory[model.CategoryBottom]
		lockedShoes, hasLockedShoes := lockedByCategory[model.CategoryShoes]
		lockedOuterwear, hasLockedOuterwear := lockedByCategory[model.CategoryOuterwear]
		lockedAccessory, hasLockedAccessory := lockedByCategory[model.CategoryAccessory]

		// Archetype: a locked dress or jumpsuit forces dress-style; a
		// locked top or bottom forces top/bottom; otherwise dress-style
		// gets a 30% chance when it is feasible at all.
		useDressStyle := hasLockedDress || hasLockedJumpsuit ||
			(!hasLockedTop && !hasLockedBottom && canMakeDress && rng.Float64() < dressStyleOdds)

		var outfit *model.GeneratedOutfit
		var slots []scoredItem

		if useDressStyle && canMakeDress {
			var body scoredItem
			var ok bool
			switch {
			case hasLockedDress:
				body, ok = lockedDress, true
			case hasLockedJumpsuit:
				body, ok = lockedJumpsuit, true
			case rng.Float64() < 0.5:
				body, ok = weightedPick(rng, buckets[model.CategoryDress])
			default:
				body, ok = weightedPick(rng, buckets[model.CategoryJumpsuit])
			}

			shoes, shoesOK := pickSlot(rng, buckets[model.CategoryShoes], lockedShoes, hasLockedShoes)
			if ok && shoesOK {
				outfit = &model.GeneratedOutfit{Shoes: shoes.item, Rationale: rationale}
				if body.item.Category == model.CategoryDress {
					outfit.Dress = body.item
				} else {
					outfit.Jumpsuit = body.item
				}
				slots = []scoredItem{body, shoes}
			}
		}

		if outfit == nil && canMakeTopBottom {
			top, topOK := pickSlot(rng, buckets[model.CategoryTop], lockedTop, hasLockedTop)
			bottom, bottomOK := pickSlot(rng, buckets[model.CategoryBottom], lockedBottom, hasLockedBottom)
			shoes, shoesOK := pickSlot(rng, buckets[model.CategoryShoes], lockedShoes, hasLockedShoes)
			if topOK && bottomOK && shoesOK {
				outfit = &model.GeneratedOutfit{
					Top:       top.item,
					Bottom:    bottom.item,
					Shoes:     shoes.item,
					Rationale: rationale,
				}
				slots = []scoredItem{top, bottom, shoes}
			}
		}

		// Attempts that cannot fill every mandatory slot produce nothing;
		// they still consume an attempt so the loop stays bounded.
		if outfit == nil {
			continue
		}

		// Optional slots: outerwear 30%, accessory 40%; locked items are
		// always included.
		if hasLockedOuterwear {
			outfit.Outerwear = lockedOuterwear.item
			slots = append(slots, lockedOuterwear)
		} else if len(buckets[model.CategoryOuterwear]) > 0 && rng.Float64() < outerwearOdds {
			if picked, ok := weightedPick(rng, buckets[model.CategoryOuterwear]); ok {
				outfit.Outerwear = picked.item
				slots = append(slots, picked)
			}
		}
		if hasLockedAccessory {
			outfit.Accessory = lockedAccessory.item
			slots = append(slots, lockedAccessory)
		} else if len(buckets[model.CategoryAccessory]) > 0 && rng.Float64() < accessoryOdds {
			if picked, ok := weightedPick(rng, buckets[model.CategoryAccessory]); ok {
				outfit.Accessory = picked.item
				slots = append(slots, picked)
			}
		}

		for _, s := range slots {
			outfit.Score += s.score
		}

		sig := outfit.Signature()
		if !signatures[sig] {
			signatures[sig] = true
			results = append(results, *outfit)
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results
}

// scoreItem computes the desirability of one item for this call: least-worn
// delta, favorites boost, occasion keyword match, plus a small jitter so
// repeated calls don't converge on the exact same outfit.
func scoreItem(item *model.Item, occasion model.Occasion, maxWearCount int, opts Options, rng *rand.Rand) float64 {
	var score float64
	if opts.PreferLeastWorn && maxWearCount > 0 {
		score += float64(maxWearCount - item.WearCount)
	}
	if opts.PreferFavorites && item.IsFavorite {
		score += favoriteBoost
	}
	score += occasionScore(item, occasion)
	score += rng.Float64() * jitterRange
	return score
}

func occasionScore(item *model.Item, occasion model.Occasion) float64 {
	text := item.SearchText()
	for _, keyword := range occasionKeywords[occasion] {
		if strings.Contains(text, keyword) {
			return occasionBoost
		}
	}
	return 0
}

// pickSlot resolves one mandatory slot: the locked item when present,
// otherwise a weighted pick from the bucket.
func pickSlot(rng *rand.Rand, bucket []scoredItem, lockedItem scoredItem, hasLocked bool) (scoredItem, bool) {
	if hasLocked {
		return lockedItem, true
	}
	return weightedPick(rng, bucket)
}

// weightedPick selects one item from a scored set: sort descending by
// score, keep the top 60% (rounded up, at least one) as the pool, then
// sample the pool weighted by max(score, 0.1) so every pooled item keeps a
// nonzero chance. Best items dominate without any single item always
// winning.
func weightedPick(rng *rand.Rand, candidates []scoredItem) (scoredItem, bool) {
	if len(candidates) == 0 {
		return scoredItem{}, false
	}

	sorted := make([]scoredItem, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].score > sorted[j].score
	})

	poolSize := (len(sorted)*6 + 9) / 10 // ceil(len * 0.6)
	if poolSize < 1 {
		poolSize = 1
	}
	pool := sorted[:poolSize]

	var total float64
	for _, c := range pool {
		total += weight(c.score)
	}

	r := rng.Float64() * total
	for _, c := range pool {
		r -= weight(c.score)
		if r <= 0 {
			return c, true
		}
	}
	return pool[0], true
}

func weight(score float64) float64 {
	if score < minPickWeight {
		return minPickWeight
	}
	return score
}

// buildRationale produces the explanation lines attached to every outfit
// in a batch. The rationale describes the call's configuration, so it is
// identical across the batch.
func buildRationale(opts Options, occasion model.Occasion) []string {
	lines := []string{fmt.Sprintf("Built for %s.", titleCase(string(occasion)))}
	if opts.PreferLeastWorn {
		lines = append(lines, "Prioritized least-worn items.")
	}
	if opts.AvoidRecentDays > 0 {
		lines = append(lines, fmt.Sprintf("Avoided items worn in the last %d days.", opts.AvoidRecentDays))
	}
	if opts.PreferFavorites {
		lines = append(lines, "Boosted your favorited items.")
	}
	if opts.CapsuleOnly && opts.CapsuleID != "" {
		lines = append(lines, "Filtered to your selected capsule.")
	}
	return lines
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
