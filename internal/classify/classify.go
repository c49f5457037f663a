// Package classify suggests a clothing category for an uploaded photo.
// Classification is best-effort: the rest of the application works without
// it, and any failure degrades to "no suggestion" rather than an error the
// caller has to handle.
package classify

import (
	"context"
	"strings"

	"github.com/virtualcloset/closet/internal/model"
)

const (
	// Predictions below this confidence are ignored when mapping to a
	// category.
	minCategoryConfidence = 0.20
	// Predictions below this confidence are dropped from the raw label
	// list shown to the user.
	minLabelConfidence = 0.10
)

// Prediction is a single label with its confidence as reported by a model.
type Prediction struct {
	Label       string
	Probability float64
}

// Result is the outcome of classifying a photo. SuggestedCategory is empty
// when no prediction mapped to a known category.
type Result struct {
	SuggestedCategory model.Category
	RawLabels         []string
}

// Classifier turns an encoded image into a category suggestion.
type Classifier interface {
	Classify(ctx context.Context, image []byte) (Result, error)
}

// categoryKeywords maps label substrings to categories. Ordered: earlier
// entries win when a label matches several.
var categoryKeywords = []struct {
	keywords []string
	category model.Category
}{
	{[]string{"jersey", "t-shirt", "tshirt", "polo", "blouse", "shirt", "top", "tank", "crop", "sweatshirt", "hoodie", "pullover", "sweater", "cardigan", "knitwear", "turtleneck", "tunic", "camisole", "vest top"}, model.CategoryTop},
	{[]string{"trouser", "jean", "denim", "pant", "legging", "short", "skirt", "chino", "sweatpant", "jogger"}, model.CategoryBottom},
	{[]string{"dress", "gown", "frock", "sundress", "maxi"}, model.CategoryDress},
	{[]string{"jumpsuit", "romper", "overalls", "playsuit", "dungaree"}, model.CategoryJumpsuit},
	{[]string{"jacket", "coat", "blazer", "trench", "parka", "anorak", "windbreaker", "overcoat", "raincoat", "fur coat", "peacoat"}, model.CategoryOuterwear},
	{[]string{"shoe", "boot", "sneaker", "sandal", "heel", "loafer", "pump", "slipper", "trainer", "oxford", "stiletto", "mule", "clog", "wedge"}, model.CategoryShoes},
	{[]string{"bag", "purse", "handbag", "belt", "scarf", "hat", "cap", "sunglasses", "glove", "watch", "necklace", "earring", "bracelet", "tie", "bow tie", "wallet", "backpack", "clutch", "tote"}, model.CategoryAccessory},
}

// MapPredictions resolves model predictions to a Result. The first
// sufficiently confident prediction whose label contains a known keyword
// decides the category.
func MapPredictions(predictions []Prediction) Result {
	var result Result
	for _, pred := range predictions {
		if pred.Probability < minCategoryConfidence {
			continue
		}
		lower := strings.ToLower(pred.Label)
		for _, entry := range categoryKeywords {
			for _, kw := range entry.keywords {
				if strings.Contains(lower, kw) {
					result.SuggestedCategory = entry.category
					break
				}
			}
			if result.SuggestedCategory != "" {
				break
			}
		}
		if result.SuggestedCategory != "" {
			break
		}
	}
	for _, pred := range predictions {
		if pred.Probability > minLabelConfidence {
			result.RawLabels = append(result.RawLabels, pred.Label)
		}
	}
	return result
}

// Unavailable is the no-op classifier used when no model backend is
// configured. It always reports no suggestion.
type Unavailable struct{}

func (Unavailable) Classify(ctx context.Context, image []byte) (Result, error) {
	return Result{}, nil
}
