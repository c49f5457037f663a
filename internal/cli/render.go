package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/virtualcloset/closet/internal/model"
)

// ItemLabel builds the one-line human label for an item. Items have no name
// field; they are identified by colors, category and brand.
func ItemLabel(item *model.Item) string {
	parts := make([]string, 0, 3)
	if len(item.Colors) > 0 {
		parts = append(parts, strings.Join(item.Colors, "/"))
	}
	parts = append(parts, string(item.Category))
	label := strings.Join(parts, " ")
	if item.Brand != "" {
		label += " (" + item.Brand + ")"
	}
	return label
}

// RenderItemRow formats one item for list output.
func RenderItemRow(item *model.Item, now time.Time) string {
	var b strings.Builder

	if item.IsFavorite {
		b.WriteString(FavoriteStyle.Render(FavoriteIcon) + " ")
	} else {
		b.WriteString("  ")
	}
	b.WriteString(BoldStyle.Render(ItemLabel(item)))
	if item.Status == model.StatusArchived {
		b.WriteString(" " + SubtleStyle.Render("[archived]"))
	}

	details := []string{
		fmt.Sprintf("worn %d×", item.WearCount),
		model.FormatLastWorn(item.LastWornAt, now),
	}
	if item.Season != "" && item.Season != model.SeasonAll {
		details = append(details, string(item.Season))
	}
	if len(item.Tags) > 0 {
		details = append(details, strings.Join(item.Tags, ", "))
	}
	b.WriteString("\n    " + SubtleStyle.Render(strings.Join(details, " · ")))
	b.WriteString("\n    " + SubtleStyle.Render("id: "+item.ID))

	return b.String()
}

// RenderGeneratedOutfit renders a generator candidate as a boxed card with
// its slots and rationale.
func RenderGeneratedOutfit(index int, outfit *model.GeneratedOutfit, now time.Time) string {
	slots := []struct {
		name string
		item *model.Item
	}{
		{"Top", outfit.Top},
		{"Bottom", outfit.Bottom},
		{"Dress", outfit.Dress},
		{"Jumpsuit", outfit.Jumpsuit},
		{"Shoes", outfit.Shoes},
		{"Outerwear", outfit.Outerwear},
		{"Accessory", outfit.Accessory},
	}

	var lines []string
	for _, slot := range slots {
		if slot.item == nil {
			continue
		}
		label := ItemLabel(slot.item)
		if slot.item.IsFavorite {
			label += " " + FavoriteStyle.Render(FavoriteIcon)
		}
		worn := SubtleStyle.Render(model.FormatLastWorn(slot.item.LastWornAt, now))
		lines = append(lines, fmt.Sprintf("%-10s %s  %s", SubtleStyle.Render(slot.name), label, worn))
	}

	if len(outfit.Rationale) > 0 {
		lines = append(lines, "")
		for _, reason := range outfit.Rationale {
			lines = append(lines, InfoStyle.Render(SparkleIcon+" "+reason))
		}
	}

	title := fmt.Sprintf("Outfit %d", index)
	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return RenderBox(title, content)
}
