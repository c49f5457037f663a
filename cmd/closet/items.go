package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtualcloset/closet/internal/classify"
	"github.com/virtualcloset/closet/internal/cli"
	"github.com/virtualcloset/closet/internal/config"
	"github.com/virtualcloset/closet/internal/imaging"
	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/service"
)

func itemsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "items",
		Short: "Manage clothing items",
	}

	cmd.AddCommand(itemsAddCmd())
	cmd.AddCommand(itemsListCmd())
	cmd.AddCommand(itemsShowCmd())
	cmd.AddCommand(itemsArchiveCmd())
	cmd.AddCommand(itemsRestoreCmd())
	cmd.AddCommand(itemsFavoriteCmd())
	cmd.AddCommand(itemsDeleteCmd())

	return cmd
}

func itemsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a clothing item to the closet",
		Long: `Add a clothing item. With --image, the photo is normalized and stored,
dominant colors are extracted automatically, and a category is suggested
when none is given.`,
		RunE: runItemsAdd,
	}

	cmd.Flags().String("category", "", "item category (top, bottom, dress, jumpsuit, outerwear, shoes, accessory)")
	cmd.Flags().String("image", "", "path to a photo of the item")
	cmd.Flags().StringSlice("colors", nil, "item colors (defaults to colors extracted from the image)")
	cmd.Flags().StringSlice("tags", nil, "freeform tags")
	cmd.Flags().String("season", "", "season (spring, summer, fall, winter, all)")
	cmd.Flags().String("brand", "", "brand name")
	cmd.Flags().String("url", "", "product URL")
	cmd.Flags().String("notes", "", "freeform notes")
	cmd.Flags().Bool("favorite", false, "mark as favorite")

	return cmd
}

func runItemsAdd(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	now := time.Now().UnixMilli()
	item := model.Item{
		ID:        uuid.NewString(),
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	categoryFlag, _ := cmd.Flags().GetString("category")
	imagePath, _ := cmd.Flags().GetString("image")
	item.Colors, _ = cmd.Flags().GetStringSlice("colors")
	for _, color := range item.Colors {
		if !model.IsNamedColor(color) {
			return fmt.Errorf("unknown color %q (valid: %s)", color, strings.Join(model.NamedColors, ", "))
		}
	}
	item.Tags, _ = cmd.Flags().GetStringSlice("tags")
	item.Brand, _ = cmd.Flags().GetString("brand")
	item.URL, _ = cmd.Flags().GetString("url")
	item.Notes, _ = cmd.Flags().GetString("notes")
	item.IsFavorite, _ = cmd.Flags().GetBool("favorite")

	if seasonFlag, _ := cmd.Flags().GetString("season"); seasonFlag != "" {
		season, err := model.ParseSeason(seasonFlag)
		if err != nil {
			return err
		}
		item.Season = season
	}

	if imagePath != "" {
		if err := attachImage(cmd, &item, imagePath, categoryFlag == ""); err != nil {
			return err
		}
	}

	if categoryFlag != "" {
		category, err := model.ParseCategory(categoryFlag)
		if err != nil {
			return err
		}
		item.Category = category
	}
	if item.Category == "" {
		return fmt.Errorf("category is required (pass --category, or --image for a suggestion)")
	}

	if err := store.SaveItem(ctx, &item); err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Added "+cli.ItemLabel(&item)))
	fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("id: "+item.ID))
	return nil
}

// attachImage normalizes the photo, stores it under the data directory,
// extracts dominant colors, and optionally fills the category from the
// classifier's suggestion.
func attachImage(cmd *cobra.Command, item *model.Item, imagePath string, suggestCategory bool) error {
	raw, err := os.ReadFile(config.ExpandPath(imagePath))
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	normalized, err := imaging.Normalize(raw)
	if err != nil {
		return err
	}

	stored, err := storeImage(item.ID, normalized)
	if err != nil {
		return err
	}
	item.Images = append(item.Images, stored)

	if len(item.Colors) == 0 {
		colors, err := imaging.DominantColors(normalized)
		if err == nil && len(colors) > 0 {
			item.Colors = colors
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Detected colors: "+strings.Join(colors, ", ")))
		}
	}

	if suggestCategory {
		result, err := newClassifier().Classify(cmd.Context(), normalized)
		if err == nil && result.SuggestedCategory != "" {
			item.Category = result.SuggestedCategory
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Suggested category: "+string(result.SuggestedCategory)))
		}
	}

	return nil
}

// storeImage writes a normalized photo next to the database and returns its
// path, which is what gets recorded on the item and synced.
func storeImage(itemID string, data []byte) (string, error) {
	dir := viper.GetString("images.dir")
	if dir == "" {
		dir = filepath.Join(filepath.Dir(config.ExpandPath(config.DefaultDatabasePath())), "images")
	} else {
		dir = config.ExpandPath(dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	path := filepath.Join(dir, itemID+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store image: %w", err)
	}
	return path, nil
}

// newClassifier returns the configured category classifier. No model
// backend ships with the CLI yet, so this is the no-op classifier unless a
// test swaps it.
func newClassifier() classify.Classifier {
	return classify.Unavailable{}
}

func itemsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List clothing items",
		RunE:  runItemsList,
	}

	cmd.Flags().String("category", "", "filter by category")
	cmd.Flags().String("season", "", "filter by season")
	cmd.Flags().String("color", "", "filter by color")
	cmd.Flags().String("tag", "", "filter by tag")
	cmd.Flags().String("search", "", "free-text search across tags, category, notes and brand")
	cmd.Flags().Bool("all", false, "include archived items")

	return cmd
}

func runItemsList(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	filter := service.ItemFilter{Status: model.StatusActive}
	if all, _ := cmd.Flags().GetBool("all"); all {
		filter.Status = ""
	}
	if s, _ := cmd.Flags().GetString("category"); s != "" {
		category, err := model.ParseCategory(s)
		if err != nil {
			return err
		}
		filter.Category = category
	}
	if s, _ := cmd.Flags().GetString("season"); s != "" {
		season, err := model.ParseSeason(s)
		if err != nil {
			return err
		}
		filter.Season = season
	}
	filter.Color, _ = cmd.Flags().GetString("color")
	filter.Tag, _ = cmd.Flags().GetString("tag")
	filter.Search, _ = cmd.Flags().GetString("search")

	items, err := store.GetItems(ctx, filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, cli.FormatInfo("No items found. Add some with: closet items add"))
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Closet (%d items)", len(items))))
	now := time.Now()
	for i := range items {
		fmt.Fprintln(out, cli.RenderItemRow(&items[i], now))
	}
	return nil
}

func itemsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <item-id>",
		Short: "Show one item in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			item, err := store.GetItemByID(ctx, args[0])
			if err != nil {
				return err
			}

			now := time.Now()
			lines := []string{
				"Category:  " + string(item.Category),
				"Colors:    " + strings.Join(item.Colors, ", "),
				"Tags:      " + strings.Join(item.Tags, ", "),
				"Season:    " + string(item.Season),
				"Brand:     " + item.Brand,
				"Status:    " + string(item.Status),
				fmt.Sprintf("Worn:      %d times (%s)", item.WearCount, model.FormatLastWorn(item.LastWornAt, now)),
			}
			if item.URL != "" {
				lines = append(lines, "URL:       "+item.URL)
			}
			if item.Notes != "" {
				lines = append(lines, "Notes:     "+item.Notes)
			}
			if len(item.Images) > 0 {
				lines = append(lines, "Images:    "+strings.Join(item.Images, ", "))
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(cli.ItemLabel(item), strings.Join(lines, "\n")))
			return nil
		},
	}
}

func itemsArchiveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archive <item-id>",
		Short: "Archive an item so generation skips it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setItemStatus(cmd, args[0], model.StatusArchived)
		},
	}
}

func itemsRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <item-id>",
		Short: "Restore an archived item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setItemStatus(cmd, args[0], model.StatusActive)
		},
	}
}

func setItemStatus(cmd *cobra.Command, id string, status model.ItemStatus) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	item, err := store.GetItemByID(ctx, id)
	if err != nil {
		return err
	}

	item.Status = status
	item.UpdatedAt = time.Now().UnixMilli()
	if err := store.SaveItem(ctx, item); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(cli.ItemLabel(item)+" is now "+string(status)))
	return nil
}

func itemsFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <item-id>",
		Short: "Toggle an item's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			item, err := store.GetItemByID(ctx, args[0])
			if err != nil {
				return err
			}

			item.IsFavorite = !item.IsFavorite
			item.UpdatedAt = time.Now().UnixMilli()
			if err := store.SaveItem(ctx, item); err != nil {
				return err
			}

			if item.IsFavorite {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(cli.FavoriteIcon+" Favorited "+cli.ItemLabel(item)))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Unfavorited "+cli.ItemLabel(item)))
			}
			return nil
		},
	}
}

func itemsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <item-id>",
		Short: "Delete an item from the closet",
		Long: `Delete an item. The item stops appearing everywhere immediately; saved
outfits that reference it keep their other pieces.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			item, err := store.GetItemByID(ctx, args[0])
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := cli.Confirm(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), "Delete "+cli.ItemLabel(item)+"?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
			}

			if err := store.DeleteItem(ctx, item.ID, time.Now().UnixMilli()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted "+cli.ItemLabel(item)))
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	return cmd
}
