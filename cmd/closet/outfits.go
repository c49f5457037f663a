package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/virtualcloset/closet/internal/cli"
	"github.com/virtualcloset/closet/internal/generator"
	"github.com/virtualcloset/closet/internal/model"
	"github.com/virtualcloset/closet/internal/service"
)

func outfitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outfits",
		Short: "Generate and manage outfits",
	}

	cmd.AddCommand(outfitsGenerateCmd())
	cmd.AddCommand(outfitsListCmd())
	cmd.AddCommand(outfitsFavoriteCmd())
	cmd.AddCommand(outfitsDeleteCmd())

	return cmd
}

func outfitsGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate outfit suggestions",
		Long: `Generate up to ten outfit candidates for an occasion. Items worn within
the avoid-repeat window are skipped unless locked; locked items appear in
every candidate.`,
		RunE: runOutfitsGenerate,
	}

	cmd.Flags().String("occasion", "casual", "occasion (casual, work, date, formal, gym)")
	cmd.Flags().StringSlice("lock", nil, "item ids that must appear in every candidate")
	cmd.Flags().String("capsule", "", "generate only from this capsule's items")
	cmd.Flags().Int("avoid-recent", -1, "skip items worn in the last N days (-1 = preference default)")
	cmd.Flags().Bool("least-worn", true, "boost items worn least often")
	cmd.Flags().Int("save", 0, "save candidate N as an outfit")

	return cmd
}

func runOutfitsGenerate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	occasionFlag, _ := cmd.Flags().GetString("occasion")
	occasion, err := model.ParseOccasion(occasionFlag)
	if err != nil {
		return err
	}

	prefs, err := store.GetPrefs(ctx)
	if err != nil {
		return err
	}

	opts := generator.Options{
		PreferLeastWorn: true,
		AvoidRecentDays: prefs.AvoidRepeatDays,
		PreferFavorites: prefs.PreferFavorites,
	}
	opts.PreferLeastWorn, _ = cmd.Flags().GetBool("least-worn")
	if days, _ := cmd.Flags().GetInt("avoid-recent"); days >= 0 {
		opts.AvoidRecentDays = days
	}

	items, err := store.GetItems(ctx, service.ItemFilter{Status: model.StatusActive})
	if err != nil {
		return err
	}

	capsuleID, _ := cmd.Flags().GetString("capsule")
	if capsuleID != "" {
		capsule, err := store.GetCapsuleByID(ctx, capsuleID)
		if err != nil {
			return err
		}
		filtered := items[:0]
		for i := range items {
			if capsule.Contains(items[i].ID) {
				filtered = append(filtered, items[i])
			}
		}
		items = filtered
		opts.CapsuleOnly = true
		opts.CapsuleID = capsule.ID
	}

	out := cmd.OutOrStdout()
	if v := generator.ValidateCloset(items); !v.CanGenerate {
		fmt.Fprintln(out, cli.FormatWarning(v.MissingMessage))
		return nil
	}

	locks, _ := cmd.Flags().GetStringSlice("lock")
	outfits := generator.Generate(items, occasion, opts, locks)
	if len(outfits) == 0 {
		fmt.Fprintln(out, cli.FormatWarning("No outfits possible right now. Try a shorter avoid-repeat window."))
		return nil
	}

	fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("%s outfits", titleOccasion(occasion))))
	now := time.Now()
	for i := range outfits {
		fmt.Fprintln(out, cli.RenderGeneratedOutfit(i+1, &outfits[i], now))
	}

	if saveIdx, _ := cmd.Flags().GetInt("save"); saveIdx > 0 {
		if saveIdx > len(outfits) {
			return fmt.Errorf("no candidate %d to save (got %d)", saveIdx, len(outfits))
		}
		chosen := &outfits[saveIdx-1]
		outfit := model.Outfit{
			ID:        uuid.NewString(),
			ItemIDs:   chosen.ItemIDs(),
			Occasion:  occasion,
			CapsuleID: opts.CapsuleID,
			CreatedAt: now.UnixMilli(),
			UpdatedAt: now.UnixMilli(),
		}
		if err := store.SaveOutfit(ctx, &outfit); err != nil {
			return err
		}
		fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Saved candidate %d", saveIdx)))
		fmt.Fprintln(out, cli.SubtleStyle.Render("id: "+outfit.ID))
	}

	return nil
}

func titleOccasion(o model.Occasion) string {
	s := string(o)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func outfitsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved outfits",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			outfits, err := store.GetOutfits(ctx)
			if err != nil {
				return err
			}
			favoritesOnly, _ := cmd.Flags().GetBool("favorites")

			out := cmd.OutOrStdout()
			shown := 0
			for i := range outfits {
				o := &outfits[i]
				if favoritesOnly && !o.IsFavorite {
					continue
				}
				shown++
				fmt.Fprintln(out, renderSavedOutfit(cmd, store, o))
			}
			if shown == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No saved outfits. Generate some with: closet outfits generate"))
			}
			return nil
		},
	}

	cmd.Flags().Bool("favorites", false, "only show favorited outfits")

	return cmd
}

// renderSavedOutfit resolves the outfit's item ids for display. Ids that no
// longer resolve (the item was deleted) are skipped.
func renderSavedOutfit(cmd *cobra.Command, store service.Storage, outfit *model.Outfit) string {
	var b strings.Builder

	if outfit.IsFavorite {
		b.WriteString(cli.FavoriteStyle.Render(cli.FavoriteIcon) + " ")
	} else {
		b.WriteString("  ")
	}
	b.WriteString(cli.BoldStyle.Render(titleOccasion(outfit.Occasion) + " outfit"))
	b.WriteString(" " + cli.SubtleStyle.Render("id: "+outfit.ID))

	for _, id := range outfit.ItemIDs {
		item, err := store.GetItemByID(cmd.Context(), id)
		if err != nil {
			continue
		}
		b.WriteString("\n    " + cli.ItemLabel(item))
	}
	return b.String()
}

func outfitsFavoriteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <outfit-id>",
		Short: "Toggle a saved outfit's favorite flag",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			outfit, err := store.GetOutfitByID(ctx, args[0])
			if err != nil {
				return err
			}

			outfit.IsFavorite = !outfit.IsFavorite
			outfit.UpdatedAt = time.Now().UnixMilli()
			if err := store.SaveOutfit(ctx, outfit); err != nil {
				return err
			}

			if outfit.IsFavorite {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(cli.FavoriteIcon+" Favorited outfit"))
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Unfavorited outfit"))
			}
			return nil
		},
	}
}

func outfitsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <outfit-id>",
		Short: "Delete a saved outfit (wear history is kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			outfit, err := store.GetOutfitByID(ctx, args[0])
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := cli.Confirm(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), "Delete this outfit?")
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
			}

			if err := store.DeleteOutfit(ctx, outfit.ID, time.Now().UnixMilli()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted outfit"))
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	return cmd
}
