package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/virtualcloset/closet/internal/cli"
	"github.com/virtualcloset/closet/internal/model"
)

func capsulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capsules",
		Short: "Manage capsules (named subsets of the closet)",
	}

	cmd.AddCommand(capsulesCreateCmd())
	cmd.AddCommand(capsulesListCmd())
	cmd.AddCommand(capsulesAddItemsCmd())
	cmd.AddCommand(capsulesRemoveItemsCmd())
	cmd.AddCommand(capsulesDeleteCmd())

	return cmd
}

func capsulesCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a capsule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			itemIDs, _ := cmd.Flags().GetStringSlice("items")
			for _, id := range itemIDs {
				if _, err := store.GetItemByID(ctx, id); err != nil {
					return fmt.Errorf("item %s: %w", id, err)
				}
			}

			capsule := model.Capsule{
				ID:        uuid.NewString(),
				Name:      args[0],
				ItemIDs:   itemIDs,
				UpdatedAt: time.Now().UnixMilli(),
			}
			if err := store.SaveCapsule(ctx, &capsule); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created capsule %q with %d items", capsule.Name, len(capsule.ItemIDs))))
			fmt.Fprintln(cmd.OutOrStdout(), cli.SubtleStyle.Render("id: "+capsule.ID))
			return nil
		},
	}

	cmd.Flags().StringSlice("items", nil, "item ids to include")

	return cmd
}

func capsulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List capsules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			capsules, err := store.GetCapsules(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(capsules) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No capsules yet. Create one with: closet capsules create"))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Capsules (%d)", len(capsules))))
			for i := range capsules {
				c := &capsules[i]
				fmt.Fprintf(out, "%s %s\n", cli.BoldStyle.Render(c.Name), cli.SubtleStyle.Render(fmt.Sprintf("(%d items, id: %s)", len(c.ItemIDs), c.ID)))
			}
			return nil
		},
	}
}

func capsulesAddItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <capsule-id> <item-id>...",
		Short: "Add items to a capsule",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			capsule, err := store.GetCapsuleByID(ctx, args[0])
			if err != nil {
				return err
			}

			added := 0
			for _, id := range args[1:] {
				if capsule.Contains(id) {
					continue
				}
				if _, err := store.GetItemByID(ctx, id); err != nil {
					return fmt.Errorf("item %s: %w", id, err)
				}
				capsule.ItemIDs = append(capsule.ItemIDs, id)
				added++
			}

			capsule.UpdatedAt = time.Now().UnixMilli()
			if err := store.SaveCapsule(ctx, capsule); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %d items to %q", added, capsule.Name)))
			return nil
		},
	}
}

func capsulesRemoveItemsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <capsule-id> <item-id>...",
		Short: "Remove items from a capsule",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			capsule, err := store.GetCapsuleByID(ctx, args[0])
			if err != nil {
				return err
			}

			drop := make(map[string]bool, len(args)-1)
			for _, id := range args[1:] {
				drop[id] = true
			}
			kept := capsule.ItemIDs[:0]
			for _, id := range capsule.ItemIDs {
				if !drop[id] {
					kept = append(kept, id)
				}
			}
			capsule.ItemIDs = kept

			capsule.UpdatedAt = time.Now().UnixMilli()
			if err := store.SaveCapsule(ctx, capsule); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("%q now has %d items", capsule.Name, len(capsule.ItemIDs))))
			return nil
		},
	}
}

func capsulesDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <capsule-id>",
		Short: "Delete a capsule (items stay in the closet)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			capsule, err := store.GetCapsuleByID(ctx, args[0])
			if err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				ok, err := cli.Confirm(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), fmt.Sprintf("Delete capsule %q?", capsule.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Cancelled"))
					return nil
				}
			}

			if err := store.DeleteCapsule(ctx, capsule.ID, time.Now().UnixMilli()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted capsule "+capsule.Name))
			return nil
		},
	}

	cmd.Flags().Bool("yes", false, "skip the confirmation prompt")

	return cmd
}
