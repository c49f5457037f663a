package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtualcloset/closet/internal/cli"
)

func prefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "View and change generation preferences",
		RunE:  runPrefsShow,
	}

	cmd.AddCommand(prefsSetCmd())

	return cmd
}

func runPrefsShow(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	prefs, err := store.GetPrefs(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, cli.FormatTitle("Preferences"))
	fmt.Fprintf(out, "avoid-repeat-days: %d\n", prefs.AvoidRepeatDays)
	fmt.Fprintf(out, "prefer-favorites:  %v\n", prefs.PreferFavorites)
	return nil
}

func prefsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change generation preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			prefs, err := store.GetPrefs(ctx)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("avoid-repeat-days") {
				days, _ := cmd.Flags().GetInt("avoid-repeat-days")
				if days < 0 {
					return fmt.Errorf("avoid-repeat-days must be zero or positive")
				}
				prefs.AvoidRepeatDays = days
				changed = true
			}
			if cmd.Flags().Changed("prefer-favorites") {
				prefs.PreferFavorites, _ = cmd.Flags().GetBool("prefer-favorites")
				changed = true
			}
			if !changed {
				return fmt.Errorf("nothing to change (pass --avoid-repeat-days or --prefer-favorites)")
			}

			prefs.UpdatedAt = time.Now().UnixMilli()
			if err := store.SavePrefs(ctx, prefs); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Preferences updated"))
			return nil
		},
	}

	cmd.Flags().Int("avoid-repeat-days", 0, "skip items worn in the last N days when generating (0 disables)")
	cmd.Flags().Bool("prefer-favorites", false, "boost favorited items when generating")

	return cmd
}
