package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtualcloset/closet/internal/cli"
	"github.com/virtualcloset/closet/internal/wear"
)

func wearCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wear",
		Short: "Track outfit wears",
	}

	cmd.AddCommand(wearLogCmd())
	cmd.AddCommand(wearHistoryCmd())

	return cmd
}

func wearLogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log <outfit-id>",
		Short: "Mark an outfit as worn",
		Long: `Mark an outfit as worn. Every item in the outfit gets its wear count
and last-worn date updated, and an immutable wear event is recorded; the
whole update is atomic.`,
		Args: cobra.ExactArgs(1),
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

			at := time.Now()
			if onFlag, _ := cmd.Flags().GetString("on"); onFlag != "" {
				at, err = time.ParseInLocation("2006-01-02", onFlag, time.Local)
				if err != nil {
					return fmt.Errorf("invalid --on date (want YYYY-MM-DD): %w", err)
				}
			}

			if err := wear.New(store).MarkWorn(ctx, outfit, at); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Logged wear for %d items", len(outfit.ItemIDs))))
			return nil
		},
	}

	cmd.Flags().String("on", "", "date the outfit was worn (YYYY-MM-DD, default today)")

	return cmd
}

func wearHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <outfit-id>",
		Short: "Show the wear history of an outfit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := initStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			events, err := store.GetWearEventsByOutfit(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("Never worn"))
				return nil
			}

			fmt.Fprintln(out, cli.FormatTitle(fmt.Sprintf("Worn %d times", len(events))))
			for i := range events {
				e := &events[i]
				when := time.UnixMilli(e.WornAt).Format("2006-01-02")
				fmt.Fprintf(out, "%s %s\n", when, cli.SubtleStyle.Render(fmt.Sprintf("(%d items)", len(e.ItemIDsSnapshot))))
			}
			return nil
		},
	}
}
