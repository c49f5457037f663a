package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/virtualcloset/closet/internal/cli"
	"github.com/virtualcloset/closet/internal/common"
	"github.com/virtualcloset/closet/internal/remote"
	"github.com/virtualcloset/closet/internal/sync"
)

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Sync the closet with the remote store",
		Long: `Push local changes and pull remote ones, table by table. Requires
sync.url, sync.token and sync.user_id in the config (or the matching
CLOSET_SYNC_* environment variables).`,
		RunE: runSync,
	}

	cmd.Flags().Bool("quiet", false, "suppress the progress bar")

	return cmd
}

func runSync(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	baseURL := viper.GetString("sync.url")
	token := viper.GetString("sync.token")
	userID := viper.GetString("sync.user_id")
	if baseURL == "" || token == "" || userID == "" {
		return common.NewUserError(
			"sync is not configured: set sync.url, sync.token and sync.user_id",
			common.ErrMissingConfig)
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	client, err := remote.NewClient(baseURL, token)
	if err != nil {
		return err
	}

	engine := sync.New(store, client)

	out := cmd.OutOrStdout()
	if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
		bar := progressbar.NewOptions(len(sync.Tables),
			progressbar.OptionSetWriter(out),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("[cyan][bold]Syncing closet...[reset]"),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[green]=[reset]",
				SaucerHead:    "[green]>[reset]",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				if _, err := fmt.Fprintln(out); err != nil {
					slog.Warn("Failed to write newline after progress bar", "error", err)
				}
			}),
		)
		engine.Progress = func(result sync.TableResult) {
			if err := bar.Add(1); err != nil {
				slog.Warn("Failed to update progress bar", "error", err)
			}
		}
	}

	report, err := engine.SyncAll(ctx, userID)
	if err != nil {
		common.LogError(err, "sync failed", common.Fields{"user_id": userID, "url": baseURL})
		return common.NewUserError("sync failed; nothing was lost and the next run will catch up", err)
	}

	fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf(
		"Synced: %d pushed, %d pulled in %s",
		report.Pushed(), report.Pulled(), report.Duration.Round(time.Millisecond))))
	return nil
}
