package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meetlog/internal/cli"
	"github.com/Veraticus/meetlog/internal/engine"
	"github.com/Veraticus/meetlog/internal/service"
	"github.com/Veraticus/meetlog/internal/stats"
)

func statsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show a user's statistics for the current week",
		RunE:  runStats,
	}

	cmd.Flags().StringP("user", "u", "", "Telegram user id")
	cmd.Flags().Bool("plain", false, "Print the same text the bot sends")

	return cmd
}

func runStats(cmd *cobra.Command, _ []string) error {
	userID, err := userFlag(cmd)
	if err != nil {
		return err
	}
	plain, _ := cmd.Flags().GetBool("plain")

	return withEngine(cmd, func(ctx context.Context, store service.RecordStore, eng *engine.Engine) error {
		out := cmd.OutOrStdout()

		if plain {
			for _, report := range []func(context.Context, int64) (string, error){
				eng.OfferReport, eng.RescheduleReport, eng.CommentReport,
			} {
				text, err := report(ctx, userID)
				if err != nil {
					return err
				}
				if _, err := fmt.Fprintln(out, text+"\n"); err != nil {
					return err
				}
			}
			return nil
		}

		w := eng.Window()
		records, err := store.LoadRecords(ctx, service.RecordFilter{UserID: &userID, Start: &w.Start, End: &w.End})
		if err != nil {
			return err
		}

		offers := stats.OfferStats(records, userID, w)
		reschedules := stats.RescheduleStats(records, userID, w)

		var b strings.Builder
		b.WriteString(cli.FormatTitle(fmt.Sprintf("User %d, %s", userID, w.Label())) + "\n")
		b.WriteString(cli.RenderBox(fmt.Sprintf("Offers (%d)", offers.Total()), cli.RenderCounts(offers.Sorted(), "no offers yet")) + "\n")
		b.WriteString(cli.RenderBox(fmt.Sprintf("Reschedules (%d)", reschedules.Total()), cli.RenderCounts(reschedules.Sorted(), "no reschedules")) + "\n")
		b.WriteString(cli.SubtleStyle.Render(fmt.Sprintf("%d records with comments", len(stats.CommentedRecords(records, userID, w)))) + "\n")

		_, err = fmt.Fprint(out, b.String())
		return err
	})
}
