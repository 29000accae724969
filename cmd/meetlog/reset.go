package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meetlog/internal/cli"
	"github.com/Veraticus/meetlog/internal/engine"
	"github.com/Veraticus/meetlog/internal/service"
)

func resetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record of a user",
		Long: `Reset removes all of a user's records, the same as /reset in the bot.

This is a destructive operation. Rows already mirrored to Google Sheets are
left in place.`,
		RunE: runReset,
	}

	cmd.Flags().StringP("user", "u", "", "Telegram user id")
	cmd.Flags().BoolP("force", "f", false, "Skip confirmation prompt")

	return cmd
}

func runReset(cmd *cobra.Command, _ []string) error {
	userID, err := userFlag(cmd)
	if err != nil {
		return err
	}
	force, _ := cmd.Flags().GetBool("force")

	return withEngine(cmd, func(ctx context.Context, store service.RecordStore, eng *engine.Engine) error {
		out := cmd.OutOrStdout()

		records, err := store.LoadRecords(ctx, service.RecordFilter{UserID: &userID})
		if err != nil {
			return fmt.Errorf("failed to count records: %w", err)
		}
		if len(records) == 0 {
			_, err := fmt.Fprintln(out, cli.FormatInfo("No records found. Nothing to reset."))
			return err
		}

		if !force {
			prompter := cli.NewPrompter(cmd.InOrStdin(), out)
			ok, err := prompter.Confirm(ctx, fmt.Sprintf("Delete %d records of user %d?", len(records), userID))
			if err != nil {
				return err
			}
			if !ok {
				_, err := fmt.Fprintln(out, cli.FormatWarning("Reset canceled."))
				return err
			}
		}

		removed, err := eng.Reset(ctx, userID)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Deleted %d records", removed)))
		return err
	})
}
