package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/meetlog/internal/cli"
	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/engine"
	"github.com/Veraticus/meetlog/internal/parser"
	"github.com/Veraticus/meetlog/internal/service"
)

func lookupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup <activity-id>",
		Short: "Find the report recorded for an activity id",
		Long: `Find the most recent report carrying an activity id. The configured store
is searched first, then Google Sheets when the mirror is enabled.`,
		Args: cobra.ExactArgs(1),
		RunE: runLookup,
	}

	cmd.Flags().Bool("annotate", false, "Print the report text with its summary")

	return cmd
}

func runLookup(cmd *cobra.Command, args []string) error {
	activityID := args[0]
	if !parser.IsActivityID(activityID) {
		return fmt.Errorf("%q does not look like an activity id", activityID)
	}
	annotate, _ := cmd.Flags().GetBool("annotate")

	return withEngine(cmd, func(ctx context.Context, _ service.RecordStore, eng *engine.Engine) error {
		out := cmd.OutOrStdout()

		record, err := eng.LookupActivity(ctx, activityID)
		if errors.Is(err, common.ErrNotFound) {
			_, err := fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("No report found for activity %s", activityID)))
			return err
		}
		if err != nil {
			return err
		}

		if annotate {
			text, err := parser.Annotate(record)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, text)
			return err
		}

		title := fmt.Sprintf("User %d, %s", record.UserID, record.Timestamp.Format("02.01.2006 15:04"))
		_, err = fmt.Fprintln(out, cli.RenderBox(title, describeRecord(record)))
		return err
	})
}
