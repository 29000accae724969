package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/backup"
	"github.com/Veraticus/meetlog/internal/cli"
	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/config"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import records from a JSON file",
		Long: `Import records from a meetings.json written by the previous bot, or from a
snapshot written by 'meetlog backup'. Records whose id already exists are
skipped, so importing the same snapshot twice is safe.

Legacy timestamps carry no zone and are read in report.timezone.`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().Bool("dry-run", false, "Show what would be imported without saving")

	return cmd
}

// importResult counts the outcome of an import.
type importResult struct {
	Imported int
	Skipped  int
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	v := viper.GetViper()
	out := cmd.OutOrStdout()

	report, err := config.LoadReportConfig(v)
	if err != nil {
		return err
	}

	records, err := backup.DecodeFile(args[0], report.Location)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	if _, err := fmt.Fprintln(out, cli.FormatInfo(fmt.Sprintf("Found %d records in %s", len(records), args[0]))); err != nil {
		return err
	}

	if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
		_, err := fmt.Fprintln(out, cli.FormatWarning("Dry run mode - not saving"))
		return err
	}

	store, err := openStore(ctx, v, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(records), "Importing records...")
	result, err := importRecords(ctx, store, records, progress.Step)
	if err != nil {
		return fmt.Errorf("import stopped after %d records: %w", result.Imported, err)
	}

	_, err = fmt.Fprintln(out, cli.FormatSuccess(fmt.Sprintf("Imported %d records, skipped %d already present", result.Imported, result.Skipped)))
	return err
}

// importRecords saves records into store, skipping duplicates. step is
// called after every record.
func importRecords(ctx context.Context, store service.RecordStore, records []model.ReportRecord, step func()) (importResult, error) {
	var result importResult
	for i := range records {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		err := store.SaveRecord(ctx, &records[i])
		switch {
		case errors.Is(err, common.ErrDuplicateEntry):
			result.Skipped++
		case err != nil:
			return result, err
		default:
			result.Imported++
		}
		step()
	}
	return result, nil
}
