package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/backup"
	"github.com/Veraticus/meetlog/internal/cli"
	"github.com/Veraticus/meetlog/internal/config"
)

func backupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a JSON snapshot of every record",
		RunE:  runBackup,
	}

	cmd.Flags().StringP("output", "o", "", "Snapshot path (default: backup.path)")

	return cmd
}

func runBackup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	v := viper.GetViper()

	storageCfg, err := config.LoadStorageConfig(v)
	if err != nil {
		return err
	}
	path := storageCfg.BackupPath
	if output, _ := cmd.Flags().GetString("output"); output != "" {
		path = config.ExpandPath(output)
	}
	if storageCfg.Driver == config.DriverJSON && path == storageCfg.BackupPath {
		return fmt.Errorf("the json store already lives at %s; pass --output to copy it elsewhere", path)
	}

	store, err := openStore(ctx, v, slog.Default())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := backup.Export(ctx, store, path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		fmt.Sprintf("Wrote %d records to %s in %s", result.Records, result.Path, result.Duration.Round(time.Millisecond))))
	return err
}
