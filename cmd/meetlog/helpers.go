package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/backup"
	"github.com/Veraticus/meetlog/internal/classification"
	"github.com/Veraticus/meetlog/internal/config"
	"github.com/Veraticus/meetlog/internal/engine"
	"github.com/Veraticus/meetlog/internal/parser"
	"github.com/Veraticus/meetlog/internal/postgres"
	"github.com/Veraticus/meetlog/internal/service"
	"github.com/Veraticus/meetlog/internal/sheets"
	"github.com/Veraticus/meetlog/internal/storage"
)

// openStore opens and migrates the configured system of record.
func openStore(ctx context.Context, v *viper.Viper, logger *slog.Logger) (service.RecordStore, error) {
	cfg, err := config.LoadStorageConfig(v)
	if err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		if _, err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return postgres.NewStore(pool), nil

	case config.DriverJSON:
		return backup.NewFileStore(cfg.BackupPath, logger)

	default:
		store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
		if err != nil {
			return nil, err
		}
		if err := store.Migrate(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return store, nil
	}
}

// loadCatalog returns the catalog at catalog.path, or the built-in one.
func loadCatalog(v *viper.Viper) (*classification.Catalog, error) {
	path := config.ExpandPath(v.GetString("catalog.path"))
	if path == "" {
		return classification.Default(), nil
	}
	catalog, err := classification.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog %s: %w", path, err)
	}
	return catalog, nil
}

// newEngine wires an engine around store. The Google Sheets mirror is
// attached when sheets.enabled is set.
func newEngine(ctx context.Context, v *viper.Viper, store service.RecordStore, logger *slog.Logger) (*engine.Engine, error) {
	catalog, err := loadCatalog(v)
	if err != nil {
		return nil, err
	}
	report, err := config.LoadReportConfig(v)
	if err != nil {
		return nil, err
	}

	cfg := engine.Config{
		Location: report.Location,
		Window:   report.Window,
		Logger:   logger,
	}

	if v.GetBool("sheets.enabled") {
		sheetsCfg, err := config.LoadSheetsConfig(v)
		if err != nil {
			return nil, err
		}
		writer, err := sheets.NewWriter(ctx, *sheetsCfg, catalog, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Google Sheets: %w", err)
		}
		cfg.Mirror = writer
		logger.Info("Google Sheets mirror enabled", "spreadsheet_id", sheetsCfg.SpreadsheetID)
	}

	return engine.NewWithConfig(store, parser.New(catalog), cfg), nil
}

// withEngine opens the store, builds the engine and runs fn, closing the
// store afterwards.
func withEngine(cmd *cobra.Command, fn func(ctx context.Context, store service.RecordStore, eng *engine.Engine) error) error {
	ctx := cmd.Context()
	v := viper.GetViper()
	logger := slog.Default()

	store, err := openStore(ctx, v, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}()

	eng, err := newEngine(ctx, v, store, logger)
	if err != nil {
		return err
	}
	return fn(ctx, store, eng)
}

// userFlag reads the required --user flag.
func userFlag(cmd *cobra.Command) (int64, error) {
	raw, _ := cmd.Flags().GetString("user")
	if raw == "" {
		return 0, fmt.Errorf("--user is required")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid --user %q: %w", raw, err)
	}
	return id, nil
}
