package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/meetlog/internal/config"
	"github.com/Veraticus/meetlog/internal/postgres"
	"github.com/Veraticus/meetlog/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

The JSON store has no schema and needs no migration.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes (sqlite only)")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	status, _ := cmd.Flags().GetBool("status")

	cfg, err := config.LoadStorageConfig(viper.GetViper())
	if err != nil {
		return err
	}

	switch cfg.Driver {
	case config.DriverJSON:
		slog.Info("JSON store needs no migrations", "path", cfg.BackupPath)
		return nil

	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.Postgres)
		if err != nil {
			return err
		}
		defer pool.Close()

		slog.Info("🗄️  Running database migrations...", "driver", cfg.Driver)
		version, err := postgres.Migrate(ctx, pool)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		slog.Info("✅ Database migrations completed successfully!", "version", version)
		return nil
	}

	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() { _ = store.Close() }()

	if !status {
		slog.Info("🗄️  Running database migrations...", "database", cfg.DatabasePath)
		if err := store.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	version, err := store.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if status {
		slog.Info("📊 Database migration status", "database", cfg.DatabasePath, "version", version)
		return nil
	}
	slog.Info("✅ Database migrations completed successfully!", "version", version)
	return nil
}
