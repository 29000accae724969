package scheduler

import (
	"context"
	"log/slog"

	"github.com/Veraticus/meetlog/internal/backup"
)

// BackupJobName names the periodic JSON export.
const BackupJobName = "backup"

// BackupJob exports every record from src to path.
func BackupJob(src backup.RecordLoader, path string, logger *slog.Logger) Job {
	return func(ctx context.Context) error {
		result, err := backup.Export(ctx, src, path)
		if err != nil {
			return err
		}
		logger.Info("backup written", "path", result.Path, "records", result.Records, "duration", result.Duration)
		return nil
	}
}
