package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

// RecordLoader is the read side of a record store.
type RecordLoader interface {
	LoadRecords(ctx context.Context, filter service.RecordFilter) ([]model.ReportRecord, error)
}

// ExportResult describes a finished snapshot.
type ExportResult struct {
	Path     string
	Records  int
	Duration time.Duration
}

// Export writes every record of src to path as a JSON array.
func Export(ctx context.Context, src RecordLoader, path string) (*ExportResult, error) {
	start := time.Now()

	records, err := src.LoadRecords(ctx, service.RecordFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load records for backup: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := WriteFile(path, records); err != nil {
		return nil, err
	}

	return &ExportResult{Path: path, Records: len(records), Duration: time.Since(start)}, nil
}
