// Package backup keeps report records in a plain JSON file, either as the
// primary store or as periodic snapshots of another store.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
	"github.com/Veraticus/meetlog/internal/stats"
	"github.com/Veraticus/meetlog/internal/storage"
)

// FileStore implements service.RecordStore on a single JSON array file.
// Every write rewrites the whole file through a temporary file and rename.
// It is safe for concurrent use within one process only.
type FileStore struct {
	logger *slog.Logger
	path   string
	mu     sync.Mutex
}

// NewFileStore creates a store backed by path. The file is created on the
// first write.
func NewFileStore(path string, logger *slog.Logger) (*FileStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: backup path", storage.ErrEmptyString)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{path: path, logger: logger}, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// SaveRecord appends record and rewrites the file.
func (s *FileStore) SaveRecord(ctx context.Context, record *model.ReportRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateRecord(record); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadStrict()
	if err != nil {
		return err
	}
	for i := range records {
		if records[i].ID == record.ID {
			return fmt.Errorf("%w: record %s", common.ErrDuplicateEntry, record.ID)
		}
	}
	return WriteFile(s.path, append(records, *record))
}

// LoadRecords returns the matching records ordered by timestamp. A missing or
// unreadable file yields an empty result, matching the read contract of the
// legacy meetings.json store.
func (s *FileStore) LoadRecords(ctx context.Context, filter service.RecordFilter) ([]model.ReportRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateFilter(filter); err != nil {
		return nil, err
	}

	s.mu.Lock()
	records, err := s.loadStrict()
	s.mu.Unlock()
	if err != nil {
		s.logger.Warn("Backup file unreadable, treating as empty", "path", s.path, "error", err)
		return []model.ReportRecord{}, nil
	}

	out := make([]model.ReportRecord, 0, len(records))
	for i := range records {
		if filter.Matches(&records[i]) {
			out = append(out, records[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out, nil
}

// DeleteUserRecords removes every record of userID and rewrites the file.
// Other records are written back unchanged and in their original order.
func (s *FileStore) DeleteUserRecords(ctx context.Context, userID int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.loadStrict()
	if err != nil {
		return 0, err
	}
	kept := stats.WithoutUser(records, userID)
	removed := len(records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := WriteFile(s.path, kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// FindByActivityID returns the most recent record carrying activityID.
func (s *FileStore) FindByActivityID(ctx context.Context, activityID string) (*model.ReportRecord, error) {
	if err := storage.ValidateActivityID(activityID); err != nil {
		return nil, err
	}
	records, err := s.LoadRecords(ctx, service.RecordFilter{})
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].ActivityID == activityID {
			found := records[i]
			return &found, nil
		}
	}
	return nil, fmt.Errorf("activity %s: %w", activityID, common.ErrNotFound)
}

// Close is a no-op; the file is not held open between calls.
func (s *FileStore) Close() error {
	return nil
}

// loadStrict reads the file, treating only a missing file as empty. Writers
// use it so a corrupted file is never silently overwritten.
func (s *FileStore) loadStrict() ([]model.ReportRecord, error) {
	records, err := ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.ReportRecord{}, nil
	}
	return records, err
}

// ReadFile decodes a JSON array of records.
func ReadFile(path string) ([]model.ReportRecord, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return nil, err
	}
	var records []model.ReportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrDatabaseCorrupted, path, err)
	}
	if records == nil {
		records = []model.ReportRecord{}
	}
	return records, nil
}

// WriteFile atomically replaces path with records encoded as a JSON array.
func WriteFile(path string, records []model.ReportRecord) error {
	if records == nil {
		records = []model.ReportRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create backup directory: %w", err)
		}
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write backup: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace backup: %w", err)
	}
	return nil
}
