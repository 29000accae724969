package testutil

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

// MemoryStore is a service.RecordStore kept in memory. SaveErr, LoadErr and
// DeleteErr, when set, are returned by the matching operation.
type MemoryStore struct {
	SaveErr   error
	LoadErr   error
	DeleteErr error
	records   []model.ReportRecord
	mu        sync.Mutex
}

var _ service.RecordStore = (*MemoryStore)(nil)

// NewMemoryStore creates a store holding records.
func NewMemoryStore(records ...model.ReportRecord) *MemoryStore {
	return &MemoryStore{records: slices.Clone(records)}
}

// SaveRecord implements service.RecordStore.
func (m *MemoryStore) SaveRecord(_ context.Context, record *model.ReportRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for _, r := range m.records {
		if r.ID == record.ID {
			return fmt.Errorf("record %s: %w", record.ID, common.ErrDuplicateEntry)
		}
	}
	m.records = append(m.records, *record)
	return nil
}

// LoadRecords implements service.RecordStore.
func (m *MemoryStore) LoadRecords(_ context.Context, filter service.RecordFilter) ([]model.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	out := []model.ReportRecord{}
	for i := range m.records {
		if filter.Matches(&m.records[i]) {
			out = append(out, m.records[i])
		}
	}
	slices.SortStableFunc(out, func(a, b model.ReportRecord) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out, nil
}

// DeleteUserRecords implements service.RecordStore.
func (m *MemoryStore) DeleteUserRecords(_ context.Context, userID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return 0, m.DeleteErr
	}
	before := len(m.records)
	m.records = slices.DeleteFunc(m.records, func(r model.ReportRecord) bool {
		return r.UserID == userID
	})
	return before - len(m.records), nil
}

// FindByActivityID implements service.RecordStore.
func (m *MemoryStore) FindByActivityID(_ context.Context, activityID string) (*model.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].ActivityID == activityID {
			r := m.records[i]
			return &r, nil
		}
	}
	return nil, fmt.Errorf("activity %s: %w", activityID, common.ErrNotFound)
}

// Close implements service.RecordStore.
func (m *MemoryStore) Close() error { return nil }

// All returns a copy of every stored record in insertion order.
func (m *MemoryStore) All() []model.ReportRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.records)
}
