package sheets

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
)

// MockMirror is an in-memory service.Mirror for tests.
type MockMirror struct {
	Err     error
	Records map[string]*model.ReportRecord
	Calls   []MirrorCall
	mu      sync.Mutex
}

// MirrorCall records one write made to the mock.
type MirrorCall struct {
	At         time.Time
	Kind       model.ReportType
	ActivityID string
	Reason     string
	Comment    string
	Offers     []string
	UserID     int64
}

// NewMockMirror creates a new mock mirror.
func NewMockMirror() *MockMirror {
	return &MockMirror{Records: make(map[string]*model.ReportRecord)}
}

func (m *MockMirror) record(call MirrorCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, call)
	return m.Err
}

// MirrorOffers implements service.Mirror.
func (m *MockMirror) MirrorOffers(_ context.Context, userID int64, at time.Time, offers []string, activityID string) error {
	return m.record(MirrorCall{Kind: model.ReportOffers, UserID: userID, At: at, Offers: offers, ActivityID: activityID})
}

// MirrorReschedule implements service.Mirror.
func (m *MockMirror) MirrorReschedule(_ context.Context, userID int64, at time.Time, reason, comment string) error {
	return m.record(MirrorCall{Kind: model.ReportRescheduled, UserID: userID, At: at, Reason: reason, Comment: comment})
}

// MirrorComment implements service.Mirror.
func (m *MockMirror) MirrorComment(_ context.Context, userID int64, at time.Time, comment string) error {
	return m.record(MirrorCall{Kind: model.ReportComment, UserID: userID, At: at, Comment: comment})
}

// FindByActivityID returns the record registered under activityID.
func (m *MockMirror) FindByActivityID(_ context.Context, activityID string) (*model.ReportRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	r, ok := m.Records[activityID]
	if !ok {
		return nil, fmt.Errorf("activity %s: %w", activityID, common.ErrNotFound)
	}
	cp := *r
	return &cp, nil
}

// GetCalls returns a copy of all recorded writes.
func (m *MockMirror) GetCalls() []MirrorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([]MirrorCall, len(m.Calls))
	copy(calls, m.Calls)
	return calls
}

// SetError makes every subsequent call fail with err.
func (m *MockMirror) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Err = err
}
