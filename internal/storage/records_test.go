package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	require.NoError(t, store.Migrate(context.Background()))
	return store
}

var baseTime = time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

func testRecord(id string, userID int64, offset time.Duration) *model.ReportRecord {
	return &model.ReportRecord{
		ID:           id,
		UserID:       userID,
		Timestamp:    baseTime.Add(offset),
		Type:         model.ReportOffers,
		OriginalText: "Мой вопрос: кк нс",
		Offers:       []string{"КК", "НС"},
	}
}

func TestSaveAndLoadRecords(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	offers := testRecord("r1", 1, time.Hour)
	offers.ActivityID = "aOBv7DDXE4AqEPC8jHAqcA"
	resched := &model.ReportRecord{
		ID:               "r2",
		UserID:           1,
		Timestamp:        baseTime,
		Type:             model.ReportRescheduled,
		OriginalText:     "Мой вопрос: перенос недозвон",
		RescheduleReason: "недозвон",
		Comment:          "недозвон",
	}
	other := testRecord("r3", 2, 2*time.Hour)
	other.Offers = nil

	for _, r := range []*model.ReportRecord{offers, resched, other} {
		require.NoError(t, store.SaveRecord(ctx, r))
	}

	all, err := store.LoadRecords(ctx, service.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"r2", "r1", "r3"}, []string{all[0].ID, all[1].ID, all[2].ID})

	got := all[1]
	assert.Equal(t, offers.Offers, got.Offers)
	assert.Equal(t, offers.ActivityID, got.ActivityID)
	assert.Equal(t, offers.OriginalText, got.OriginalText)
	assert.True(t, offers.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, model.ReportOffers, got.Type)

	assert.Equal(t, "недозвон", all[0].RescheduleReason)
	assert.Equal(t, []string{}, all[0].Offers)
	assert.Equal(t, []string{}, all[2].Offers)
}

func TestLoadRecords_Filter(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, testRecord("a", 1, 0)))
	require.NoError(t, store.SaveRecord(ctx, testRecord("b", 1, 48*time.Hour)))
	require.NoError(t, store.SaveRecord(ctx, testRecord("c", 2, time.Hour)))

	user := int64(1)
	start := baseTime.Add(time.Hour)
	end := baseTime.Add(72 * time.Hour)

	got, err := store.LoadRecords(ctx, service.RecordFilter{UserID: &user})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = store.LoadRecords(ctx, service.RecordFilter{UserID: &user, Start: &start, End: &end})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b", got[0].ID)

	_, err = store.LoadRecords(ctx, service.RecordFilter{Start: &end, End: &start})
	assert.ErrorIs(t, err, ErrInvalidDateRange)
}

func TestLoadRecords_EmptyStore(t *testing.T) {
	store := createTestStorage(t)

	got, err := store.LoadRecords(context.Background(), service.RecordFilter{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSaveRecord_Duplicate(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, testRecord("dup", 1, 0)))
	err := store.SaveRecord(ctx, testRecord("dup", 1, time.Minute))
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestSaveRecord_Validation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	tests := []struct {
		record  *model.ReportRecord
		wantErr error
		name    string
	}{
		{name: "nil record", record: nil, wantErr: ErrNilParameter},
		{name: "missing id", record: testRecord("", 1, 0), wantErr: ErrInvalidRecord},
		{
			name:    "unknown type",
			record:  &model.ReportRecord{ID: "x", Timestamp: baseTime, Type: "MEETING"},
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "missing timestamp",
			record:  &model.ReportRecord{ID: "x", Type: model.ReportComment},
			wantErr: ErrInvalidRecord,
		},
		{
			name:    "offers on comment",
			record:  &model.ReportRecord{ID: "x", Timestamp: baseTime, Type: model.ReportComment, Offers: []string{"КК"}},
			wantErr: ErrInvalidRecord,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, store.SaveRecord(ctx, tt.record), tt.wantErr)
		})
	}

	//nolint:staticcheck // nil context is the case under test
	assert.ErrorIs(t, store.SaveRecord(nil, testRecord("y", 1, 0)), ErrNilContext)
}

func TestDeleteUserRecords(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, testRecord("a", 1, 0)))
	require.NoError(t, store.SaveRecord(ctx, testRecord("b", 2, time.Minute)))
	require.NoError(t, store.SaveRecord(ctx, testRecord("c", 1, 2*time.Minute)))

	before, err := store.LoadRecords(ctx, service.RecordFilter{UserID: ptr(int64(2))})
	require.NoError(t, err)

	n, err := store.DeleteUserRecords(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.DeleteUserRecords(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := store.LoadRecords(ctx, service.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, before, all)
}

func TestFindByActivityID(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	older := testRecord("old", 1, 0)
	older.ActivityID = "ACT12345678"
	newer := testRecord("new", 1, time.Hour)
	newer.ActivityID = "ACT12345678"
	require.NoError(t, store.SaveRecord(ctx, older))
	require.NoError(t, store.SaveRecord(ctx, newer))

	got, err := store.FindByActivityID(ctx, "ACT12345678")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)

	_, err = store.FindByActivityID(ctx, "missing0000")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.FindByActivityID(ctx, " ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestMigrate_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	require.NoError(t, store.Migrate(ctx))
	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)
}

func TestNewSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	require.NoError(t, store.Migrate(context.Background()))

	_, err = NewSQLiteStorage("")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func ptr[T any](v T) *T {
	return &v
}
