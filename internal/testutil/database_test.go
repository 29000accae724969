package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/storage"
)

func TestSetupTestDBWithOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meetlog.db")
	extra := NewRecord(2).Comment("добавлено при настройке").Build()

	db := SetupTestDBWithOptions(t, TestDBOptions{
		Path:    path,
		Records: []model.ReportRecord{NewRecord(1).Offers("КК").Build()},
		CustomSetup: func(ctx context.Context, s *storage.SQLiteStorage) error {
			return s.SaveRecord(ctx, &extra)
		},
	})

	assert.Len(t, db.MustLoadUser(1), 1)
	assert.Len(t, db.MustLoadUser(2), 1)
	require.NoError(t, db.Storage.Close())

	reopened, err := storage.NewSQLiteStorage(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	records, err := reopened.LoadRecords(context.Background(), UserFilter(2))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, extra.ID, records[0].ID)
}
