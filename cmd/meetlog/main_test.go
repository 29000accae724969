package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/meetlog/internal/backup"
	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/config"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
	"github.com/Veraticus/meetlog/internal/testutil"
)

// setupConfig points the global settings at a fresh SQLite database and
// seeds it with records.
func setupConfig(t *testing.T, records ...model.ReportRecord) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	v := viper.GetViper()
	config.SetDefaults(v)
	v.Set("database.path", filepath.Join(dir, "meetlog.db"))
	v.Set("backup.path", filepath.Join(dir, "meetings.json"))

	if len(records) > 0 {
		store, err := openStore(context.Background(), v, nil)
		require.NoError(t, err)
		for i := range records {
			require.NoError(t, store.SaveRecord(context.Background(), &records[i]))
		}
		require.NoError(t, store.Close())
	}
	return dir
}

func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		wantErr error
		args    []string
		wants   []string
	}{
		{
			name:  "offers from args",
			args:  []string{"Мой вопрос: кк нс кк"},
			wants: []string{"Проведена", "OFFERS", "КК", "2", "НС"},
		},
		{
			name:  "reschedule from stdin",
			stdin: "Итог\nМой вопрос: перенос недозвон не берет\n",
			wants: []string{"Перенесена", "Reason: недозвон"},
		},
		{
			name:  "annotate",
			args:  []string{"--annotate", "Мой вопрос: комментарий позвонить"},
			wants: []string{"Мой вопрос: Комментарий: позвонить"},
		},
		{
			name:    "no trigger",
			args:    []string{"hello"},
			wantErr: errors.New("trigger phrase not found"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupConfig(t)

			out, err := execute(t, parseCmd(), tt.stdin, tt.args...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr.Error())
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wants {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestStatsCommand(t *testing.T) {
	now := time.Now()
	setupConfig(t,
		testutil.NewRecord(5).At(now).Offers("КК", "НС").Build(),
		testutil.NewRecord(5).At(now).Reschedule("недозвон", "недозвон утром").Build(),
		testutil.NewRecord(6).At(now).Offers("СИМ").Build(),
	)

	out, err := execute(t, statsCmd(), "", "--user", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "User 5")
	assert.Contains(t, out, "Offers (2)")
	assert.Contains(t, out, "Reschedules (1)")
	assert.NotContains(t, out, "СИМ")

	out, err = execute(t, statsCmd(), "", "--user", "5", "--plain")
	require.NoError(t, err)
	assert.Contains(t, out, "📊 Статистика продаж за неделю")
	assert.Contains(t, out, "• недозвон: 1")

	_, err = execute(t, statsCmd(), "")
	assert.ErrorContains(t, err, "--user is required")
}

func TestResetCommand(t *testing.T) {
	setupConfig(t,
		testutil.NewRecord(5).Offers("КК").Build(),
		testutil.NewRecord(5).Comment("ок").Build(),
		testutil.NewRecord(6).Offers("НС").Build(),
	)

	out, err := execute(t, resetCmd(), "n\n", "--user", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset canceled")

	out, err = execute(t, resetCmd(), "y\n", "--user", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted 2 records")

	out, err = execute(t, resetCmd(), "", "--user", "5", "--force")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to reset")

	remaining := loadAll(t)
	require.Len(t, remaining, 1)
	assert.Equal(t, int64(6), remaining[0].UserID)
}

func TestLookupCommand(t *testing.T) {
	setupConfig(t, testutil.NewRecord(5).Offers("КК", "НС").Activity("ACT123456789").Build())

	out, err := execute(t, lookupCmd(), "", "ACT123456789")
	require.NoError(t, err)
	assert.Contains(t, out, "User 5")
	assert.Contains(t, out, "Activity: ACT123456789")

	out, err = execute(t, lookupCmd(), "", "--annotate", "ACT123456789")
	require.NoError(t, err)
	assert.Contains(t, out, "Мой вопрос: Офферы: КК, НС")

	out, err = execute(t, lookupCmd(), "", "MISSING12345")
	require.NoError(t, err)
	assert.Contains(t, out, "No report found")

	_, err = execute(t, lookupCmd(), "", "short")
	assert.Error(t, err)
}

func TestImportAndBackupCommands(t *testing.T) {
	dir := setupConfig(t)
	source := filepath.Join(dir, "source.json")
	require.NoError(t, backup.WriteFile(source, []model.ReportRecord{
		testutil.NewRecord(1).Offers("КК").Build(),
		testutil.NewRecord(2).Comment("перезвонить").Build(),
	}))

	out, err := execute(t, importCmd(), "", "--dry-run", source)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 records")
	assert.Empty(t, loadAll(t))

	out, err = execute(t, importCmd(), "", source)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 records, skipped 0")

	out, err = execute(t, importCmd(), "", source)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 records, skipped 2")

	snapshot := filepath.Join(dir, "snapshot.json")
	out, err = execute(t, backupCmd(), "", "--output", snapshot)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 2 records")

	saved, err := backup.ReadFile(snapshot)
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestImportCommand_LegacyFileTwice(t *testing.T) {
	dir := setupConfig(t)
	source := filepath.Join(dir, "meetings.legacy.json")
	require.NoError(t, os.WriteFile(source, []byte(`[
		{"timestamp":"2025-10-15T09:00:00","offers":["КК"],"originalText":"Мой вопрос: кк","userId":42,"meetingType":"COMPLETED"}
	]`), 0o600))

	out, err := execute(t, importCmd(), "", source)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 records, skipped 0")

	out, err = execute(t, importCmd(), "", source)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 0 records, skipped 1")
	assert.Len(t, loadAll(t), 1)
}

func TestImportRecords_StopsOnStoreError(t *testing.T) {
	store := testutil.NewMemoryStore()
	store.SaveErr = errors.New("disk full")
	steps := 0

	result, err := importRecords(context.Background(), store, []model.ReportRecord{
		testutil.NewRecord(1).Offers("КК").Build(),
	}, func() { steps++ })

	require.Error(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 0, steps)
}

func TestImportRecords_SkipsDuplicates(t *testing.T) {
	existing := testutil.NewRecord(1).Offers("КК").Build()
	store := testutil.NewMemoryStore(existing)

	result, err := importRecords(context.Background(), store, []model.ReportRecord{
		existing,
		testutil.NewRecord(1).Offers("НС").Build(),
	}, func() {})

	require.NoError(t, err)
	assert.Equal(t, importResult{Imported: 1, Skipped: 1}, result)
	assert.Len(t, store.All(), 2)
}

func TestOpenStore_Drivers(t *testing.T) {
	setupConfig(t)
	v := viper.GetViper()
	ctx := context.Background()

	v.Set("storage.driver", "json")
	store, err := openStore(ctx, v, nil)
	require.NoError(t, err)
	assert.IsType(t, &backup.FileStore{}, store)
	require.NoError(t, store.Close())

	v.Set("storage.driver", "postgres")
	_, err = openStore(ctx, v, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)

	v.Set("storage.driver", "mongo")
	_, err = openStore(ctx, v, nil)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestSetupLogging(t *testing.T) {
	v := viper.New()
	v.Set("logging.level", "debug")
	v.Set("logging.format", "json")
	assert.NoError(t, setupLogging(v))

	v.Set("logging.level", "loud")
	assert.ErrorContains(t, setupLogging(v), "invalid log level")

	v.Set("logging.level", "info")
	v.Set("logging.format", "xml")
	assert.ErrorContains(t, setupLogging(v), "invalid log format")
}

func loadAll(t *testing.T) []model.ReportRecord {
	t.Helper()
	store, err := openStore(context.Background(), viper.GetViper(), nil)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	records, err := store.LoadRecords(context.Background(), service.RecordFilter{})
	require.NoError(t, err)
	return records
}
