package postgres

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Veraticus/meetlog/internal/common"
	"github.com/Veraticus/meetlog/internal/model"
	"github.com/Veraticus/meetlog/internal/service"
	"github.com/Veraticus/meetlog/internal/storage"
)

var (
	once      sync.Once
	sharedDSN string
	initErr   error
)

// setupTestStore starts a shared PostgreSQL container once per test run,
// applies migrations and returns a store with an emptied table.
func setupTestStore(t *testing.T) *Store {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres tests need a container")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	once.Do(func() {
		sharedDSN, initErr = startContainer()
	})
	require.NoError(t, initErr)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := NewPool(ctx, Config{DSN: sharedDSN, MaxConns: 8})
	require.NoError(t, err)

	_, err = Migrate(ctx, pool)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, "TRUNCATE report_records")
	require.NoError(t, err)

	store := NewStore(pool)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func startContainer() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return fmt.Sprintf("postgres://testuser:testpass@%s:%s/testdb?sslmode=disable", host, port.Port()), nil
}

var baseTime = time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

func newRecord(id string, userID int64, offset time.Duration) *model.ReportRecord {
	return &model.ReportRecord{
		ID:           id,
		UserID:       userID,
		Timestamp:    baseTime.Add(offset),
		Type:         model.ReportOffers,
		OriginalText: "Мой вопрос: кк нс",
		Offers:       []string{"КК", "НС"},
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	a := newRecord("a", 1, time.Hour)
	a.ActivityID = "ACT1234567890"
	b := &model.ReportRecord{
		ID:               "b",
		UserID:           1,
		Timestamp:        baseTime,
		Type:             model.ReportRescheduled,
		OriginalText:     "Мой вопрос: перенос недозвон",
		RescheduleReason: "недозвон",
		Comment:          "недозвон",
	}
	c := newRecord("c", 2, 2*time.Hour)

	for _, r := range []*model.ReportRecord{a, b, c} {
		require.NoError(t, store.SaveRecord(ctx, r))
	}

	all, err := store.LoadRecords(ctx, service.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, []string{}, all[0].Offers)
	assert.Equal(t, "a", all[1].ID)
	assert.Equal(t, []string{"КК", "НС"}, all[1].Offers)
	assert.True(t, a.Timestamp.Equal(all[1].Timestamp))

	user := int64(1)
	start := baseTime.Add(30 * time.Minute)
	got, err := store.LoadRecords(ctx, service.RecordFilter{UserID: &user, Start: &start})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)

	assert.ErrorIs(t, store.SaveRecord(ctx, newRecord("a", 1, 0)), common.ErrDuplicateEntry)
	assert.ErrorIs(t, store.SaveRecord(ctx, &model.ReportRecord{ID: "x"}), storage.ErrInvalidRecord)

	found, err := store.FindByActivityID(ctx, "ACT1234567890")
	require.NoError(t, err)
	assert.Equal(t, "a", found.ID)

	_, err = store.FindByActivityID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.FindByActivityID(ctx, "")
	assert.ErrorIs(t, err, storage.ErrEmptyString)
}

func TestStore_DeleteUserRecords(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRecord(ctx, newRecord("a", 1, 0)))
	require.NoError(t, store.SaveRecord(ctx, newRecord("b", 2, time.Minute)))
	require.NoError(t, store.SaveRecord(ctx, newRecord("c", 1, 2*time.Minute)))

	n, err := store.DeleteUserRecords(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = store.DeleteUserRecords(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	all, err := store.LoadRecords(ctx, service.RecordFilter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "b", all[0].ID)
}

func TestStore_ConcurrentWritersSameUser(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- store.SaveRecord(ctx, newRecord(fmt.Sprintf("r%d", i), 5, time.Duration(i)*time.Second))
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	user := int64(5)
	got, err := store.LoadRecords(ctx, service.RecordFilter{UserID: &user})
	require.NoError(t, err)
	assert.Len(t, got, writers)
}

func TestMigrate_Version(t *testing.T) {
	store := setupTestStore(t)

	version, err := Migrate(context.Background(), store.pool)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)
}

func TestNewPool_BadDSN(t *testing.T) {
	_, err := NewPool(context.Background(), Config{DSN: "://not-a-dsn"})
	assert.Error(t, err)
}
