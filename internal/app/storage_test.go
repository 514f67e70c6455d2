package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/slot-scheduler/internal/app"
	"github.com/pkordes/slot-scheduler/internal/config"
	"github.com/pkordes/slot-scheduler/internal/domain"
	"github.com/pkordes/slot-scheduler/internal/repo/sqlite"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// flakyPinger fails the first failures pings, then succeeds.
type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("connection refused")
	}
	return nil
}

func TestPingWithRetry_RecoversBeforeRetriesRunOut(t *testing.T) {
	p := &flakyPinger{failures: 2}

	err := app.PingWithRetry(context.Background(), p, 3, time.Millisecond, discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 3, p.calls)
}

func TestPingWithRetry_GivesUp(t *testing.T) {
	p := &flakyPinger{failures: 100}

	err := app.PingWithRetry(context.Background(), p, 2, time.Millisecond, discardLogger())

	require.Error(t, err)
	assert.ErrorContains(t, err, "connection refused")
	assert.Equal(t, 3, p.calls, "one attempt plus two retries")
}

func TestPingWithRetry_NoRetries(t *testing.T) {
	p := &flakyPinger{failures: 1}

	err := app.PingWithRetry(context.Background(), p, 0, time.Millisecond, discardLogger())

	require.Error(t, err)
	assert.Equal(t, 1, p.calls)
}

func TestPingWithRetry_StopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := &flakyPinger{failures: 100}

	err := app.PingWithRetry(ctx, p, 10, time.Hour, discardLogger())

	require.Error(t, err)
	assert.LessOrEqual(t, p.calls, 1)
}

func TestOpenStore_SQLiteMigratesAndServes(t *testing.T) {
	cfg := config.Config{
		StoreDriver:    config.DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "data", "slots.db"),
		MigrateOnStart: true,
	}
	ctx := context.Background()

	store, closeStore, err := app.OpenStore(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(closeStore)

	require.NoError(t, store.Ping(ctx))
	created, err := store.Slots().Create(ctx, domain.Slot{
		DayOfWeek:          int(time.Monday),
		StartTime:          domain.MustTimeOfDay("09:00"),
		EndTime:            domain.MustTimeOfDay("10:00"),
		RecurringStartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	got, err := store.Slots().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

// TestOpenStore_SQLiteReopenIsIdempotent verifies that migrating an
// up-to-date file is a no-op.
func TestOpenStore_SQLiteReopenIsIdempotent(t *testing.T) {
	cfg := config.Config{
		StoreDriver:    config.DriverSQLite,
		SQLitePath:     filepath.Join(t.TempDir(), "slots.db"),
		MigrateOnStart: true,
	}
	ctx := context.Background()

	_, closeFirst, err := app.OpenStore(ctx, cfg, discardLogger())
	require.NoError(t, err)
	closeFirst()

	store, closeSecond, err := app.OpenStore(ctx, cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(closeSecond)

	slots, err := store.Slots().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestOpenStore_SQLiteInMemory(t *testing.T) {
	cfg := config.Config{StoreDriver: config.DriverSQLite, SQLitePath: sqlite.MemoryPath, MigrateOnStart: true}

	store, closeStore, err := app.OpenStore(context.Background(), cfg, discardLogger())
	require.NoError(t, err)
	t.Cleanup(closeStore)

	assert.NoError(t, store.Ping(context.Background()))
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, _, err := app.OpenStore(context.Background(), config.Config{StoreDriver: "mysql"}, discardLogger())

	assert.ErrorContains(t, err, "mysql")
}
