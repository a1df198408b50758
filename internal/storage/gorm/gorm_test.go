package gormstorage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/database"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/model"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestBackend creates a Backend over a throwaway SQLite file. The flush
// interval is long so tests control when writes happen.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	t.Cleanup(func() { _ = b.Close() })
	return b
}

func testRun() *core.Run {
	return &core.Run{
		ID:             "run-1",
		StartTime:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Timestep:       128 * time.Millisecond,
		TrackedObjects: []string{"CAIXA01"},
	}
}

func TestInitRequiresDB(t *testing.T) {
	b := New(Dependencies{})
	assert.Error(t, b.Init())
}

func TestInitMigrates(t *testing.T) {
	b := newTestBackend(t)
	for _, m := range model.DatabaseModels {
		assert.True(t, b.DB().Migrator().HasTable(m), "%T", m)
	}
}

func TestRecordBeforeStartRun(t *testing.T) {
	b := newTestBackend(t)
	assert.ErrorIs(t, b.RecordTick(&core.TickRecord{Tick: 1}), ErrNoRun)
	assert.ErrorIs(t, b.RecordAlert(&core.AlertEvent{Tick: 1}), ErrNoRun)
	assert.ErrorIs(t, b.EndRun(core.RunSummary{}), ErrNoRun)
}

func TestRecordTickQueuesUntilFlush(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartRun(testRun()))

	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, b.RecordTick(&core.TickRecord{Tick: i, Mode: core.ModeNormal}))
	}
	assert.Equal(t, 3, b.Pending())

	require.NoError(t, b.flush())
	assert.Equal(t, 0, b.Pending())

	var ticks []model.Tick
	require.NoError(t, b.DB().Order("tick").Find(&ticks).Error)
	require.Len(t, ticks, 3)
	for i, tk := range ticks {
		assert.Equal(t, uint64(i+1), tk.Tick)
		assert.NotZero(t, tk.RunID)
		assert.Equal(t, "NORMAL", tk.Mode)
	}
}

func TestRecordAlertIsImmediate(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartRun(testRun()))

	require.NoError(t, b.RecordAlert(&core.AlertEvent{
		RunID: "run-1", Tick: 12, Object: "CAIXA01", DX: 0.02, DZ: 0,
	}))

	var alerts []model.AlertEvent
	require.NoError(t, b.DB().Find(&alerts).Error)
	require.Len(t, alerts, 1)
	assert.Equal(t, "CAIXA01", alerts[0].Object)
	assert.Equal(t, uint64(12), alerts[0].Tick)
	coords, ok := alerts[0].Displacement.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 0.02, coords.X, 1e-9)
}

func TestEndRunFlushesAndStoresSummary(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.StartRun(testRun()))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 1}))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 2, Stuck: true}))

	require.NoError(t, b.EndRun(core.RunSummary{
		EndTime:    time.Date(2026, 3, 1, 12, 1, 0, 0, time.UTC),
		Ticks:      2,
		StuckTicks: 1,
	}))
	assert.Equal(t, 0, b.Pending())

	var run model.Run
	require.NoError(t, b.DB().First(&run, "run_uuid = ?", "run-1").Error)
	assert.Equal(t, uint64(2), run.Ticks)
	assert.Equal(t, uint64(1), run.StuckTicks)
	assert.False(t, run.Alerted)

	var count int64
	require.NoError(t, b.DB().Model(&model.Tick{}).Where("run_id = ?", run.ID).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestWriterFlushesOnInterval(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "interval.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: 20 * time.Millisecond})
	require.NoError(t, b.Init())
	defer b.Close()

	require.NoError(t, b.StartRun(testRun()))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 1}))

	assert.Eventually(t, func() bool { return b.Pending() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Positive(t, b.LastWriteDuration())
}

func TestCloseFlushesAndIsIdempotent(t *testing.T) {
	db, err := database.GetSqliteDB(filepath.Join(t.TempDir(), "close.db"))
	require.NoError(t, err)
	b := New(Dependencies{DB: db, FlushInterval: time.Hour})
	require.NoError(t, b.Init())
	require.NoError(t, b.StartRun(testRun()))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 1}))

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	var count int64
	require.NoError(t, db.Model(&model.Tick{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCloseWithoutInit(t *testing.T) {
	b := New(Dependencies{})
	assert.NoError(t, b.Close())
}
