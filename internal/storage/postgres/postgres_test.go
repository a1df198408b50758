package postgres

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/config"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/database"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/model"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// newTestBackend swaps the Postgres dialer for a SQLite file so the
// connection handling can run without a server.
func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pg.db")
	b := New(config.DBConfig{Host: "localhost", Database: "boxguard"}, nil)
	b.open = func(config.DBConfig) (*gorm.DB, error) {
		return database.GetSqliteDB(path)
	}
	return b
}

func TestNewDoesNotConnect(t *testing.T) {
	b := New(config.DBConfig{}, nil)
	require.NotNil(t, b)
	assert.Nil(t, b.Backend)
	assert.NoError(t, b.Close())
}

func TestInitConnectFailure(t *testing.T) {
	b := New(config.DBConfig{}, nil)
	b.open = func(config.DBConfig) (*gorm.DB, error) {
		return nil, errors.New("connection refused")
	}
	err := b.Init()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
}

func TestRunLifecycle(t *testing.T) {
	b := newTestBackend(t)
	require.NoError(t, b.Init())

	require.NoError(t, b.StartRun(&core.Run{ID: "pg-run", StartTime: time.Now().UTC()}))
	require.NoError(t, b.RecordTick(&core.TickRecord{Tick: 1}))
	require.NoError(t, b.RecordAlert(&core.AlertEvent{Tick: 1, Object: "CAIXA01", DX: 0.01}))
	require.NoError(t, b.EndRun(core.RunSummary{Ticks: 1, Alerted: true, AlertTick: 1}))

	var run model.Run
	require.NoError(t, b.DB().First(&run).Error)
	assert.Equal(t, "pg-run", run.RunUUID)
	assert.True(t, run.Alerted)

	require.NoError(t, b.Close())
}
