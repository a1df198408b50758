package worker

import (
	"log/slog"
	"sync/atomic"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/storage"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

// PointWriter receives telemetry points alongside storage. *influx.Manager
// implements it.
type PointWriter interface {
	WriteTick(rec core.TickRecord) error
	WriteAlert(ev core.AlertEvent) error
}

// Dependencies holds all dependencies for the worker manager
type Dependencies struct {
	Logger *slog.Logger
	Points PointWriter // optional
}

// Manager forwards dispatched telemetry to the storage backend and the
// point writer.
type Manager struct {
	deps    Dependencies
	backend storage.Backend

	recorded     atomic.Uint64
	pointsFailed atomic.Uint64
}

// NewManager creates a new worker manager
func NewManager(deps Dependencies, backend storage.Backend) *Manager {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Manager{
		deps:    deps,
		backend: backend,
	}
}

// Recorded returns how many tick records reached the backend.
func (m *Manager) Recorded() uint64 {
	return m.recorded.Load()
}

// PointsFailed returns how many point writes failed.
func (m *Manager) PointsFailed() uint64 {
	return m.pointsFailed.Load()
}
