// internal/storage/memory/memory.go
package memory

import (
	"errors"
	"sync"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/config"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

// ErrNoRun is returned when records arrive before StartRun.
var ErrNoRun = errors.New("no run started")

// Backend stores run data in memory and exports to JSON
type Backend struct {
	cfg     config.MemoryConfig
	version string

	run     *core.Run
	summary core.RunSummary
	ticks   []core.TickRecord
	alert   *core.AlertEvent

	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig) *Backend {
	return &Backend{cfg: cfg}
}

// SetVersion sets the program version written into exports.
func (b *Backend) SetVersion(v string) {
	b.mu.Lock()
	b.version = v
	b.mu.Unlock()
}

// Init initializes the backend
func (b *Backend) Init() error {
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StartRun begins recording a new run, discarding anything recorded before.
func (b *Backend) StartRun(run *core.Run) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := *run
	b.run = &r
	b.summary = core.RunSummary{}
	b.ticks = nil
	b.alert = nil
	b.lastExportPath = ""
	return nil
}

// EndRun finalizes and exports the run data
func (b *Backend) EndRun(summary core.RunSummary) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return ErrNoRun
	}
	b.summary = summary
	return b.exportJSON()
}

// RecordTick appends a tick record
func (b *Backend) RecordTick(t *core.TickRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return ErrNoRun
	}
	b.ticks = append(b.ticks, *t)
	return nil
}

// RecordAlert stores the alert event. Only the first one is kept.
func (b *Backend) RecordAlert(e *core.AlertEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.run == nil {
		return ErrNoRun
	}
	if b.alert == nil {
		ev := *e
		b.alert = &ev
	}
	return nil
}

// Ticks returns a copy of the recorded ticks
func (b *Backend) Ticks() []core.TickRecord {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]core.TickRecord, len(b.ticks))
	copy(out, b.ticks)
	return out
}

// Alert returns the recorded alert, if any
func (b *Backend) Alert() (core.AlertEvent, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.alert == nil {
		return core.AlertEvent{}, false
	}
	return *b.alert, true
}

// GetExportedFilePath returns the path of the last export
func (b *Backend) GetExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
