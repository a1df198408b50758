// internal/storage/storage.go
package storage

import "github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// Run management
	StartRun(run *core.Run) error
	EndRun(summary core.RunSummary) error

	// Recording
	RecordTick(t *core.TickRecord) error
	RecordAlert(e *core.AlertEvent) error
}

// Exportable is an optional interface for backends that write a file
// when the run ends.
type Exportable interface {
	GetExportedFilePath() string
}
