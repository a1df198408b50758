// Package sqlitestorage implements the storage.Backend interface using an in-memory
// SQLite database with periodic disk dumps via VACUUM INTO.
// It wraps the GORM backend via composition; the SQLite-specific parts are
// creating the in-memory DB and dumping it to disk.
package sqlitestorage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/database"
	gormstorage "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/gorm"
	v1 "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory/export/v1"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

	"gorm.io/gorm"
)

// Config holds configuration for the SQLite storage backend.
type Config struct {
	DumpInterval time.Duration
	OutputDir    string // dumps go to OutputDir/<run id>.db
	DSN          string // empty means the shared in-memory database
}

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	db  *gorm.DB
	cfg Config
	log *slog.Logger

	mu       sync.Mutex
	dumpPath string
	dumped   bool

	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new SQLite storage backend.
func New(cfg Config, log *slog.Logger) (*Backend, error) {
	if log == nil {
		log = slog.Default()
	}
	db, err := database.GetSqliteDB(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory SQLite DB: %w", err)
	}

	return &Backend{
		Backend:  gormstorage.New(gormstorage.Dependencies{DB: db, Logger: log}),
		db:       db,
		cfg:      cfg,
		log:      log,
		stopChan: make(chan struct{}),
	}, nil
}

// Init initializes the embedded GORM backend and starts the dump goroutine.
func (b *Backend) Init() error {
	if err := b.Backend.Init(); err != nil {
		return err
	}
	if b.cfg.OutputDir != "" {
		if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	if b.cfg.DumpInterval > 0 {
		b.done = make(chan struct{})
		go b.dumpLoop()
	}
	return nil
}

// StartRun records the run and fixes the dump file name.
func (b *Backend) StartRun(run *core.Run) error {
	if err := b.Backend.StartRun(run); err != nil {
		return err
	}
	if b.cfg.OutputDir != "" {
		b.mu.Lock()
		b.dumpPath = filepath.Join(b.cfg.OutputDir, run.ID+".db")
		b.mu.Unlock()
	}
	return nil
}

// EndRun stores the summary and writes a dump so the file is complete
// even if Close is never reached.
func (b *Backend) EndRun(summary core.RunSummary) error {
	if err := b.Backend.EndRun(summary); err != nil {
		return err
	}
	return b.dump()
}

// Close stops the dump goroutine, flushes the GORM backend and writes a final dump.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		close(b.stopChan)
		if b.done != nil {
			<-b.done
		}
		if err = b.Backend.Close(); err != nil {
			return
		}
		if err = b.dump(); err != nil {
			return
		}
		if sqlDB, dbErr := b.db.DB(); dbErr == nil {
			err = sqlDB.Close()
		}
	})
	return err
}

// GetExportedFilePath returns the last dump file, or "" before the first dump.
func (b *Backend) GetExportedFilePath() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.dumped {
		return ""
	}
	return b.dumpPath
}

func (b *Backend) dump() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.dumpPath == "" {
		return nil
	}

	start := time.Now()
	if err := database.DumpMemoryDBToDisk(b.db, b.dumpPath); err != nil {
		return err
	}
	b.dumped = true
	b.log.Debug("Dumped to disk", "path", b.dumpPath, "duration", time.Since(start))
	return nil
}

// dumpLoop periodically dumps the in-memory SQLite database to disk via VACUUM INTO.
// VACUUM INTO creates a point-in-time snapshot, so no pause mechanism is needed.
func (b *Backend) dumpLoop() {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.DumpInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
			if err := b.dump(); err != nil {
				b.log.Error("Error dumping to disk", "error", err)
			}
		}
	}
}

// LoadDump opens a dump written by the backend and reads back one run. An
// empty runID selects the latest run in the file.
func LoadDump(path, runID string) (*v1.RunData, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := database.GetSqliteDB(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dump: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	return gormstorage.LoadRun(db, runID)
}
