// Package gormstorage implements the storage.Backend interface on top of GORM
// with internal write queues and a background DB writer goroutine. The
// postgres and sqlite backends embed it and only differ in how they open
// the connection.
package gormstorage

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/database"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/model"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/model/convert"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/queue"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

	"gorm.io/gorm"
)

// DefaultFlushInterval is how often the writer drains the queues when no
// push wakes it first.
const DefaultFlushInterval = 2 * time.Second

// batchLimit caps a single INSERT batch.
const batchLimit = 2000

// wakeThreshold is the queue depth at which a push triggers an early flush.
const wakeThreshold = 64

// ErrNoRun is returned when records arrive before StartRun.
var ErrNoRun = errors.New("no run started")

// Dependencies holds all dependencies for the GORM storage backend.
type Dependencies struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	FlushInterval time.Duration
}

// queues holds the write queues for batch DB insertion.
type queues struct {
	Ticks *queue.Queue[model.Tick]
}

func newQueues() *queues {
	return &queues{
		Ticks: queue.New[model.Tick](),
	}
}

// Backend implements storage.Backend using GORM with queue-based batch writes.
type Backend struct {
	deps   Dependencies
	queues *queues

	runMu sync.Mutex
	run   *model.Run
	runID atomic.Uint64

	// serializes DB writes between the writer goroutine and callers
	flushMu sync.Mutex

	lastWrite atomic.Int64

	stopChan  chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a new GORM storage backend.
func New(deps Dependencies) *Backend {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.FlushInterval <= 0 {
		deps.FlushInterval = DefaultFlushInterval
	}
	return &Backend{deps: deps}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.deps.DB
}

// Init creates internal queues, runs schema migration, and starts the DB writer goroutine.
func (b *Backend) Init() error {
	if b.deps.DB == nil {
		return fmt.Errorf("gorm backend: no database connection")
	}

	b.queues = newQueues()
	b.stopChan = make(chan struct{})
	b.done = make(chan struct{})

	b.deps.Logger.Info("Migrating schema")
	if err := database.Migrate(b.deps.DB); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}

	go b.writer()
	return nil
}

// Close stops the DB writer goroutine and flushes whatever is still queued.
func (b *Backend) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.stopChan == nil {
			return
		}
		close(b.stopChan)
		<-b.done
		err = b.flush()
	})
	return err
}

// StartRun inserts the run row synchronously so queued ticks can reference it.
func (b *Backend) StartRun(run *core.Run) error {
	gormRun := convert.CoreToRun(*run)
	if err := b.deps.DB.Create(&gormRun).Error; err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	b.runMu.Lock()
	b.run = &gormRun
	b.runMu.Unlock()
	b.runID.Store(uint64(gormRun.ID))

	b.deps.Logger.Info("Run started", "runId", run.ID, "dbId", gormRun.ID)
	return nil
}

// EndRun flushes the queues and stores the run summary.
func (b *Backend) EndRun(summary core.RunSummary) error {
	b.runMu.Lock()
	defer b.runMu.Unlock()
	if b.run == nil {
		return ErrNoRun
	}

	if err := b.flush(); err != nil {
		return err
	}

	convert.ApplySummary(b.run, summary)
	if err := b.deps.DB.Save(b.run).Error; err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// RecordTick converts and queues a tick record.
func (b *Backend) RecordTick(t *core.TickRecord) error {
	if b.runID.Load() == 0 {
		return ErrNoRun
	}
	b.queues.Ticks.Push(convert.CoreToTick(*t))
	return nil
}

// RecordAlert inserts the alert synchronously. There is at most one per run.
func (b *Backend) RecordAlert(e *core.AlertEvent) error {
	id := b.runID.Load()
	if id == 0 {
		return ErrNoRun
	}
	gormObj, err := convert.CoreToAlertEvent(*e)
	if err != nil {
		return err
	}
	gormObj.RunID = uint(id)

	b.flushMu.Lock()
	defer b.flushMu.Unlock()
	if err := b.deps.DB.Create(&gormObj).Error; err != nil {
		return fmt.Errorf("failed to insert alert event: %w", err)
	}
	return nil
}

// LastWriteDuration reports how long the most recent batch write took.
func (b *Backend) LastWriteDuration() time.Duration {
	return time.Duration(b.lastWrite.Load())
}

// Pending returns the number of queued, unwritten ticks.
func (b *Backend) Pending() int {
	if b.queues == nil {
		return 0
	}
	return b.queues.Ticks.Len()
}

// writeQueue writes items from a queue to the database in a transaction.
// On failure the batch goes back to the front of the queue.
func writeQueue[T any](db *gorm.DB, q *queue.Queue[T], prepare func([]T)) (int, error) {
	total := 0
	for {
		items := q.Drain(batchLimit)
		if len(items) == 0 {
			return total, nil
		}
		if prepare != nil {
			prepare(items)
		}

		tx := db.Begin()
		if err := tx.Create(&items).Error; err != nil {
			tx.Rollback()
			q.Requeue(items)
			return total, err
		}
		if err := tx.Commit().Error; err != nil {
			q.Requeue(items)
			return total, err
		}
		total += len(items)
	}
}

// flush drains every queue into the database.
func (b *Backend) flush() error {
	b.flushMu.Lock()
	defer b.flushMu.Unlock()

	runID := uint(b.runID.Load())
	if runID == 0 || b.queues == nil {
		return nil
	}

	start := time.Now()
	n, err := writeQueue(b.deps.DB, b.queues.Ticks, func(items []model.Tick) {
		for i := range items {
			items[i].RunID = runID
		}
	})
	if err != nil {
		b.deps.Logger.Error("Error creating ticks", "error", err)
		return fmt.Errorf("failed to write ticks: %w", err)
	}
	if n > 0 {
		elapsed := time.Since(start)
		b.lastWrite.Store(int64(elapsed))
		b.deps.Logger.Debug("Wrote ticks", "count", n, "duration", elapsed)
	}
	return nil
}

// writer drains the queues whenever a push wakes it or the flush interval
// elapses, until Close.
func (b *Backend) writer() {
	defer close(b.done)

	ticker := time.NewTicker(b.deps.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.stopChan:
			return
		case <-ticker.C:
		case <-b.queues.Ticks.Ready():
			if b.queues.Ticks.Len() < wakeThreshold {
				continue
			}
		}
		// errors are logged and the batch retried on the next pass
		_ = b.flush()
	}
}
