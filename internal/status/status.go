// Package status periodically writes the controller's state to a JSON file
// so an operator can watch a long run without tailing logs.
package status

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/controller"
)

// DefaultInterval is used when Dependencies.Interval is zero.
const DefaultInterval = time.Second

// SnapshotProvider is satisfied by *controller.Loop.
type SnapshotProvider interface {
	Snapshot() controller.Snapshot
}

// WriteStats is satisfied by the GORM storage backends.
type WriteStats interface {
	LastWriteDuration() time.Duration
	Pending() int
}

// Dependencies holds all dependencies for the status service
type Dependencies struct {
	Logger   *slog.Logger
	Loop     SnapshotProvider
	Writes   WriteStats // optional
	Path     string
	Interval time.Duration
	Clock    func() time.Time
}

// Status is the document written on every interval.
type Status struct {
	Time                time.Time `json:"time"`
	RunID               string    `json:"runId"`
	Tick                uint64    `json:"tick"`
	Mode                string    `json:"mode"`
	Alerted             bool      `json:"alerted"`
	Blink               uint64    `json:"blink"`
	LastWriteDurationMs float64   `json:"lastWriteDurationMs"`
	PendingWrites       int       `json:"pendingWrites"`
}

// Service manages status monitoring
type Service struct {
	deps      Dependencies
	isRunning bool
	mu        sync.RWMutex
	stopChan  chan struct{}
	done      chan struct{}
}

// NewService creates a new status service
func NewService(deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Interval <= 0 {
		deps.Interval = DefaultInterval
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Service{deps: deps}
}

// IsRunning returns whether the status writer is running
func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetStatus builds the current status document.
func (s *Service) GetStatus() Status {
	snap := s.deps.Loop.Snapshot()
	st := Status{
		Time:    s.deps.Clock().UTC(),
		RunID:   snap.RunID,
		Tick:    snap.Tick,
		Mode:    snap.Mode.String(),
		Alerted: snap.Alerted,
		Blink:   snap.Blink,
	}
	if s.deps.Writes != nil {
		st.LastWriteDurationMs = float64(s.deps.Writes.LastWriteDuration().Microseconds()) / 1000
		st.PendingWrites = s.deps.Writes.Pending()
	}
	return st
}

// WriteOnce writes the current status to the configured path.
func (s *Service) WriteOnce() error {
	data, err := json.MarshalIndent(s.GetStatus(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	// write-then-rename so readers never see a half-written file
	tmp := s.deps.Path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write status file: %w", err)
	}
	return os.Rename(tmp, s.deps.Path)
}

// Start starts the status writer goroutine
func (s *Service) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isRunning {
		return nil
	}

	if dir := filepath.Dir(s.deps.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create status directory: %w", err)
		}
	}

	s.isRunning = true
	s.stopChan = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stopChan, s.done)
	return nil
}

func (s *Service) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	s.deps.Logger.Debug("Starting status writer", "path", s.deps.Path, "interval", s.deps.Interval)

	ticker := time.NewTicker(s.deps.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			// one last write so the file shows the final state
			if err := s.WriteOnce(); err != nil {
				s.deps.Logger.Error("Error writing status file", "error", err)
			}
			return
		case <-ticker.C:
			if err := s.WriteOnce(); err != nil {
				s.deps.Logger.Error("Error writing status file", "error", err)
			}
		}
	}
}

// Stop stops the status writer and waits for its final write.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	close(s.stopChan)
	done := s.done
	s.mu.Unlock()

	<-done
}
