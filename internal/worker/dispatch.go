package worker

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/dispatcher"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

// Commands routed through the dispatcher.
const (
	CommandTick  = ":TICK:"
	CommandAlert = ":ALERT:"
)

// TickBufferSize bounds the tick queue between the control loop and storage.
const TickBufferSize = 4096

// RegisterHandlers registers all event handlers with the dispatcher.
func (m *Manager) RegisterHandlers(d *dispatcher.Dispatcher) {
	// one per tick - buffered, the control loop must not wait on storage
	d.Register(CommandTick, m.handleTick, dispatcher.Buffered(TickBufferSize), dispatcher.Logged())

	// at most one per run - sync so it is stored before the loop moves on
	d.Register(CommandAlert, m.handleAlert, dispatcher.Logged())
}

func (m *Manager) handleTick(e dispatcher.Event) (any, error) {
	rec, ok := e.Payload.(core.TickRecord)
	if !ok {
		return nil, fmt.Errorf("unexpected tick payload %T", e.Payload)
	}

	if err := m.backend.RecordTick(&rec); err != nil {
		return nil, fmt.Errorf("failed to record tick %d: %w", rec.Tick, err)
	}
	m.recorded.Add(1)

	if m.deps.Points != nil {
		if err := m.deps.Points.WriteTick(rec); err != nil {
			m.pointsFailed.Add(1)
			m.deps.Logger.Warn("Failed to write tick point", "tick", rec.Tick, "error", err)
		}
	}
	return nil, nil
}

func (m *Manager) handleAlert(e dispatcher.Event) (any, error) {
	ev, ok := e.Payload.(core.AlertEvent)
	if !ok {
		return nil, fmt.Errorf("unexpected alert payload %T", e.Payload)
	}

	if err := m.backend.RecordAlert(&ev); err != nil {
		return nil, fmt.Errorf("failed to record alert: %w", err)
	}

	if m.deps.Points != nil {
		if err := m.deps.Points.WriteAlert(ev); err != nil {
			m.pointsFailed.Add(1)
			m.deps.Logger.Warn("Failed to write alert point", "error", err)
		}
	}
	return nil, nil
}

// Publisher implements controller.Sink by dispatching records as events.
type Publisher struct {
	d      *dispatcher.Dispatcher
	logger *slog.Logger
}

// NewPublisher creates a Publisher over d.
func NewPublisher(d *dispatcher.Dispatcher, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{d: d, logger: logger}
}

// OnTick queues the record. A full queue drops it with a warning.
func (p *Publisher) OnTick(rec core.TickRecord) {
	if _, err := p.d.Dispatch(dispatcher.Event{
		Command:   CommandTick,
		Payload:   rec,
		Timestamp: eventTime(rec.Time),
	}); err != nil {
		p.logger.Warn("Dropping tick record", "tick", rec.Tick, "error", err)
	}
}

// OnAlert records the alert synchronously.
func (p *Publisher) OnAlert(ev core.AlertEvent) {
	if _, err := p.d.Dispatch(dispatcher.Event{
		Command:   CommandAlert,
		Payload:   ev,
		Timestamp: eventTime(ev.Time),
	}); err != nil {
		p.logger.Error("Failed to record alert", "object", ev.Object, "tick", ev.Tick, "error", err)
	}
}

func eventTime(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now()
	}
	return t
}
