package worker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/controller"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/dispatcher"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ controller.Sink = (*Publisher)(nil)

// mockLogger implements dispatcher.Logger for testing
type mockLogger struct {
	mu       sync.Mutex
	messages []string
}

func (l *mockLogger) Debug(msg string, keysAndValues ...any) { l.add(msg) }
func (l *mockLogger) Info(msg string, keysAndValues ...any)  { l.add(msg) }
func (l *mockLogger) Error(msg string, keysAndValues ...any) { l.add(msg) }

func (l *mockLogger) add(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.messages = append(l.messages, msg)
}

// mockBackend implements storage.Backend for testing
type mockBackend struct {
	mu       sync.Mutex
	ticks    []core.TickRecord
	alerts   []core.AlertEvent
	alertErr error
}

func (b *mockBackend) Init() error                  { return nil }
func (b *mockBackend) Close() error                 { return nil }
func (b *mockBackend) StartRun(*core.Run) error     { return nil }
func (b *mockBackend) EndRun(core.RunSummary) error { return nil }

func (b *mockBackend) RecordTick(t *core.TickRecord) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks = append(b.ticks, *t)
	return nil
}

func (b *mockBackend) RecordAlert(e *core.AlertEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.alertErr != nil {
		return b.alertErr
	}
	b.alerts = append(b.alerts, *e)
	return nil
}

func (b *mockBackend) tickCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ticks)
}

type mockPoints struct {
	mu     sync.Mutex
	ticks  int
	alerts int
	err    error
}

func (p *mockPoints) WriteTick(core.TickRecord) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ticks++
	return p.err
}

func (p *mockPoints) WriteAlert(core.AlertEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts++
	return p.err
}

func setup(t *testing.T, backend *mockBackend, points PointWriter) (*Manager, *dispatcher.Dispatcher) {
	t.Helper()
	d, err := dispatcher.New(&mockLogger{})
	require.NoError(t, err)

	m := NewManager(Dependencies{Points: points}, backend)
	m.RegisterHandlers(d)
	return m, d
}

func TestRegisterHandlers(t *testing.T) {
	_, d := setup(t, &mockBackend{}, nil)
	defer d.Close()

	assert.True(t, d.HasHandler(CommandTick))
	assert.True(t, d.HasHandler(CommandAlert))
}

func TestTicksReachBackendAfterClose(t *testing.T) {
	backend := &mockBackend{}
	points := &mockPoints{}
	m, d := setup(t, backend, points)
	pub := NewPublisher(d, nil)

	for i := uint64(1); i <= 50; i++ {
		pub.OnTick(core.TickRecord{RunID: "r", Tick: i})
	}
	d.Close()

	require.Equal(t, 50, backend.tickCount())
	for i, rec := range backend.ticks {
		assert.Equal(t, uint64(i+1), rec.Tick, "ticks must keep their order")
	}
	assert.Equal(t, uint64(50), m.Recorded())
	assert.Equal(t, 50, points.ticks)
}

func TestAlertIsSynchronous(t *testing.T) {
	backend := &mockBackend{}
	points := &mockPoints{}
	_, d := setup(t, backend, points)
	defer d.Close()

	NewPublisher(d, nil).OnAlert(core.AlertEvent{RunID: "r", Tick: 9, Object: "CAIXA01"})

	require.Len(t, backend.alerts, 1)
	assert.Equal(t, "CAIXA01", backend.alerts[0].Object)
	assert.Equal(t, 1, points.alerts)
}

func TestAlertBackendErrorReturned(t *testing.T) {
	backend := &mockBackend{alertErr: errors.New("disk full")}
	_, d := setup(t, backend, nil)
	defer d.Close()

	_, err := d.Dispatch(dispatcher.Event{Command: CommandAlert, Payload: core.AlertEvent{Tick: 1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPointFailureDoesNotFailTick(t *testing.T) {
	backend := &mockBackend{}
	points := &mockPoints{err: errors.New("influx down")}
	m, d := setup(t, backend, points)

	NewPublisher(d, nil).OnTick(core.TickRecord{Tick: 1})
	d.Close()

	assert.Equal(t, 1, backend.tickCount())
	assert.Equal(t, uint64(1), m.PointsFailed())
}

func TestWrongPayloadType(t *testing.T) {
	m := NewManager(Dependencies{}, &mockBackend{})

	_, err := m.handleTick(dispatcher.Event{Command: CommandTick, Payload: "tick"})
	assert.Error(t, err)
	_, err = m.handleAlert(dispatcher.Event{Command: CommandAlert, Payload: 42})
	assert.Error(t, err)
}

func TestPublishAfterCloseDoesNotPanic(t *testing.T) {
	backend := &mockBackend{}
	_, d := setup(t, backend, nil)
	d.Close()

	assert.NotPanics(t, func() {
		NewPublisher(d, nil).OnTick(core.TickRecord{Tick: 1})
	})
	assert.Equal(t, 0, backend.tickCount())
}

func TestEventTime(t *testing.T) {
	at := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, at, eventTime(at))
	assert.False(t, eventTime(time.Time{}).IsZero())
}
