// Package dispatcher routes named telemetry events from the control loop to
// their handlers. A route is either synchronous, running the handler on the
// caller's goroutine, or queued, handing events to a per-command goroutine
// through a bounded channel.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrClosed is returned when a queued route is used after Close.
	ErrClosed = errors.New("dispatcher closed")
	// ErrQueueFull is returned when a non-blocking queue has no room.
	ErrQueueFull = errors.New("queue full")
	// ErrUnknownCommand is returned for commands with no route.
	ErrUnknownCommand = errors.New("unknown command")
)

// Event is a unit of work for a handler.
type Event struct {
	Command   string
	Payload   any
	Timestamp time.Time
}

// HandlerFunc processes an event and returns a result.
type HandlerFunc func(Event) (any, error)

// Logger interface for pluggable logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Option configures handler registration.
type Option func(*route)

// Buffered queues events for the handler with room for size events.
func Buffered(size int) Option {
	return func(r *route) {
		r.size = size
	}
}

// Blocking makes a buffered route wait for room instead of dropping.
func Blocking() Option {
	return func(r *route) {
		r.blocking = true
	}
}

// Logged adds debug logging around every handler call.
func Logged() Option {
	return func(r *route) {
		r.logged = true
	}
}

// Queued is the result returned by Dispatch for an event accepted by a
// buffered route.
const Queued = "queued"

// Stats counts what happened to the events of one command.
type Stats struct {
	Queued  uint64
	Handled uint64
	Failed  uint64
	Dropped uint64
	Pending int
}

type route struct {
	command  string
	handle   HandlerFunc
	size     int
	blocking bool
	logged   bool
	queue    chan Event
	attrs    metric.MeasurementOption

	queued  atomic.Uint64
	handled atomic.Uint64
	failed  atomic.Uint64
	dropped atomic.Uint64
}

// Dispatcher routes events to registered handlers.
type Dispatcher struct {
	routes map[string]*route
	logger Logger

	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter

	// senders hold the read lock so Close never closes a queue under them
	mu      sync.RWMutex
	closed  bool
	workers sync.WaitGroup
}

// New creates a Dispatcher. A nil logger discards output. Metrics go to the
// global OTel meter, which is a no-op until a provider is installed.
func New(logger Logger) (*Dispatcher, error) {
	if logger == nil {
		logger = nopLogger{}
	}
	d := &Dispatcher{
		routes: make(map[string]*route),
		logger: logger,
	}

	m := meter()
	var err error

	d.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Events waiting in a command queue"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}
	_, err = m.RegisterCallback(func(ctx context.Context, o metric.Observer) error {
		d.mu.RLock()
		defer d.mu.RUnlock()
		for _, r := range d.routes {
			if r.queue != nil {
				o.ObserveInt64(d.queueSize, int64(len(r.queue)), r.attrs)
			}
		}
		return nil
	}, d.queueSize)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	d.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Events handled, successfully or not"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating processed counter: %w", err)
	}

	d.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Events dropped because their queue was full"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating dropped counter: %w", err)
	}

	return d, nil
}

// Register adds a route for command. Registration must happen before
// events are dispatched.
func (d *Dispatcher) Register(command string, h HandlerFunc, opts ...Option) {
	r := &route{
		command: command,
		handle:  h,
		attrs:   metric.WithAttributes(attribute.String("command", command)),
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.size > 0 {
		r.queue = make(chan Event, r.size)
		d.workers.Add(1)
		go d.drain(r)
	}

	d.mu.Lock()
	d.routes[command] = r
	d.mu.Unlock()
}

// Dispatch routes an event. Synchronous routes return the handler's
// result; buffered routes return Queued once the event is accepted.
func (d *Dispatcher) Dispatch(e Event) (any, error) {
	r, ok := d.routes[e.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, e.Command)
	}
	if r.queue == nil {
		return d.call(r, e)
	}
	return d.enqueue(r, e)
}

// HasHandler returns true if a route is registered for the command.
func (d *Dispatcher) HasHandler(command string) bool {
	_, ok := d.routes[command]
	return ok
}

// Stats returns the counters of command's route.
func (d *Dispatcher) Stats(command string) (Stats, bool) {
	r, ok := d.routes[command]
	if !ok {
		return Stats{}, false
	}
	return Stats{
		Queued:  r.queued.Load(),
		Handled: r.handled.Load(),
		Failed:  r.failed.Load(),
		Dropped: r.dropped.Load(),
		Pending: len(r.queue),
	}, true
}

// Close stops accepting queued events and waits until every queued event
// has been handled. Synchronous routes keep working. Safe to call more
// than once.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, r := range d.routes {
			if r.queue != nil {
				close(r.queue)
			}
		}
	}
	d.mu.Unlock()

	d.workers.Wait()
}

func (d *Dispatcher) enqueue(r *route, e Event) (any, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, ErrClosed
	}

	if r.blocking {
		r.queue <- e
		r.queued.Add(1)
		return Queued, nil
	}

	select {
	case r.queue <- e:
		r.queued.Add(1)
		return Queued, nil
	default:
		r.dropped.Add(1)
		d.dropped.Add(context.Background(), 1, r.attrs)
		return nil, fmt.Errorf("%w: %s", ErrQueueFull, r.command)
	}
}

func (d *Dispatcher) drain(r *route) {
	defer d.workers.Done()
	for e := range r.queue {
		// failures are logged by call; nobody else sees them
		_, _ = d.call(r, e)
	}
}

// call runs the handler and records the outcome. Failures of queued routes
// are always logged since no caller is waiting for them.
func (d *Dispatcher) call(r *route, e Event) (any, error) {
	start := time.Now()
	if r.logged {
		d.logger.Debug("handling event", "command", r.command, "payload", fmt.Sprintf("%T", e.Payload))
	}

	result, err := r.handle(e)
	d.processed.Add(context.Background(), 1, r.attrs)

	if err != nil {
		r.failed.Add(1)
		if r.logged || r.queue != nil {
			d.logger.Error("event failed", "command", r.command, "duration", time.Since(start), "error", err)
		}
		return result, err
	}

	r.handled.Add(1)
	if r.logged {
		d.logger.Debug("event handled", "command", r.command, "duration", time.Since(start))
	}
	return result, nil
}
