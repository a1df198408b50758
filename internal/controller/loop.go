// Package controller runs the per-tick control loop of the box-guarding
// robot. In NORMAL mode it blends obstacle repulsion, exploratory turning
// and stuck recovery; once a tracked box is displaced it latches into ALERT
// and spins in place with blinking indicators until the host ends the run.
package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/control"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/monitor"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/simhost"
)

// DefaultTimestep is the control period.
const DefaultTimestep = 128 * time.Millisecond

// Sink receives loop output on the loop goroutine. OnTick must not block.
// OnAlert may block: it runs once per run and the loop waits for it before
// actuating the alert.
type Sink interface {
	OnTick(rec core.TickRecord)
	OnAlert(ev core.AlertEvent)
}

// Dependencies holds everything the loop needs from the outside.
type Dependencies struct {
	Robot      simhost.Robot
	Supervisor simhost.Supervisor

	// Objects overrides discovery by Prefix when non-nil.
	Objects []monitor.TrackedObject
	Prefix  string

	Timestep time.Duration
	Rand     control.Rand
	Logger   *slog.Logger
	Sink     Sink
	RunID    string
	Clock    func() time.Time
}

// Snapshot is a point-in-time view of loop state, safe to read from other goroutines.
type Snapshot struct {
	RunID   string
	Tick    uint64
	Mode    core.Mode
	Alerted bool
	Blink   uint64
}

// Loop is the control loop. It is single-threaded: Tick and Run must be
// called from one goroutine.
type Loop struct {
	deps     Dependencies
	timestep time.Duration
	devices  *Devices
	monitor  *monitor.Monitor
	metrics  *instruments
	logger   *slog.Logger

	alerted       bool
	blink         uint64
	ticks         uint64
	alertTick     uint64
	stuckTicks    uint64
	perturbations uint64

	published struct {
		tick    atomic.Uint64
		alerted atomic.Bool
		blink   atomic.Uint64
	}
}

// New resolves devices and tracked objects. Missing devices abort with an
// error wrapping simhost.ErrDeviceNotFound.
func New(deps Dependencies) (*Loop, error) {
	if deps.Robot == nil || deps.Supervisor == nil {
		return nil, errors.New("controller needs both a robot and a supervisor")
	}
	if deps.Timestep <= 0 {
		deps.Timestep = DefaultTimestep
	}
	if deps.Prefix == "" {
		deps.Prefix = monitor.DefaultPrefix
	}
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if deps.RunID != "" {
		logger = logger.With("run_id", deps.RunID)
	}

	devices, err := ResolveDevices(deps.Robot, deps.Timestep)
	if err != nil {
		return nil, err
	}

	objects := deps.Objects
	if objects == nil {
		objects = monitor.Discover(deps.Supervisor, deps.Prefix)
	}
	mon, err := monitor.New(objects, logger)
	if err != nil {
		return nil, fmt.Errorf("snapshotting tracked objects: %w", err)
	}
	logger.Info("Tracked objects discovered", "count", mon.Len(), "prefix", deps.Prefix)

	metrics, err := newInstruments()
	if err != nil {
		return nil, err
	}

	return &Loop{
		deps:     deps,
		timestep: deps.Timestep,
		devices:  devices,
		monitor:  mon,
		metrics:  metrics,
		logger:   logger,
	}, nil
}

// Run steps the host and ticks until the host signals termination, ctx is
// cancelled or a tick fails. Host termination returns nil.
func (l *Loop) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if !l.deps.Robot.Step(l.timestep) || !l.deps.Supervisor.Step(l.timestep) {
			l.logger.Info("Simulation ended", "ticks", l.ticks, "alerted", l.alerted)
			return nil
		}

		if _, err := l.Tick(); err != nil {
			return err
		}
	}
}

// Tick runs one iteration against the current simulation state. The caller
// is responsible for having advanced the host.
func (l *Loop) Tick() (core.TickRecord, error) {
	l.ticks++
	rec := core.TickRecord{
		RunID: l.deps.RunID,
		Tick:  l.ticks,
		Time:  l.deps.Clock(),
	}

	if !l.alerted {
		res, err := l.monitor.Poll()
		if err != nil {
			return rec, fmt.Errorf("tick %d: polling tracked objects: %w", l.ticks, err)
		}
		if res.Moved {
			l.enterAlert(res, rec.Time)
		} else if err := l.monitor.Commit(); err != nil {
			return rec, fmt.Errorf("tick %d: committing baselines: %w", l.ticks, err)
		}
	}

	if l.alerted {
		l.alertActuation(&rec)
	} else {
		l.normalActuation(&rec)
	}

	l.published.tick.Store(l.ticks)
	l.published.alerted.Store(l.alerted)
	l.published.blink.Store(l.blink)

	l.metrics.observe(rec)
	if l.deps.Sink != nil {
		l.deps.Sink.OnTick(rec)
	}
	return rec, nil
}

func (l *Loop) enterAlert(res monitor.PollResult, at time.Time) {
	l.alerted = true
	l.alertTick = l.ticks
	l.logger.Warn("Tracked object displaced, entering alert",
		"object", res.Object, "dx", res.DX, "dz", res.DZ, "tick", l.ticks)

	l.metrics.alerts.Add(context.Background(), 1)
	if l.deps.Sink != nil {
		l.deps.Sink.OnAlert(core.AlertEvent{
			RunID:  l.deps.RunID,
			Tick:   l.ticks,
			Time:   at,
			Object: res.Object,
			DX:     res.DX,
			DZ:     res.DZ,
		})
	}
}

// alertActuation spins in place and blinks: red on even blink counts, off on odd.
func (l *Loop) alertActuation(rec *core.TickRecord) {
	cmd := core.VelocityPair{Left: control.MaxSpeed, Right: -control.MaxSpeed}
	color := core.ColorOff
	if l.blink%2 == 0 {
		color = core.ColorRed
	}

	l.devices.Drive(cmd)
	l.devices.SetIndicators(color)
	l.blink++

	rec.Mode = core.ModeAlert
	rec.Command = cmd
	rec.IndicatorSet = true
	rec.Indicator = color
}

func (l *Loop) normalActuation(rec *core.TickRecord) {
	sensors := l.devices.ReadSensors()

	cmd := control.Navigate(sensors, control.Cruise())
	cmd, perturbed := control.Perturb(l.deps.Rand, cmd)
	stuck := control.IsStuck(sensors)
	if stuck {
		cmd = control.ReverseManeuver(l.deps.Rand)
		l.stuckTicks++
		l.logger.Info("Robot stuck, reversing", "tick", l.ticks, "command", cmd.String())
	}
	if perturbed {
		l.perturbations++
	}

	l.devices.Drive(cmd)

	rec.Mode = core.ModeNormal
	rec.Sensors = sensors
	rec.Command = cmd
	rec.Perturbed = perturbed
	rec.Stuck = stuck
}

// Mode returns the current behavioral state.
func (l *Loop) Mode() core.Mode {
	if l.alerted {
		return core.ModeAlert
	}
	return core.ModeNormal
}

// Monitor exposes the displacement monitor.
func (l *Loop) Monitor() *monitor.Monitor {
	return l.monitor
}

// Summary reports counters accumulated so far. EndTime is left to the caller.
func (l *Loop) Summary() core.RunSummary {
	return core.RunSummary{
		Ticks:         l.ticks,
		Alerted:       l.alerted,
		AlertTick:     l.alertTick,
		StuckTicks:    l.stuckTicks,
		Perturbations: l.perturbations,
	}
}

// Snapshot may be called from any goroutine.
func (l *Loop) Snapshot() Snapshot {
	alerted := l.published.alerted.Load()
	mode := core.ModeNormal
	if alerted {
		mode = core.ModeAlert
	}
	return Snapshot{
		RunID:   l.deps.RunID,
		Tick:    l.published.tick.Load(),
		Mode:    mode,
		Alerted: alerted,
		Blink:   l.published.blink.Load(),
	}
}
