// Package arena is an in-process stand-in for the external simulator: a
// walled rectangle with pushable square boxes and an e-puck style
// differential-drive robot. It implements simhost.Robot and
// simhost.Supervisor so the controller can run without a simulator.
package arena

import (
	"fmt"
	"math"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

	"github.com/peterstace/simplefeatures/geom"
)

// boxHeight is the Y coordinate reported for every box center.
const boxHeight = 0.05

type box struct {
	name    string
	center  geom.XY
	half    float64
	removed bool
}

func (b *box) min() geom.XY { return geom.XY{X: b.center.X - b.half, Y: b.center.Y - b.half} }
func (b *box) max() geom.XY { return geom.XY{X: b.center.X + b.half, Y: b.center.Y + b.half} }

func (b *box) envelope() (geom.Envelope, error) {
	return geom.NewEnvelope([]geom.XY{b.min(), b.max()})
}

// World holds the simulation state shared by the robot and supervisor
// facades. It is not safe for concurrent use.
type World struct {
	cfg      Config
	min, max geom.XY
	bounds   geom.Envelope

	pos     geom.XY
	heading float64

	boxes []*box
	byDef map[string]*box

	leftMotor, rightMotor *motor
	sensors               map[string]*sensor
	leds                  map[string]*led

	tick     uint64
	finished bool

	robot      *Robot
	supervisor *Supervisor
}

// New builds a world from cfg.
func New(cfg Config) (*World, error) {
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("invalid arena: %w", err)
	}

	w := &World{
		cfg:     cfg,
		min:     geom.XY{X: -cfg.Width / 2, Y: -cfg.Depth / 2},
		max:     geom.XY{X: cfg.Width / 2, Y: cfg.Depth / 2},
		pos:     geom.XY{X: cfg.Robot.X, Y: cfg.Robot.Z},
		heading: cfg.Robot.Heading,
		byDef:   make(map[string]*box, len(cfg.Boxes)),
		sensors: make(map[string]*sensor, len(sensorLayout)),
		leds:    make(map[string]*led, ledCount),
	}
	bounds, err := geom.NewEnvelope([]geom.XY{w.min, w.max})
	if err != nil {
		return nil, fmt.Errorf("invalid arena bounds: %w", err)
	}
	w.bounds = bounds

	for _, bc := range cfg.Boxes {
		size := bc.Size
		if size == 0 {
			size = DefaultBoxSize
		}
		b := &box{name: bc.Name, center: geom.XY{X: bc.X, Y: bc.Z}, half: size / 2}
		if _, err := b.envelope(); err != nil {
			return nil, fmt.Errorf("invalid box %s: %w", b.name, err)
		}
		w.boxes = append(w.boxes, b)
		w.byDef[b.name] = b
	}

	w.leftMotor = &motor{}
	w.rightMotor = &motor{}
	for name, bearing := range sensorLayout {
		w.sensors[name] = &sensor{bearing: bearing}
	}
	for i := 0; i < ledCount; i++ {
		w.leds[fmt.Sprintf("led%d", i)] = &led{}
	}

	w.robot = &Robot{world: w}
	w.supervisor = &Supervisor{world: w}
	w.sampleSensors()
	return w, nil
}

// Robot returns the robot facade.
func (w *World) Robot() *Robot { return w.robot }

// Supervisor returns the supervisor facade.
func (w *World) Supervisor() *Supervisor { return w.supervisor }

// Tick returns the number of completed physics steps.
func (w *World) Tick() uint64 { return w.tick }

// Finished reports whether MaxTicks was reached.
func (w *World) Finished() bool { return w.finished }

// RobotPose returns the robot position in world coordinates and its heading.
func (w *World) RobotPose() (core.Vec3, float64) {
	return core.Vec3{X: w.pos.X, Z: w.pos.Y}, w.heading
}

// BoxPose returns the center of the named box.
func (w *World) BoxPose(name string) (core.Vec3, bool) {
	b, ok := w.byDef[name]
	if !ok || b.removed {
		return core.Vec3{}, false
	}
	return core.Vec3{X: b.center.X, Y: boxHeight, Z: b.center.Y}, true
}

// WheelVelocities returns the commanded left and right wheel speeds.
func (w *World) WheelVelocities() core.VelocityPair {
	return core.VelocityPair{Left: w.leftMotor.velocity, Right: w.rightMotor.velocity}
}

// LEDColors returns led0..led7 in order.
func (w *World) LEDColors() []core.Color {
	out := make([]core.Color, ledCount)
	for i := range out {
		out[i] = w.leds[fmt.Sprintf("led%d", i)].color
	}
	return out
}

// step advances physics by d and applies any scripted disturbance for the
// new tick. It returns false once MaxTicks steps have run.
func (w *World) step(d time.Duration) bool {
	if w.finished {
		return false
	}
	if w.cfg.MaxTicks > 0 && w.tick >= w.cfg.MaxTicks {
		w.finished = true
		return false
	}

	w.integrate(d.Seconds())
	w.tick++
	w.disturb()
	w.sampleSensors()
	return true
}

func (w *World) integrate(dt float64) {
	var left, right float64
	if w.leftMotor.velocityMode() {
		left = w.leftMotor.velocity
	}
	if w.rightMotor.velocityMode() {
		right = w.rightMotor.velocity
	}

	linear := WheelRadius * (left + right) / 2
	angular := WheelRadius * (right - left) / AxleLength

	w.heading = normalizeAngle(w.heading + angular*dt)
	forward := geom.XY{X: math.Cos(w.heading), Y: math.Sin(w.heading)}
	w.pos = w.pos.Add(forward.Scale(linear * dt))

	w.pos = clampXY(w.pos, w.min.Add(geom.XY{X: BodyRadius, Y: BodyRadius}), w.max.Sub(geom.XY{X: BodyRadius, Y: BodyRadius}))
	w.resolveContacts()
}

// resolveContacts pushes boxes the body overlaps. A box that cannot move
// (wall or another box) pushes the robot back instead.
func (w *World) resolveContacts() {
	for _, b := range w.boxes {
		if b.removed {
			continue
		}
		closest := clampXY(w.pos, b.min(), b.max())
		offset := closest.Sub(w.pos)
		dist := offset.Length()
		if dist >= BodyRadius {
			continue
		}

		var dir geom.XY
		if dist > 1e-12 {
			dir = offset.Scale(1 / dist)
		} else {
			dir = b.center.Sub(w.pos)
			dir = dir.Scale(1 / math.Max(dir.Length(), 1e-12))
		}
		push := dir.Scale(BodyRadius - dist)

		prev := b.center
		b.center = clampXY(b.center.Add(push),
			w.min.Add(geom.XY{X: b.half, Y: b.half}),
			w.max.Sub(geom.XY{X: b.half, Y: b.half}))
		if w.overlapsOther(b) {
			b.center = prev
		}

		moved := b.center.Sub(prev)
		w.pos = w.pos.Sub(push.Sub(moved))
	}
}

// overlapsOther treats a box without a valid envelope as overlapping so it
// is never moved onto an undefined position.
func (w *World) overlapsOther(b *box) bool {
	env, err := b.envelope()
	if err != nil {
		return true
	}
	for _, o := range w.boxes {
		if o == b || o.removed {
			continue
		}
		other, err := o.envelope()
		if err != nil || env.Intersects(other) {
			return true
		}
	}
	return false
}

func (w *World) disturb() {
	for _, d := range w.cfg.Disturbances {
		if d.Tick != w.tick {
			continue
		}
		b := w.byDef[d.Box]
		if d.Remove {
			b.removed = true
			continue
		}
		b.center = b.center.Add(geom.XY{X: d.DX, Y: d.DZ})
	}
}

// contains reports whether p is inside the walls.
func (w *World) contains(p geom.XY) bool {
	return w.bounds.Contains(p)
}

func clampXY(p, lo, hi geom.XY) geom.XY {
	return geom.XY{
		X: math.Max(lo.X, math.Min(hi.X, p.X)),
		Y: math.Max(lo.Y, math.Min(hi.Y, p.Y)),
	}
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a+math.Pi, 2*math.Pi)
	if a < 0 {
		a += 2 * math.Pi
	}
	return a - math.Pi
}
