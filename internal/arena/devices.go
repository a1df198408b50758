package arena

import (
	"fmt"
	"math"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/simhost"
)

const ledCount = 8

type motor struct {
	position float64
	velocity float64
}

func (m *motor) SetPosition(target float64) { m.position = target }

// SetVelocity saturates at MotorMaxSpeed like the simulator does.
func (m *motor) SetVelocity(v float64) {
	m.velocity = math.Max(-MotorMaxSpeed, math.Min(MotorMaxSpeed, v))
}

func (m *motor) velocityMode() bool { return math.IsInf(m.position, 1) }

type sensor struct {
	bearing float64
	period  time.Duration
	value   float64
}

func (s *sensor) Enable(period time.Duration) { s.period = period }

// Value is 0 until the sensor is enabled.
func (s *sensor) Value() float64 {
	if s.period <= 0 {
		return 0
	}
	return s.value
}

type led struct {
	color core.Color
}

func (l *led) Set(c core.Color) { l.color = c }

// Robot is the controller-side view of the world.
type Robot struct {
	world *World
}

var _ simhost.Robot = (*Robot)(nil)

// Step advances the world by d.
func (r *Robot) Step(d time.Duration) bool { return r.world.step(d) }

func (r *Robot) BasicTimeStep() time.Duration { return DefaultBasicTimeStep }

func (r *Robot) DistanceSensor(name string) (simhost.DistanceSensor, error) {
	s, ok := r.world.sensors[name]
	if !ok {
		return nil, fmt.Errorf("distance sensor %q: %w", name, simhost.ErrDeviceNotFound)
	}
	return s, nil
}

func (r *Robot) Motor(name string) (simhost.Motor, error) {
	switch name {
	case "left wheel motor":
		return r.world.leftMotor, nil
	case "right wheel motor":
		return r.world.rightMotor, nil
	}
	return nil, fmt.Errorf("motor %q: %w", name, simhost.ErrDeviceNotFound)
}

func (r *Robot) LED(name string) (simhost.LED, error) {
	l, ok := r.world.leds[name]
	if !ok {
		return nil, fmt.Errorf("led %q: %w", name, simhost.ErrDeviceNotFound)
	}
	return l, nil
}

// Supervisor exposes box nodes by DEF name. It shares the robot's world, so
// its Step only reports whether the run is still going.
type Supervisor struct {
	world *World
}

var _ simhost.Supervisor = (*Supervisor)(nil)

func (s *Supervisor) Step(time.Duration) bool { return !s.world.finished }

func (s *Supervisor) FromDef(name string) (simhost.Node, bool) {
	b, ok := s.world.byDef[name]
	if !ok || b.removed {
		return nil, false
	}
	return &node{world: s.world, name: name}, true
}

type node struct {
	world *World
	name  string
}

func (n *node) Translation() (core.Vec3, error) {
	v, ok := n.world.BoxPose(n.name)
	if !ok {
		return core.Vec3{}, fmt.Errorf("%s: %w", n.name, simhost.ErrNodeRemoved)
	}
	return v, nil
}
