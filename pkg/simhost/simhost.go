// Package simhost defines the capabilities a host simulation exposes to a
// robot controller: stepping simulated time, looking up devices on the robot
// body and reading the pose of scene nodes through a supervisor.
package simhost

import (
	"errors"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

// ErrDeviceNotFound is returned when a named device does not exist on the robot.
var ErrDeviceNotFound = errors.New("device not found")

// ErrNodeRemoved is returned when a scene node disappeared after it was resolved.
var ErrNodeRemoved = errors.New("node removed from scene")

// Stepper advances the host simulation.
type Stepper interface {
	// Step advances simulated time by d. It returns false once the host
	// has ended the run.
	Step(d time.Duration) bool
}

// DistanceSensor is a proximity sensor.
type DistanceSensor interface {
	Enable(samplingPeriod time.Duration)
	Value() float64
}

// Motor is a rotational wheel motor.
type Motor interface {
	// SetPosition sets the target position. math.Inf(1) switches the motor
	// to unbounded velocity control.
	SetPosition(target float64)
	SetVelocity(v float64)
}

// LED is an indicator light.
type LED interface {
	Set(c core.Color)
}

// Robot is the controller's view of its own body.
type Robot interface {
	Stepper
	BasicTimeStep() time.Duration
	DistanceSensor(name string) (DistanceSensor, error)
	Motor(name string) (Motor, error)
	LED(name string) (LED, error)
}

// Node is a scene object addressable by the supervisor.
type Node interface {
	Translation() (core.Vec3, error)
}

// Supervisor has privileged read access to the scene tree.
type Supervisor interface {
	Stepper
	// FromDef resolves a node by its DEF name.
	FromDef(name string) (Node, bool)
}
