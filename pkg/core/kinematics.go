// pkg/core/kinematics.go
package core

import "fmt"

// Sensor index convention for a SensorReading.
const (
	FrontSensors  = 3
	SideSensors   = 3
	ActiveSensors = FrontSensors + SideSensors
)

// SensorNames maps SensorReading indices to the robot's proximity sensors:
// ps0-ps2 are the front group, ps5-ps7 the side group.
var SensorNames = [ActiveSensors]string{"ps0", "ps1", "ps2", "ps5", "ps6", "ps7"}

// SensorReading holds one tick of proximity values. Indices 0-2 are the
// front sensors, 3-5 the side sensors.
type SensorReading [ActiveSensors]float64

// Front returns the three front sensor values.
func (s SensorReading) Front() [FrontSensors]float64 {
	return [FrontSensors]float64{s[0], s[1], s[2]}
}

// Side returns the three side sensor values.
func (s SensorReading) Side() [SideSensors]float64 {
	return [SideSensors]float64{s[3], s[4], s[5]}
}

// VelocityPair is a left/right wheel angular velocity command in rad/s.
type VelocityPair struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

func (v VelocityPair) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", v.Left, v.Right)
}

// Vec3 is a simulator translation. Y is height.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Pose2D is the planar position of a tracked object.
type Pose2D struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// PoseFromVec3 drops the height component.
func PoseFromVec3(v Vec3) Pose2D {
	return Pose2D{X: v.X, Z: v.Z}
}

// Color is a 0xRRGGBB indicator value.
type Color uint32

const (
	ColorOff Color = 0x000000
	ColorRed Color = 0xFF0000
)

// Mode is the behavioral state of the control loop.
type Mode int

const (
	ModeNormal Mode = iota
	ModeAlert
)

func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "NORMAL"
	case ModeAlert:
		return "ALERT"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}
