// Package control holds the reflex control laws of the box-guarding robot:
// proportional obstacle repulsion, randomized exploratory turning and the
// boxed-in detector with its reverse maneuver. Every function here is pure
// apart from draws on an injected random source.
package control

import "github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

// Wheel speed limits and gains, in rad/s unless noted.
const (
	MaxSpeed  = 6.28
	MinSpeed  = 0.8
	TurnSpeed = 2.0

	// ObstacleThreshold is the raw proximity value above which a sensor
	// contributes to repulsion.
	ObstacleThreshold = 50.0
	// StuckThreshold is stricter than ObstacleThreshold.
	StuckThreshold   = 70.0
	ProportionalGain = 0.7

	PerturbProbability = 0.3
	TurnBias           = 0.3
)

// Rand is the random source the control laws draw from. *math/rand.Rand
// satisfies it.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Clamp bounds v to [MinSpeed, MaxSpeed].
func Clamp(v float64) float64 {
	return max(min(v, MaxSpeed), MinSpeed)
}

// ClampPair bounds both wheels to [MinSpeed, MaxSpeed].
func ClampPair(v core.VelocityPair) core.VelocityPair {
	return core.VelocityPair{Left: Clamp(v.Left), Right: Clamp(v.Right)}
}

// Cruise is the command both wheels start from every tick.
func Cruise() core.VelocityPair {
	return core.VelocityPair{Left: MaxSpeed, Right: MaxSpeed}
}

func anyAbove(values []float64, threshold float64) bool {
	for _, v := range values {
		if v > threshold {
			return true
		}
	}
	return false
}

func allAbove(values []float64, threshold float64) bool {
	for _, v := range values {
		if v <= threshold {
			return false
		}
	}
	return true
}
