package control

import (
	"math"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

var reverseFactors = [...]float64{-1, 0.5, 1}

// IsStuck reports the boxed-in pattern: every front sensor and at least one
// side sensor above StuckThreshold.
func IsStuck(sensors core.SensorReading) bool {
	front := sensors.Front()
	side := sensors.Side()
	return allAbove(front[:], StuckThreshold) && anyAbove(side[:], StuckThreshold)
}

// ReverseManeuver draws the recovery command used when IsStuck fires. Each
// wheel independently gets -MaxSpeed scaled by one of {-1, 0.5, 1}, the
// right wheel drawn first. Both wheels may end up turning the same way.
func ReverseManeuver(rng Rand) core.VelocityPair {
	right := -MaxSpeed * reverseFactors[rng.Intn(len(reverseFactors))]
	left := -MaxSpeed * reverseFactors[rng.Intn(len(reverseFactors))]
	return core.VelocityPair{Left: left, Right: right}
}

// WithinSpeedLimits reports whether both wheel speeds, ignoring direction,
// lie in [MinSpeed, MaxSpeed].
func WithinSpeedLimits(v core.VelocityPair) bool {
	l, r := math.Abs(v.Left), math.Abs(v.Right)
	return l >= MinSpeed && l <= MaxSpeed && r >= MinSpeed && r <= MaxSpeed
}
