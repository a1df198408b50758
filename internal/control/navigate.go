package control

import (
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

	"gonum.org/v1/gonum/floats"
)

// Navigate steers away from obstacles in proportion to the strongest
// reading. A front obstacle slows the left wheel and speeds up the right
// one; a side obstacle does the opposite. Both adjustments may apply in the
// same tick and add up.
func Navigate(sensors core.SensorReading, v core.VelocityPair) core.VelocityPair {
	front := sensors.Front()
	side := sensors.Side()

	if anyAbove(front[:], ObstacleThreshold) {
		maxFront := floats.Max(front[:])
		v.Left -= ProportionalGain * maxFront
		v.Right += ProportionalGain * maxFront
	}

	if anyAbove(side[:], ObstacleThreshold) {
		maxSide := floats.Max(side[:])
		v.Left += ProportionalGain * maxSide
		v.Right -= ProportionalGain * maxSide
	}

	return ClampPair(v)
}
