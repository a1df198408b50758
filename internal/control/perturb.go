package control

import "github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

var turnBiases = [...]float64{-TurnBias, TurnBias}

// Perturb adds a random yaw with probability PerturbProbability. The two
// wheel deltas are always opposite, so forward thrust is unchanged before
// clamping. The second return value reports whether a turn was injected.
func Perturb(rng Rand, v core.VelocityPair) (core.VelocityPair, bool) {
	perturbed := false
	if rng.Float64() < PerturbProbability {
		bias := turnBiases[rng.Intn(len(turnBiases))]
		v.Left += bias * TurnSpeed
		v.Right -= bias * TurnSpeed
		perturbed = true
	}
	return ClampPair(v), perturbed
}
