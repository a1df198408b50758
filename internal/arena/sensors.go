package arena

import (
	"math"

	"github.com/peterstace/simplefeatures/geom"
)

// SensorRange is the distance beyond which a proximity sensor reads 0.
const SensorRange = 0.07

// sensorLayout holds the e-puck IR sensor bearings relative to the heading,
// counter-clockwise positive. ps0-ps2 face front-right, ps5-ps7 front-left.
var sensorLayout = map[string]float64{
	"ps0": -0.30,
	"ps1": -0.80,
	"ps2": -1.57,
	"ps3": -2.64,
	"ps4": 2.64,
	"ps5": 1.57,
	"ps6": 0.80,
	"ps7": 0.30,
}

// lookupTable maps obstacle distance in meters to raw readings.
var lookupTable = [...]struct{ dist, value float64 }{
	{0, 4095},
	{0.005, 2133},
	{0.01, 1465},
	{0.02, 601},
	{0.03, 383},
	{0.04, 234},
	{0.05, 158},
	{0.06, 120},
	{SensorRange, 0},
}

// RawValue converts a distance into a sensor reading by linear
// interpolation over the lookup table.
func RawValue(dist float64) float64 {
	if dist <= 0 {
		return lookupTable[0].value
	}
	for i := 1; i < len(lookupTable); i++ {
		hi := lookupTable[i]
		if dist < hi.dist {
			lo := lookupTable[i-1]
			f := (dist - lo.dist) / (hi.dist - lo.dist)
			return lo.value + f*(hi.value-lo.value)
		}
	}
	return 0
}

func (w *World) sampleSensors() {
	for _, s := range w.sensors {
		dir := geom.XY{X: math.Cos(w.heading + s.bearing), Y: math.Sin(w.heading + s.bearing)}
		origin := w.pos.Add(dir.Scale(BodyRadius))
		s.value = RawValue(w.castRay(origin, dir))
	}
}

// castRay returns the distance from origin along unit vector dir to the
// nearest box or wall, capped at SensorRange.
func (w *World) castRay(origin, dir geom.XY) float64 {
	if !w.contains(origin) {
		return 0
	}
	best := math.Min(SensorRange, exitDistance(origin, dir, w.min, w.max))
	for _, b := range w.boxes {
		if b.removed {
			continue
		}
		if t, ok := entryDistance(origin, dir, b.min(), b.max()); ok && t < best {
			best = t
		}
	}
	return best
}

// entryDistance is the slab test for a ray against an axis-aligned box.
// An origin inside the box hits at distance 0.
func entryDistance(origin, dir, lo, hi geom.XY) (float64, bool) {
	tmin, tmax := 0.0, math.Inf(1)
	for _, axis := range [2][4]float64{
		{origin.X, dir.X, lo.X, hi.X},
		{origin.Y, dir.Y, lo.Y, hi.Y},
	} {
		o, d, a, b := axis[0], axis[1], axis[2], axis[3]
		if math.Abs(d) < 1e-12 {
			if o < a || o > b {
				return 0, false
			}
			continue
		}
		t1, t2 := (a-o)/d, (b-o)/d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// exitDistance is how far a ray starting inside [lo, hi] travels before
// leaving it.
func exitDistance(origin, dir, lo, hi geom.XY) float64 {
	t := math.Inf(1)
	if dir.X > 0 {
		t = math.Min(t, (hi.X-origin.X)/dir.X)
	} else if dir.X < 0 {
		t = math.Min(t, (lo.X-origin.X)/dir.X)
	}
	if dir.Y > 0 {
		t = math.Min(t, (hi.Y-origin.Y)/dir.Y)
	} else if dir.Y < 0 {
		t = math.Min(t, (lo.Y-origin.Y)/dir.Y)
	}
	return t
}
