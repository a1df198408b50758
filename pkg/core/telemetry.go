// pkg/core/telemetry.go
package core

import "time"

// TickRecord is the outcome of one control loop iteration.
type TickRecord struct {
	RunID        string        `json:"runId"`
	Tick         uint64        `json:"tick"`
	Time         time.Time     `json:"time"`
	Mode         Mode          `json:"mode"`
	Sensors      SensorReading `json:"sensors"`
	Command      VelocityPair  `json:"command"`
	Perturbed    bool          `json:"perturbed"`
	Stuck        bool          `json:"stuck"`
	IndicatorSet bool          `json:"indicatorSet"`
	Indicator    Color         `json:"indicator"`
}

// AlertEvent records the tick on which a tracked object was found displaced.
type AlertEvent struct {
	RunID  string    `json:"runId"`
	Tick   uint64    `json:"tick"`
	Time   time.Time `json:"time"`
	Object string    `json:"object"`
	DX     float64   `json:"dx"`
	DZ     float64   `json:"dz"`
}

// Run describes one controller session.
type Run struct {
	ID             string        `json:"id"`
	StartTime      time.Time     `json:"startTime"`
	Timestep       time.Duration `json:"timestep"`
	Seed           int64         `json:"seed"`
	TrackedObjects []string      `json:"trackedObjects"`
	Version        string        `json:"version"`
}

// RunSummary is computed when a run ends.
type RunSummary struct {
	EndTime       time.Time `json:"endTime"`
	Ticks         uint64    `json:"ticks"`
	Alerted       bool      `json:"alerted"`
	AlertTick     uint64    `json:"alertTick,omitempty"`
	StuckTicks    uint64    `json:"stuckTicks"`
	Perturbations uint64    `json:"perturbations"`
}
