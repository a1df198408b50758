// Package v1 contains the v1 export format for recorded runs.
package v1

import "time"

// FormatVersion is written into every export.
const FormatVersion = 1

// Export is the root JSON structure for v1 format
type Export struct {
	FormatVersion    int       `json:"formatVersion"`
	ExtensionVersion string    `json:"extensionVersion"`
	RunID            string    `json:"runId"`
	StartTime        time.Time `json:"startTime"`
	EndTime          time.Time `json:"endTime"`
	TimestepMs       int64     `json:"timestepMs"`
	Seed             int64     `json:"seed"`
	TrackedObjects   []string  `json:"trackedObjects"`

	Ticks         uint64 `json:"ticks"`
	Alerted       bool   `json:"alerted"`
	AlertTick     uint64 `json:"alertTick,omitempty"`
	StuckTicks    uint64 `json:"stuckTicks"`
	Perturbations uint64 `json:"perturbations"`

	Frames []Frame `json:"frames"`
	Alert  *Alert  `json:"alert,omitempty"`
}

// Frame is one control tick.
type Frame struct {
	Tick      uint64    `json:"tick"`
	Time      time.Time `json:"time"`
	Mode      string    `json:"mode"`
	Sensors   []float64 `json:"sensors"`
	Left      float64   `json:"left"`
	Right     float64   `json:"right"`
	Perturbed bool      `json:"perturbed,omitempty"`
	Stuck     bool      `json:"stuck,omitempty"`
	Indicator *uint32   `json:"indicator,omitempty"` // nil when the LED was not written
}

// Alert is the displacement that latched the alert.
type Alert struct {
	Tick   uint64    `json:"tick"`
	Time   time.Time `json:"time"`
	Object string    `json:"object"`
	DX     float64   `json:"dx"`
	DZ     float64   `json:"dz"`
}
