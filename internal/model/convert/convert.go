package convert

import (
	"encoding/json"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/model"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

func parseMode(s string) core.Mode {
	if s == core.ModeAlert.String() {
		return core.ModeAlert
	}
	return core.ModeNormal
}

// RunToCore converts a GORM Run back to a core.Run and its summary.
func RunToCore(r model.Run) (core.Run, core.RunSummary) {
	var tracked []string
	if len(r.TrackedObjects) > 0 {
		_ = json.Unmarshal(r.TrackedObjects, &tracked)
	}

	run := core.Run{
		ID:             r.RunUUID,
		StartTime:      r.StartTime,
		Timestep:       time.Duration(r.TimestepMs) * time.Millisecond,
		Seed:           r.Seed,
		TrackedObjects: tracked,
		Version:        r.Version,
	}
	summary := core.RunSummary{
		EndTime:       r.EndTime,
		Ticks:         r.Ticks,
		Alerted:       r.Alerted,
		AlertTick:     r.AlertTick,
		StuckTicks:    r.StuckTicks,
		Perturbations: r.Perturbations,
	}
	return run, summary
}

// TickToCore converts a GORM Tick to a core.TickRecord. Tick rows only
// reference their run by numeric key, so the caller supplies the UUID.
func TickToCore(t model.Tick, runID string) core.TickRecord {
	var sensors core.SensorReading
	if len(t.Sensors) > 0 {
		_ = json.Unmarshal(t.Sensors, &sensors)
	}

	return core.TickRecord{
		RunID:        runID,
		Tick:         t.Tick,
		Time:         t.Time,
		Mode:         parseMode(t.Mode),
		Sensors:      sensors,
		Command:      core.VelocityPair{Left: t.LeftCommand, Right: t.RightCommand},
		Perturbed:    t.Perturbed,
		Stuck:        t.Stuck,
		IndicatorSet: t.IndicatorSet,
		Indicator:    core.Color(t.Indicator),
	}
}

// AlertEventToCore converts a GORM AlertEvent to a core.AlertEvent.
func AlertEventToCore(a model.AlertEvent, runID string) core.AlertEvent {
	ev := core.AlertEvent{
		RunID:  runID,
		Tick:   a.Tick,
		Time:   a.Time,
		Object: a.Object,
	}
	if coords, ok := a.Displacement.Coordinates(); ok {
		ev.DX, ev.DZ = coords.X, coords.Y
	}
	return ev
}
