// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/model"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

func toJSON(v any) datatypes.JSON {
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}

// CoreToRun converts a core.Run to a GORM model.Run.
// The numeric primary key is assigned by the database; the run UUID goes in RunUUID.
func CoreToRun(r core.Run) model.Run {
	return model.Run{
		RunUUID:        r.ID,
		StartTime:      r.StartTime,
		TimestepMs:     r.Timestep.Milliseconds(),
		Seed:           r.Seed,
		TrackedObjects: toJSON(r.TrackedObjects),
		Version:        r.Version,
	}
}

// ApplySummary copies end-of-run counters onto a GORM run.
func ApplySummary(r *model.Run, s core.RunSummary) {
	r.EndTime = s.EndTime
	r.Ticks = s.Ticks
	r.Alerted = s.Alerted
	r.AlertTick = s.AlertTick
	r.StuckTicks = s.StuckTicks
	r.Perturbations = s.Perturbations
}

// CoreToTick converts a core.TickRecord to a GORM model.Tick.
func CoreToTick(rec core.TickRecord) model.Tick {
	return model.Tick{
		Tick:         rec.Tick,
		Time:         rec.Time,
		Mode:         rec.Mode.String(),
		Sensors:      toJSON(rec.Sensors),
		LeftCommand:  rec.Command.Left,
		RightCommand: rec.Command.Right,
		Perturbed:    rec.Perturbed,
		Stuck:        rec.Stuck,
		IndicatorSet: rec.IndicatorSet,
		Indicator:    uint32(rec.Indicator),
	}
}

// CoreToAlertEvent converts a core.AlertEvent to a GORM model.AlertEvent.
// A non-finite displacement cannot be stored as a point and is an error.
func CoreToAlertEvent(ev core.AlertEvent) (model.AlertEvent, error) {
	pt, err := geom.NewPoint(geom.Coordinates{
		XY: geom.XY{X: ev.DX, Y: ev.DZ},
	})
	if err != nil {
		return model.AlertEvent{}, fmt.Errorf("invalid displacement for %s: %w", ev.Object, err)
	}
	return model.AlertEvent{
		Tick:         ev.Tick,
		Time:         ev.Time,
		Object:       ev.Object,
		Displacement: pt,
	}, nil
}
