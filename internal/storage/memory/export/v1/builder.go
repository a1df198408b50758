package v1

import (
	"fmt"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

// RunData contains all the data needed to build an export
type RunData struct {
	Run              core.Run
	Summary          core.RunSummary
	Ticks            []core.TickRecord
	Alert            *core.AlertEvent
	ExtensionVersion string
}

// Build converts recorded run data to the v1 export format
func Build(data *RunData) Export {
	export := Export{
		FormatVersion:    FormatVersion,
		ExtensionVersion: data.ExtensionVersion,
		RunID:            data.Run.ID,
		StartTime:        data.Run.StartTime,
		EndTime:          data.Summary.EndTime,
		TimestepMs:       data.Run.Timestep.Milliseconds(),
		Seed:             data.Run.Seed,
		TrackedObjects:   data.Run.TrackedObjects,
		Ticks:            data.Summary.Ticks,
		Alerted:          data.Summary.Alerted,
		AlertTick:        data.Summary.AlertTick,
		StuckTicks:       data.Summary.StuckTicks,
		Perturbations:    data.Summary.Perturbations,
		Frames:           make([]Frame, 0, len(data.Ticks)),
	}
	if export.TrackedObjects == nil {
		export.TrackedObjects = []string{}
	}

	for _, rec := range data.Ticks {
		frame := Frame{
			Tick:      rec.Tick,
			Time:      rec.Time,
			Mode:      rec.Mode.String(),
			Sensors:   rec.Sensors[:],
			Left:      rec.Command.Left,
			Right:     rec.Command.Right,
			Perturbed: rec.Perturbed,
			Stuck:     rec.Stuck,
		}
		if rec.IndicatorSet {
			c := uint32(rec.Indicator)
			frame.Indicator = &c
		}
		export.Frames = append(export.Frames, frame)
	}

	if data.Alert != nil {
		export.Alert = &Alert{
			Tick:   data.Alert.Tick,
			Time:   data.Alert.Time,
			Object: data.Alert.Object,
			DX:     data.Alert.DX,
			DZ:     data.Alert.DZ,
		}
	}

	return export
}

// Restore converts a decoded export back into run data.
func Restore(e Export) (*RunData, error) {
	if e.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("unsupported export format version %d", e.FormatVersion)
	}

	data := &RunData{
		ExtensionVersion: e.ExtensionVersion,
		Run: core.Run{
			ID:             e.RunID,
			StartTime:      e.StartTime,
			Timestep:       time.Duration(e.TimestepMs) * time.Millisecond,
			Seed:           e.Seed,
			TrackedObjects: e.TrackedObjects,
			Version:        e.ExtensionVersion,
		},
		Summary: core.RunSummary{
			EndTime:       e.EndTime,
			Ticks:         e.Ticks,
			Alerted:       e.Alerted,
			AlertTick:     e.AlertTick,
			StuckTicks:    e.StuckTicks,
			Perturbations: e.Perturbations,
		},
		Ticks: make([]core.TickRecord, 0, len(e.Frames)),
	}

	for _, f := range e.Frames {
		if len(f.Sensors) != core.ActiveSensors {
			return nil, fmt.Errorf("frame %d: expected %d sensor values, got %d", f.Tick, core.ActiveSensors, len(f.Sensors))
		}
		rec := core.TickRecord{
			RunID:     e.RunID,
			Tick:      f.Tick,
			Time:      f.Time,
			Mode:      parseMode(f.Mode),
			Command:   core.VelocityPair{Left: f.Left, Right: f.Right},
			Perturbed: f.Perturbed,
			Stuck:     f.Stuck,
		}
		copy(rec.Sensors[:], f.Sensors)
		if f.Indicator != nil {
			rec.IndicatorSet = true
			rec.Indicator = core.Color(*f.Indicator)
		}
		data.Ticks = append(data.Ticks, rec)
	}

	if e.Alert != nil {
		data.Alert = &core.AlertEvent{
			RunID:  e.RunID,
			Tick:   e.Alert.Tick,
			Time:   e.Alert.Time,
			Object: e.Alert.Object,
			DX:     e.Alert.DX,
			DZ:     e.Alert.DZ,
		}
	}

	return data, nil
}

func parseMode(s string) core.Mode {
	if s == core.ModeAlert.String() {
		return core.ModeAlert
	}
	return core.ModeNormal
}
