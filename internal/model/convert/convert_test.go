package convert

import (
	"math"
	"testing"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/model"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestCoreToRun(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	r := CoreToRun(core.Run{
		ID:             "2f0c9a0e-1111-4c3a-9d0e-7c1b2a3f4e5d",
		StartTime:      start,
		Timestep:       128 * time.Millisecond,
		Seed:           42,
		TrackedObjects: []string{"CAIXA01", "CAIXA02"},
		Version:        "1.0.0",
	})

	assert.Zero(t, r.ID)
	assert.Equal(t, "2f0c9a0e-1111-4c3a-9d0e-7c1b2a3f4e5d", r.RunUUID)
	assert.Equal(t, start, r.StartTime)
	assert.Equal(t, int64(128), r.TimestepMs)
	assert.Equal(t, int64(42), r.Seed)
	assert.JSONEq(t, `["CAIXA01","CAIXA02"]`, string(r.TrackedObjects))
	assert.Equal(t, "1.0.0", r.Version)
}

func TestCoreToRunNoTrackedObjects(t *testing.T) {
	r := CoreToRun(core.Run{ID: "x"})
	assert.Equal(t, datatypes.JSON("[]"), r.TrackedObjects)
}

func TestRunRoundTripWithSummary(t *testing.T) {
	in := core.Run{
		ID:             "run-1",
		StartTime:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Timestep:       64 * time.Millisecond,
		Seed:           7,
		TrackedObjects: []string{"CAIXA01"},
	}
	summary := core.RunSummary{
		EndTime:       in.StartTime.Add(time.Minute),
		Ticks:         500,
		Alerted:       true,
		AlertTick:     321,
		StuckTicks:    4,
		Perturbations: 12,
	}

	r := CoreToRun(in)
	ApplySummary(&r, summary)
	out, outSummary := RunToCore(r)

	assert.Equal(t, in, out)
	assert.Equal(t, summary, outSummary)
}

func TestCoreToTick(t *testing.T) {
	rec := core.TickRecord{
		RunID:        "run-1",
		Tick:         9,
		Time:         time.Date(2026, 3, 1, 12, 0, 1, 0, time.UTC),
		Mode:         core.ModeAlert,
		Sensors:      core.SensorReading{1, 2, 3, 4, 5, 6},
		Command:      core.VelocityPair{Left: 6.28, Right: -6.28},
		IndicatorSet: true,
		Indicator:    core.ColorRed,
	}

	tk := CoreToTick(rec)
	assert.Equal(t, uint64(9), tk.Tick)
	assert.Equal(t, "ALERT", tk.Mode)
	assert.JSONEq(t, `[1,2,3,4,5,6]`, string(tk.Sensors))
	assert.Equal(t, 6.28, tk.LeftCommand)
	assert.Equal(t, -6.28, tk.RightCommand)
	assert.True(t, tk.IndicatorSet)
	assert.Equal(t, uint32(0xFF0000), tk.Indicator)

	back := TickToCore(tk, "run-1")
	assert.Equal(t, rec, back)
}

func TestTickToCoreDefaultsToNormal(t *testing.T) {
	rec := TickToCore(model.Tick{Tick: 1, Mode: "bogus"}, "r")
	assert.Equal(t, core.ModeNormal, rec.Mode)
	assert.Equal(t, core.SensorReading{}, rec.Sensors)
}

func TestAlertEventRoundTrip(t *testing.T) {
	ev := core.AlertEvent{
		RunID:  "run-1",
		Tick:   40,
		Time:   time.Date(2026, 3, 1, 12, 0, 5, 0, time.UTC),
		Object: "CAIXA02",
		DX:     0.01,
		DZ:     -0.003,
	}

	m, err := CoreToAlertEvent(ev)
	require.NoError(t, err)
	assert.Equal(t, "CAIXA02", m.Object)
	coords, ok := m.Displacement.Coordinates()
	require.True(t, ok)
	assert.InDelta(t, 0.01, coords.X, 1e-12)
	assert.InDelta(t, -0.003, coords.Y, 1e-12)

	assert.Equal(t, ev, AlertEventToCore(m, "run-1"))
}

func TestCoreToAlertEvent_NonFiniteDisplacement(t *testing.T) {
	for _, dx := range []float64{math.NaN(), math.Inf(1)} {
		_, err := CoreToAlertEvent(core.AlertEvent{Tick: 3, Object: "CAIXA01", DX: dx})
		assert.ErrorContains(t, err, "CAIXA01")
	}
}
