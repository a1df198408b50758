package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/control"
	v1 "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory/export/v1"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *v1.RunData {
	ticks := []core.TickRecord{
		{Tick: 1, Command: core.VelocityPair{Left: 2, Right: 4}},
		{Tick: 2, Command: core.VelocityPair{Left: 4, Right: 4}, Perturbed: true},
		{Tick: 3, Command: core.VelocityPair{Left: 6, Right: 4}, Stuck: true},
		{Tick: 4, Mode: core.ModeAlert, Command: core.VelocityPair{Left: control.MaxSpeed, Right: -control.MaxSpeed}},
		{Tick: 5, Mode: core.ModeAlert, Command: core.VelocityPair{Left: control.MaxSpeed, Right: -control.MaxSpeed}},
	}
	return &v1.RunData{
		Run:   core.Run{ID: "run-1"},
		Ticks: ticks,
		Alert: &core.AlertEvent{Tick: 4, Object: "CAIXA02"},
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleRun())

	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, 5, s.Ticks)
	assert.Equal(t, 3, s.NormalTicks)
	assert.Equal(t, 2, s.AlertTicks)
	assert.True(t, s.Alerted)
	assert.Equal(t, uint64(4), s.AlertTick)
	assert.Equal(t, "CAIXA02", s.AlertObject)
	assert.Equal(t, 1, s.StuckTicks)
	assert.Equal(t, 1, s.Perturbations)

	assert.InDelta(t, 4.0, s.MeanLeft, 1e-12)
	assert.InDelta(t, 2.0, s.StdLeft, 1e-12)
	assert.InDelta(t, 4.0, s.MeanRight, 1e-12)
	assert.InDelta(t, 0.0, s.StdRight, 1e-12)
}

func TestSummarizeWithoutAlertEvent(t *testing.T) {
	data := sampleRun()
	data.Alert = nil

	s := Summarize(data)
	assert.True(t, s.Alerted)
	assert.Equal(t, uint64(4), s.AlertTick)
	assert.Empty(t, s.AlertObject)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(&v1.RunData{Run: core.Run{ID: "empty"}})
	assert.Equal(t, Summary{RunID: "empty"}, s)
}

func TestSummaryWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Summarize(sampleRun()).Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "tick 4, object CAIXA02")
	assert.Contains(t, out, "mean 4.000, std 2.000")

	buf.Reset()
	require.NoError(t, Summarize(&v1.RunData{}).Write(&buf))
	assert.Contains(t, buf.String(), "none")
}

func TestPlotCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "commands.png")
	require.NoError(t, PlotCommands(sampleRun(), path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, []byte("\x89PNG\r\n\x1a\n"), raw[:8])
}

func TestPlotCommandsEmpty(t *testing.T) {
	err := PlotCommands(&v1.RunData{}, filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, ErrNoTicks)
}
