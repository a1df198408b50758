// internal/storage/memory/export_test.go
package memory

import (
	"compress/gzip"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nath88d/CC7711-Projeto-Robos/internal/config"
	v1 "github.com/nath88d/CC7711-Projeto-Robos/internal/storage/memory/export/v1"
	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"
)

func recordSampleRun(t *testing.T, b *Backend) core.RunSummary {
	t.Helper()
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	_ = b.RecordTick(&core.TickRecord{
		RunID: "run-1", Tick: 1, Time: start,
		Sensors: core.SensorReading{100, 0, 0, 0, 0, 0},
		Command: core.VelocityPair{Left: 1.2, Right: 1.4},
	})
	_ = b.RecordTick(&core.TickRecord{
		RunID: "run-1", Tick: 2, Time: start.Add(128 * time.Millisecond),
		Mode:         core.ModeAlert,
		Command:      core.VelocityPair{Left: 6.28, Right: -6.28},
		IndicatorSet: true, Indicator: core.ColorRed,
	})
	_ = b.RecordAlert(&core.AlertEvent{RunID: "run-1", Tick: 2, Object: "CAIXA01", DX: 0.02})

	summary := core.RunSummary{
		EndTime:   start.Add(time.Second),
		Ticks:     2,
		Alerted:   true,
		AlertTick: 2,
	}
	if err := b.EndRun(summary); err != nil {
		t.Fatalf("EndRun failed: %v", err)
	}
	return summary
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	b := startedBackend(t, config.MemoryConfig{OutputDir: dir})
	b.SetVersion("1.2.3")
	recordSampleRun(t, b)

	path := b.GetExportedFilePath()
	if want := filepath.Join(dir, "run-1_20260301_120000.json"); path != want {
		t.Fatalf("export path = %s, want %s", path, want)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read export: %v", err)
	}
	var export v1.Export
	if err := json.Unmarshal(raw, &export); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if export.ExtensionVersion != "1.2.3" {
		t.Errorf("extensionVersion = %q", export.ExtensionVersion)
	}
	if len(export.Frames) != 2 {
		t.Errorf("expected 2 frames, got %d", len(export.Frames))
	}
	if export.Alert == nil || export.Alert.Object != "CAIXA01" {
		t.Errorf("unexpected alert %+v", export.Alert)
	}
}

func TestExportGzip(t *testing.T) {
	dir := t.TempDir()
	b := startedBackend(t, config.MemoryConfig{OutputDir: dir, CompressOutput: true})
	recordSampleRun(t, b)

	path := b.GetExportedFilePath()
	if !strings.HasSuffix(path, ".json.gz") {
		t.Fatalf("expected .json.gz export, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	gz, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("export is not gzip: %v", err)
	}
	var export v1.Export
	if err := json.NewDecoder(gz).Decode(&export); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if export.RunID != "run-1" {
		t.Errorf("runId = %q", export.RunID)
	}
}

func TestLoadExport(t *testing.T) {
	for _, compress := range []bool{false, true} {
		dir := t.TempDir()
		b := startedBackend(t, config.MemoryConfig{OutputDir: dir, CompressOutput: compress})
		summary := recordSampleRun(t, b)

		data, err := LoadExport(b.GetExportedFilePath())
		if err != nil {
			t.Fatalf("compress=%v: LoadExport failed: %v", compress, err)
		}
		if data.Summary != summary {
			t.Errorf("compress=%v: summary = %+v, want %+v", compress, data.Summary, summary)
		}
		if len(data.Ticks) != 2 {
			t.Fatalf("compress=%v: expected 2 ticks, got %d", compress, len(data.Ticks))
		}
		if !data.Ticks[1].IndicatorSet || data.Ticks[1].Indicator != core.ColorRed {
			t.Errorf("compress=%v: indicator lost: %+v", compress, data.Ticks[1])
		}
		if data.Alert == nil || data.Alert.DX != 0.02 {
			t.Errorf("compress=%v: alert = %+v", compress, data.Alert)
		}
	}
}

func TestLoadExportErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadExport(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := LoadExport(bad); err == nil {
		t.Error("expected error for invalid JSON")
	}

	notGzip := filepath.Join(dir, "plain.json.gz")
	_ = os.WriteFile(notGzip, []byte(`{"formatVersion":1}`), 0644)
	if _, err := LoadExport(notGzip); err == nil {
		t.Error("expected error for non-gzip .gz file")
	}
}
