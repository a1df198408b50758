package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nath88d/CC7711-Projeto-Robos/internal/arena"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(body), 0644))
	return dir
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := writeConfig(t, `{
		"logLevel": "debug",
		"controller": { "trackedPrefix": "BOX" },
		"db": { "host": "10.0.0.1", "port": "5433" }
	}`)

	require.NoError(t, Load(dir))

	assert.Equal(t, "debug", viper.GetString("logLevel"))
	assert.Equal(t, "BOX", viper.GetString("controller.trackedPrefix"))
	assert.Equal(t, "10.0.0.1", viper.GetString("db.host"))
	assert.Equal(t, "5433", viper.GetString("db.port"))
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	require.NoError(t, Load(writeConfig(t, `{}`)))

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "./boxguardlogs", viper.GetString("logsDir"))
	assert.Equal(t, "CAIXA", viper.GetString("controller.trackedPrefix"))
	assert.Equal(t, "memory", viper.GetString("storage.type"))
	assert.Equal(t, "./recordings", viper.GetString("storage.memory.outputDir"))
	assert.Equal(t, true, viper.GetBool("storage.memory.compressOutput"))
	assert.Equal(t, "3m", viper.GetString("storage.sqlite.dumpInterval"))
	assert.Equal(t, "localhost", viper.GetString("db.host"))
	assert.Equal(t, "boxguard", viper.GetString("db.database"))
	assert.Equal(t, false, viper.GetBool("influx.enabled"))
	assert.Equal(t, "robot_telemetry", viper.GetString("influx.bucket"))
	assert.Equal(t, false, viper.GetBool("graylog.enabled"))
	assert.Equal(t, "localhost:12201", viper.GetString("graylog.address"))
	assert.Equal(t, false, viper.GetBool("otel.enabled"))
	assert.Equal(t, "boxguard", viper.GetString("otel.serviceName"))
	assert.Equal(t, true, viper.GetBool("status.enabled"))
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load("/nonexistent/path")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
	assert.True(t, IsNotFound(err))

	// Defaults are still usable.
	s, err := Current()
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Storage.Type)
}

func TestCurrent_Defaults(t *testing.T) {
	t.Cleanup(viper.Reset)
	require.NoError(t, Load(writeConfig(t, `{}`)))

	s, err := Current()
	require.NoError(t, err)

	assert.Equal(t, 3*time.Minute, s.Storage.SQLite.DumpInterval)
	assert.Equal(t, 10*time.Second, s.OTel.ExportInterval)
	assert.Equal(t, time.Second, s.Status.Interval)
	assert.EqualValues(t, 2000, s.Arena.MaxTicks)

	want := arena.DefaultConfig()
	if diff := cmp.Diff(want.Boxes, s.Arena.Boxes); diff != "" {
		t.Errorf("default boxes mismatch (-want +got):\n%s", diff)
	}
}

func TestCurrent_Override(t *testing.T) {
	t.Cleanup(viper.Reset)
	dir := writeConfig(t, `{
		"controller": { "seed": 42 },
		"storage": {
			"type": "sqlite",
			"memory": { "outputDir": "/tmp/out", "compressOutput": false },
			"sqlite": { "dumpInterval": "10m" }
		},
		"arena": {
			"width": 2,
			"boxes": [ { "name": "CAIXA01", "x": 0.5, "z": -0.5, "size": 0.2 } ],
			"disturbances": [ { "tick": 40, "box": "CAIXA01", "dx": 0.02 } ]
		}
	}`)
	require.NoError(t, Load(dir))

	s, err := Current()
	require.NoError(t, err)

	assert.EqualValues(t, 42, s.Controller.Seed)
	assert.Equal(t, "sqlite", s.Storage.Type)
	assert.Equal(t, "/tmp/out", s.Storage.Memory.OutputDir)
	assert.Equal(t, false, s.Storage.Memory.CompressOutput)
	assert.Equal(t, 10*time.Minute, s.Storage.SQLite.DumpInterval)
	assert.Equal(t, 2.0, s.Arena.Width)
	assert.Equal(t, 1.0, s.Arena.Depth)
	assert.Equal(t, []arena.BoxConfig{{Name: "CAIXA01", X: 0.5, Z: -0.5, Size: 0.2}}, s.Arena.Boxes)
	assert.Equal(t, []arena.Disturbance{{Tick: 40, Box: "CAIXA01", DX: 0.02}}, s.Arena.Disturbances)
}

func TestCurrent_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"log level", `{"logLevel": "loud"}`},
		{"storage type", `{"storage": {"type": "s3"}}`},
		{"arena width", `{"arena": {"width": 0}}`},
		{"unnamed box", `{"arena": {"boxes": [{"x": 1}]}}`},
		{"empty prefix", `{"controller": {"trackedPrefix": ""}}`},
		{"graylog without address", `{"graylog": {"enabled": true, "address": ""}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Cleanup(viper.Reset)
			require.NoError(t, Load(writeConfig(t, tt.body)))

			_, err := Current()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}
}
