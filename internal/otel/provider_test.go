package otel

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestDisabledProviderIsNoop(t *testing.T) {
	prev := otel.GetMeterProvider()
	p, err := New(Config{Enabled: false})
	require.NoError(t, err)

	assert.False(t, p.Enabled())
	assert.Equal(t, prev, otel.GetMeterProvider())
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestEnabledRequiresWriter(t *testing.T) {
	_, err := New(Config{Enabled: true, ServiceName: "boxguard"})
	assert.Error(t, err)
}

func TestEnabledExportsToWriter(t *testing.T) {
	prev := otel.GetMeterProvider()
	t.Cleanup(func() { otel.SetMeterProvider(prev) })

	var buf bytes.Buffer
	p, err := New(Config{Enabled: true, ServiceName: "boxguard-test", MetricWriter: &buf})
	require.NoError(t, err)
	assert.True(t, p.Enabled())

	counter, err := otel.Meter("provider_test").Int64Counter("controller.ticks")
	require.NoError(t, err)
	counter.Add(context.Background(), 3)

	require.NoError(t, p.Shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "controller.ticks")
	assert.Contains(t, out, "boxguard-test")
}
