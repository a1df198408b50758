package dispatcher

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nath88d/CC7711-Projeto-Robos/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}
