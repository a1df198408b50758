package controller

import (
	"context"
	"fmt"

	"github.com/nath88d/CC7711-Projeto-Robos/pkg/core"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/nath88d/CC7711-Projeto-Robos/internal/controller"

type instruments struct {
	ticks         metric.Int64Counter
	alerts        metric.Int64Counter
	stuck         metric.Int64Counter
	perturbations metric.Int64Counter
}

// newInstruments uses the global meter provider, a no-op unless one was installed.
func newInstruments() (*instruments, error) {
	m := otel.Meter(instrumentationName)
	inst := &instruments{}
	var err error

	if inst.ticks, err = m.Int64Counter("controller.ticks",
		metric.WithDescription("Control loop iterations")); err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}
	if inst.alerts, err = m.Int64Counter("controller.alerts",
		metric.WithDescription("Transitions into alert mode")); err != nil {
		return nil, fmt.Errorf("creating alerts counter: %w", err)
	}
	if inst.stuck, err = m.Int64Counter("controller.stuck_recoveries",
		metric.WithDescription("Ticks where the reverse maneuver replaced navigation")); err != nil {
		return nil, fmt.Errorf("creating stuck counter: %w", err)
	}
	if inst.perturbations, err = m.Int64Counter("controller.perturbations",
		metric.WithDescription("Ticks with an injected exploratory turn")); err != nil {
		return nil, fmt.Errorf("creating perturbation counter: %w", err)
	}

	return inst, nil
}

func (i *instruments) observe(rec core.TickRecord) {
	ctx := context.Background()
	i.ticks.Add(ctx, 1, metric.WithAttributes(attribute.String("mode", rec.Mode.String())))
	if rec.Stuck {
		i.stuck.Add(ctx, 1)
	}
	if rec.Perturbed {
		i.perturbations.Add(ctx, 1)
	}
}
