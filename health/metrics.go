package health

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// registryMetrics instruments status transitions via the OTel metric API.
type registryMetrics struct {
	transitions metric.Int64Counter
}

func newRegistryMetrics(meter metric.Meter) *registryMetrics {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("opswatch/health")
	}

	transitions, err := meter.Int64Counter(
		"health.transitions.total",
		metric.WithDescription("Total number of component status transitions recorded"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		// Instrument creation only fails on malformed names; fall back to
		// the no-op counter rather than failing registry construction.
		transitions, _ = noop.NewMeterProvider().Meter("opswatch/health").Int64Counter("health.transitions.total")
	}

	return &registryMetrics{transitions: transitions}
}

func (m *registryMetrics) recordTransition(component string, status Status) {
	m.transitions.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("status", status.String()),
	))
}
