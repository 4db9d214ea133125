// SPDX-License-Identifier: Apache-2.0
// Package telemetry provides observability for the composition and
// dispatch engine.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics tracks composition, dispatch, and routing outcomes for
// production monitoring.
type EngineMetrics struct {
	// compositionCounter tracks role compositions by outcome
	compositionCounter metric.Int64Counter

	// dispatchCounter tracks tool dispatches by tool and outcome
	dispatchCounter metric.Int64Counter

	// routeCounter tracks router verdicts by selected candidate
	routeCounter metric.Int64Counter

	// compositionDuration tracks time spent composing agents
	compositionDuration metric.Float64Histogram
}

// NewEngineMetrics creates an engine metrics tracker with OTEL meters.
func NewEngineMetrics(ctx context.Context) (*EngineMetrics, error) {
	meter := otel.Meter("rolekit/engine")

	compositionCounter, err := meter.Int64Counter(
		"rolekit.compositions.total",
		metric.WithDescription("Role compositions by outcome"),
	)
	if err != nil {
		return nil, err
	}

	dispatchCounter, err := meter.Int64Counter(
		"rolekit.dispatches.total",
		metric.WithDescription("Tool dispatches by tool and outcome"),
	)
	if err != nil {
		return nil, err
	}

	routeCounter, err := meter.Int64Counter(
		"rolekit.routes.total",
		metric.WithDescription("Router verdicts by selected candidate"),
	)
	if err != nil {
		return nil, err
	}

	compositionDuration, err := meter.Float64Histogram(
		"rolekit.composition.duration",
		metric.WithDescription("Composition latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		compositionCounter:  compositionCounter,
		dispatchCounter:     dispatchCounter,
		routeCounter:        routeCounter,
		compositionDuration: compositionDuration,
	}, nil
}

// RecordComposition records one composition attempt.
func (em *EngineMetrics) RecordComposition(ctx context.Context, role string, seconds float64, err error) {
	if em == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("role", role),
		attribute.String("outcome", outcome),
	)
	em.compositionCounter.Add(ctx, 1, attrs)
	em.compositionDuration.Record(ctx, seconds, attrs)
}

// RecordDispatch records one tool dispatch.
func (em *EngineMetrics) RecordDispatch(ctx context.Context, toolName string, ok bool) {
	if em == nil {
		return
	}
	outcome := "failure"
	if ok {
		outcome = "success"
	}
	em.dispatchCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", toolName),
		attribute.String("outcome", outcome),
	))
}

// RecordRoute records one router verdict. An empty candidate means no
// applicable tool.
func (em *EngineMetrics) RecordRoute(ctx context.Context, candidate string) {
	if em == nil {
		return
	}
	if candidate == "" {
		candidate = "none"
	}
	em.routeCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("candidate", candidate),
	))
}
