package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/ghuser/showcase/products"

// ProductMetrics holds the counters recorded by the product services.
// A nil *ProductMetrics records nothing.
type ProductMetrics struct {
	submissions metric.Int64Counter
	votes       metric.Int64Counter
	transitions metric.Int64Counter
}

// NewProductMetrics registers the product instruments on mp.
// Pass nil to use the global provider installed by Setup.
func NewProductMetrics(mp metric.MeterProvider) (*ProductMetrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter(meterName)

	submissions, err := meter.Int64Counter("showcase.product.submissions",
		metric.WithDescription("Product submissions by outcome"))
	if err != nil {
		return nil, fmt.Errorf("submissions counter: %w", err)
	}
	votes, err := meter.Int64Counter("showcase.product.votes",
		metric.WithDescription("Votes cast by direction"))
	if err != nil {
		return nil, fmt.Errorf("votes counter: %w", err)
	}
	transitions, err := meter.Int64Counter("showcase.product.status_transitions",
		metric.WithDescription("Moderation status changes by target status and outcome"))
	if err != nil {
		return nil, fmt.Errorf("transitions counter: %w", err)
	}

	return &ProductMetrics{submissions: submissions, votes: votes, transitions: transitions}, nil
}

// Submission records one submission attempt. outcome is "ok" or a failure class.
func (m *ProductMetrics) Submission(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.submissions.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

// Vote records one vote. direction is "up" or "down".
func (m *ProductMetrics) Vote(ctx context.Context, direction string) {
	if m == nil {
		return
	}
	m.votes.Add(ctx, 1, metric.WithAttributes(attribute.String("direction", direction)))
}

// Transition records one moderation status change.
func (m *ProductMetrics) Transition(ctx context.Context, status string, ok bool) {
	if m == nil {
		return
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
		attribute.Bool("ok", ok),
	))
}
