package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/norikae/norikae/internal/telemetry"

// ProviderMetrics holds metrics for upstream provider calls and the routes
// extracted from them.
type ProviderMetrics struct {
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	routesParsed    metric.Int64Counter
	routesSkipped   metric.Int64Counter
}

// NewProviderMetrics creates metrics for monitoring upstream provider calls.
func NewProviderMetrics() (*ProviderMetrics, error) {
	meter := otel.Meter(meterName)

	requestDuration, err := meter.Float64Histogram(
		"provider.request.duration",
		metric.WithDescription("Duration of provider requests in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestTotal, err := meter.Int64Counter(
		"provider.request.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	routesParsed, err := meter.Int64Counter(
		"routes.parsed",
		metric.WithDescription("Number of routes extracted from results pages"),
		metric.WithUnit("{route}"),
	)
	if err != nil {
		return nil, err
	}

	routesSkipped, err := meter.Int64Counter(
		"routes.skipped",
		metric.WithDescription("Number of route blocks that could not be extracted"),
		metric.WithUnit("{route}"),
	)
	if err != nil {
		return nil, err
	}

	return &ProviderMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		routesParsed:    routesParsed,
		routesSkipped:   routesSkipped,
	}, nil
}

// RecordRequest records metrics for a provider request.
func (m *ProviderMetrics) RecordRequest(provider, operation string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("provider.name", provider),
		attribute.String("provider.operation", operation),
	}

	if err != nil {
		attrs = append(attrs, attribute.Bool("error", true))
	}

	// Recorded on a background context so cancelled requests still count.
	ctx := context.Background()
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExtraction records how many route blocks of a page were kept and
// skipped.
func (m *ProviderMetrics) RecordExtraction(provider string, parsed, skipped int) {
	attrs := metric.WithAttributes(attribute.String("provider.name", provider))
	m.routesParsed.Add(context.Background(), int64(parsed), attrs)
	m.routesSkipped.Add(context.Background(), int64(skipped), attrs)
}
