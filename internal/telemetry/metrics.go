package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/recruitify"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Provider request metrics
	ProviderRequestsTotal   metric.Int64Counter
	ProviderErrorsTotal     metric.Int64Counter
	ProviderRetriesTotal    metric.Int64Counter
	ProviderRequestDuration metric.Float64Histogram

	// Selection metrics
	SelectionChangesTotal metric.Int64Counter
	StaleResponsesTotal   metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
// Instruments are bound to the meter provider installed at first use, so call Init first.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.ProviderRequestsTotal, _ = meter.Int64Counter(
		"recruitify.provider.requests.total",
		metric.WithDescription("Total number of provider requests"),
		metric.WithUnit("{request}"),
	)

	m.ProviderErrorsTotal, _ = meter.Int64Counter(
		"recruitify.provider.errors.total",
		metric.WithDescription("Total number of failed provider requests"),
		metric.WithUnit("{error}"),
	)

	m.ProviderRetriesTotal, _ = meter.Int64Counter(
		"recruitify.provider.retries.total",
		metric.WithDescription("Total number of provider request retries"),
		metric.WithUnit("{retry}"),
	)

	m.ProviderRequestDuration, _ = meter.Float64Histogram(
		"recruitify.provider.request.duration",
		metric.WithDescription("Duration of provider requests including retries"),
		metric.WithUnit("ms"),
	)

	m.SelectionChangesTotal, _ = meter.Int64Counter(
		"recruitify.selection.changes.total",
		metric.WithDescription("Total number of organization and cycle selections"),
		metric.WithUnit("{change}"),
	)

	m.StaleResponsesTotal, _ = meter.Int64Counter(
		"recruitify.selection.stale_responses.total",
		metric.WithDescription("Total number of organization responses ignored as stale"),
		metric.WithUnit("{response}"),
	)

	return m
}
