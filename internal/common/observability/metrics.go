package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records HTTP request metrics through OpenTelemetry. The
// Prometheus exporter registers with the default registry, so /metrics
// serves these next to the chat counters.
type Observability struct {
	meterProvider   *metric.MeterProvider
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
	inFlight        otelmetric.Int64UpDownCounter
}

// New wires the Prometheus exporter and installs the global meter provider.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}
	o, err := NewWithReader(serviceName, exporter)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(o.meterProvider)
	return o, nil
}

// NewWithReader builds instruments on a private provider fed to reader.
func NewWithReader(serviceName string, reader metric.Reader) (*Observability, error) {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	meter := provider.Meter(serviceName)

	requestCounter, err := meter.Int64Counter(
		"http.server.requests",
		otelmetric.WithDescription("Number of HTTP requests served"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"http.server.duration",
		otelmetric.WithDescription("HTTP request duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	inFlight, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		otelmetric.WithDescription("Requests currently being served"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:   provider,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		inFlight:        inFlight,
	}, nil
}

// RequestStarted marks a request in flight; call the returned func when
// the response is written.
func (o *Observability) RequestStarted(ctx context.Context, route string) func(status int, duration time.Duration) {
	if o == nil {
		return func(int, time.Duration) {}
	}

	routeAttr := attribute.String("route", route)
	o.inFlight.Add(ctx, 1, otelmetric.WithAttributes(routeAttr))

	return func(status int, duration time.Duration) {
		attrs := otelmetric.WithAttributes(routeAttr, attribute.Int("status", status))
		o.inFlight.Add(ctx, -1, otelmetric.WithAttributes(routeAttr))
		o.requestCounter.Add(ctx, 1, attrs)
		o.requestDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	}
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
