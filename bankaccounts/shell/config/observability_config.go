package config

import (
	"context"
	"errors"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/ledgerkit/bankaccounts-eventstore-go/eventstore/oteladapters"
)

// ObservabilityProviders holds the OpenTelemetry providers of the process.
type ObservabilityProviders struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	MetricReader   *sdkmetric.ManualReader
	Resource       *resource.Resource
	serviceName    string
}

// NewObservabilityProviders creates OpenTelemetry providers and registers them globally.
//
// Spans are exported over OTLP/HTTP if OTEL_EXPORTER_OTLP_ENDPOINT is set, else to w if
// TRACING_STDOUT is true, else they are only recorded. Metrics are kept in a manual reader
// that the caller collects from.
func NewObservabilityProviders(
	ctx context.Context,
	cfg Config,
	serviceName string,
	serviceVersion string,
	w io.Writer,
) (*ObservabilityProviders, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceOptions := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}

	exporter, err := newSpanExporter(ctx, cfg, w)
	if err != nil {
		return nil, err
	}

	if exporter != nil {
		traceOptions = append(traceOptions, sdktrace.WithBatcher(exporter))
	}

	tracerProvider := sdktrace.NewTracerProvider(traceOptions...)

	metricReader := sdkmetric.NewManualReader()
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(metricReader),
		sdkmetric.WithResource(res),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetMeterProvider(meterProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return &ObservabilityProviders{
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
		MetricReader:   metricReader,
		Resource:       res,
		serviceName:    serviceName,
	}, nil
}

func newSpanExporter(ctx context.Context, cfg Config, w io.Writer) (sdktrace.SpanExporter, error) {
	switch {
	case cfg.OTLPEndpoint != "":
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(cfg.OTLPEndpoint))
	case cfg.TracingStdout:
		return stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	default:
		return nil, nil //nolint:nilnil
	}
}

// TracingCollector returns a tracing collector for the event store and the ledger.
func (p *ObservabilityProviders) TracingCollector() *oteladapters.TracingCollector {
	return oteladapters.NewTracingCollector(p.TracerProvider.Tracer(p.serviceName))
}

// MetricsCollector returns a metrics collector for the event store and the ledger.
func (p *ObservabilityProviders) MetricsCollector() *oteladapters.MetricsCollector {
	return oteladapters.NewMetricsCollector(p.MeterProvider.Meter(p.serviceName))
}

// Shutdown flushes pending spans and shuts the providers down.
func (p *ObservabilityProviders) Shutdown(ctx context.Context) error {
	return errors.Join(
		p.TracerProvider.Shutdown(ctx),
		p.MeterProvider.Shutdown(ctx),
	)
}
