// Package tracing configures OpenTelemetry tracing for bigcalc.
package tracing

import (
	"context"
	"fmt"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer used by every bigcalc component.
const InstrumentationName = "github.com/agbru/bigcalc"

// propagator is W3C trace-context plus baggage. It is used by ExtractHTTP
// and InjectHTTP whether or not Setup has installed it globally.
var propagator = propagation.NewCompositeTextMapPropagator(
	propagation.TraceContext{},
	propagation.Baggage{},
)

// Options configures Setup.
type Options struct {
	// Endpoint is an OTLP/gRPC collector address such as "localhost:4317".
	// Empty means spans are created but not exported.
	Endpoint    string
	ServiceName string
	Version     string
	// Insecure disables TLS towards the collector.
	Insecure bool
	// SpanProcessor is added alongside the exporter. Tests pass a
	// tracetest.SpanRecorder here.
	SpanProcessor sdktrace.SpanProcessor
}

// ShutdownFunc flushes and stops the provider.
type ShutdownFunc func(context.Context) error

// Setup builds a tracer provider, installs it as the global provider with
// W3C trace-context and baggage propagation, and returns it with its
// shutdown function.
func Setup(ctx context.Context, opts Options) (*sdktrace.TracerProvider, ShutdownFunc, error) {
	if opts.ServiceName == "" {
		opts.ServiceName = "bigcalc"
	}

	providerOpts := []sdktrace.TracerProviderOption{
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
			semconv.ServiceVersion(opts.Version),
		)),
	}

	if opts.Endpoint != "" {
		clientOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
		if opts.Insecure {
			clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
		}
		exporter, err := otlptracegrpc.New(ctx, clientOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("creating OTLP exporter for %s: %w", opts.Endpoint, err)
		}
		providerOpts = append(providerOpts, sdktrace.WithBatcher(exporter))
	}
	if opts.SpanProcessor != nil {
		providerOpts = append(providerOpts, sdktrace.WithSpanProcessor(opts.SpanProcessor))
	}

	tp := sdktrace.NewTracerProvider(providerOpts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagator)
	return tp, tp.Shutdown, nil
}

// Tracer returns the bigcalc tracer from the global provider.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// ExtractHTTP returns ctx enriched with the remote span context carried by
// the request headers, if any.
func ExtractHTTP(ctx context.Context, h http.Header) context.Context {
	return propagator.Extract(ctx, propagation.HeaderCarrier(h))
}

// InjectHTTP writes the span context of ctx into h.
func InjectHTTP(ctx context.Context, h http.Header) {
	propagator.Inject(ctx, propagation.HeaderCarrier(h))
}
