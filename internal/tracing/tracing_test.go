package tracing

import (
	"context"
	"net/http"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

// The tests below replace the global provider, so they do not run in parallel.

func TestSetupWithoutEndpointRecordsSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp, shutdown, err := Setup(context.Background(), Options{
		ServiceName:   "bigcalc-test",
		Version:       "v0.0.1",
		SpanProcessor: recorder,
	})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	_, span := Tracer().Start(context.Background(), "evaluate")
	span.SetAttributes(attribute.String("bigcalc.op", "+"))
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("recorded %d spans, want 1", len(ended))
	}
	if ended[0].Name() != "evaluate" {
		t.Errorf("span name = %q", ended[0].Name())
	}
	if got := ended[0].InstrumentationScope().Name; got != InstrumentationName {
		t.Errorf("scope = %q, want %q", got, InstrumentationName)
	}

	found := false
	for _, kv := range ended[0].Resource().Attributes() {
		if kv.Key == semconv.ServiceNameKey && kv.Value.AsString() == "bigcalc-test" {
			found = true
		}
	}
	if !found {
		t.Error("resource should carry service.name")
	}
	if tp == nil {
		t.Error("Setup returned a nil provider")
	}
}

func TestPropagationRoundTrip(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	_, shutdown, err := Setup(context.Background(), Options{SpanProcessor: recorder})
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	t.Cleanup(func() { _ = shutdown(context.Background()) })

	ctx, parent := Tracer().Start(context.Background(), "client")
	h := http.Header{}
	InjectHTTP(ctx, h)
	parent.End()

	if h.Get("traceparent") == "" {
		t.Fatal("traceparent header was not injected")
	}

	remote := ExtractHTTP(context.Background(), h)
	_, child := Tracer().Start(remote, "server")
	child.End()

	spans := recorder.Ended()
	if len(spans) != 2 {
		t.Fatalf("recorded %d spans, want 2", len(spans))
	}
	if spans[1].Parent().SpanID() != spans[0].SpanContext().SpanID() {
		t.Error("server span should be a child of the client span")
	}
}
