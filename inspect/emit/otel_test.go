package emit

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// attributeMap flattens span attributes into a lookup map.
func attributeMap(attrs []attribute.KeyValue) map[string]interface{} {
	out := make(map[string]interface{}, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

// TestOTelEmitter_Emit verifies a reject event becomes an error span with
// gateway attributes.
func TestOTelEmitter_Emit(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(otel.Tracer("test"))

	emitter.Emit(Event{
		RequestID: "req-001",
		Path:      "/submit",
		Remote:    "10.0.0.1",
		Msg:       MsgReject,
		Meta: map[string]interface{}{
			"kind":       "xss_suspected",
			"body_bytes": 27,
		},
	})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}

	span := spans[0]
	if span.Name != MsgReject {
		t.Errorf("span name = %q, want %q", span.Name, MsgReject)
	}
	if span.Status.Code != codes.Error {
		t.Errorf("status = %v, want error", span.Status.Code)
	}

	attrs := attributeMap(span.Attributes)
	if got := attrs["gatewall.request_id"]; got != "req-001" {
		t.Errorf("request_id = %v, want %q", got, "req-001")
	}
	if got := attrs["gatewall.path"]; got != "/submit" {
		t.Errorf("path = %v, want %q", got, "/submit")
	}
	if got := attrs["gatewall.kind"]; got != "xss_suspected" {
		t.Errorf("kind = %v, want %q", got, "xss_suspected")
	}
	if got := attrs["gatewall.body_bytes"]; got != int64(27) {
		t.Errorf("body_bytes = %v, want 27", got)
	}
}

// TestOTelEmitter_AcceptHasNoErrorStatus verifies accept events stay unset.
func TestOTelEmitter_AcceptHasNoErrorStatus(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(otel.Tracer("test"))
	emitter.Emit(Event{RequestID: "req-ok", Msg: MsgAccept})

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code == codes.Error {
		t.Errorf("accept span carries error status")
	}
}

// TestOTelEmitter_Flush verifies Flush succeeds against the SDK provider.
func TestOTelEmitter_Flush(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	otel.SetTracerProvider(tp)
	defer func() { _ = tp.Shutdown(context.Background()) }()

	emitter := NewOTelEmitter(otel.Tracer("test"))
	if err := emitter.Flush(context.Background()); err != nil {
		t.Fatalf("Flush failed: %v", err)
	}
}
