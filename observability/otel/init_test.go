package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestInitRequiresServiceName(t *testing.T) {
	if _, err := Init(context.Background(), Config{}); err == nil {
		t.Fatalf("expected missing service name to be rejected")
	}
}

func TestInitDisabledIsNoop(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{ServiceName: "celebmintd"})
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
}

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc ,broken, =x,tenant=celeb")
	if len(got) != 2 || got["api-key"] != "abc" || got["tenant"] != "celeb" {
		t.Fatalf("unexpected headers: %v", got)
	}
}

func TestResourceCarriesDeploymentAttributes(t *testing.T) {
	res, err := newResource(Config{
		ServiceName: "celebmintd",
		Environment: "staging",
		Storage:     "bolt",
		Platform:    "0x00000000000000000000000000000000000000B2",
	})
	if err != nil {
		t.Fatalf("resource: %v", err)
	}
	want := map[string]string{
		"service.name":           "celebmintd",
		"service.namespace":      "celebmint",
		"deployment.environment": "staging",
		"celebmint.storage":      "bolt",
		"celebmint.platform":     "0x00000000000000000000000000000000000000b2",
	}
	got := map[string]string{}
	for _, kv := range res.Attributes() {
		got[string(kv.Key)] = kv.Value.Emit()
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("attribute %s = %q, want %q", key, got[key], value)
		}
	}
}

func TestLedgerTracerFollowsGlobalProvider(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	_, span := LedgerTracer().Start(context.Background(), "ledger.mint")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if got := ended[0].InstrumentationScope().Name; got != LedgerInstrumentation {
		t.Fatalf("scope = %q", got)
	}
}
