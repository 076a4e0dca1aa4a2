package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"celebmint/core/events"
)

type namedEvent string

func (e namedEvent) EventType() string { return string(e) }

func TestModuleMetricsObserve(t *testing.T) {
	m := ModuleMetrics()
	okBefore := testutil.ToFloat64(m.requests.WithLabelValues("api-test", "GET /v1/x", "success"))
	errBefore := testutil.ToFloat64(m.errors.WithLabelValues("api-test", "GET /v1/x", "404"))

	m.Observe("api-test", "GET /v1/x", 200, time.Millisecond)
	m.Observe("api-test", "GET /v1/x", 404, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("api-test", "GET /v1/x", "success")) - okBefore; got != 1 {
		t.Fatalf("success delta: got %v", got)
	}
	if got := testutil.ToFloat64(m.errors.WithLabelValues("api-test", "GET /v1/x", "404")) - errBefore; got != 1 {
		t.Fatalf("404 delta: got %v", got)
	}

	throttleBefore := testutil.ToFloat64(m.throttles.WithLabelValues("api-test", "unspecified"))
	m.RecordThrottle("api-test", "")
	if got := testutil.ToFloat64(m.throttles.WithLabelValues("api-test", "unspecified")) - throttleBefore; got != 1 {
		t.Fatalf("throttle delta: got %v", got)
	}
}

func TestEventMetricsNormalizeType(t *testing.T) {
	m := Events()
	before := testutil.ToFloat64(m.emitted.WithLabelValues("asset.transfer"))
	var emitter events.Emitter = m
	emitter.Emit(namedEvent(" Asset.Transfer "))
	emitter.Emit(nil)
	if got := testutil.ToFloat64(m.emitted.WithLabelValues("asset.transfer")) - before; got != 1 {
		t.Fatalf("asset.transfer delta: got %v", got)
	}
}
