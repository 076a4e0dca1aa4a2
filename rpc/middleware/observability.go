package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"celebmint/observability"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Observe records request metrics for module under the matched chi route
// pattern and annotates the active span.
func Observe(module string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r)
			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			span := trace.SpanFromContext(r.Context())
			span.SetAttributes(
				attribute.String("celebmint.module", module),
				attribute.String("http.route", route),
				attribute.Int("http.status_code", recorder.status),
			)
			observability.ModuleMetrics().Observe(module, r.Method+" "+route, recorder.status, time.Since(start))
		})
	}
}
