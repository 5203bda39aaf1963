package observe

import (
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// capabilityFor maps a request path to the capability it exercises. The API
// surface is a fixed handful of endpoints, so a literal match is enough; the
// health, metrics, and static routes all fall under "meta".
func capabilityFor(path string) string {
	switch {
	case path == "/asr":
		return "asr"
	case path == "/tts":
		return "tts"
	case path == "/ocr":
		return "ocr"
	case strings.HasPrefix(path, "/agent/") || path == "/generate-text":
		return "generation"
	default:
		return "meta"
	}
}

// responseTap captures the status code and body size written by the handler
// so the middleware can label the span and metrics after the fact.
type responseTap struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (t *responseTap) WriteHeader(code int) {
	t.status = code
	t.ResponseWriter.WriteHeader(code)
}

func (t *responseTap) Write(p []byte) (int, error) {
	n, err := t.ResponseWriter.Write(p)
	t.bytes += n
	return n, err
}

// Middleware wraps the API mux with the per-request telemetry the backend
// exposes: a server span carrying the endpoint's capability, the
// X-Correlation-ID header the mobile app surfaces in its error screens, and
// the [Metrics.HTTPRequestDuration] histogram labelled by method, path,
// capability, and status. Incoming W3C trace context is honoured so requests
// relayed through another service keep their trace ID.
func Middleware(m *Metrics) func(http.Handler) http.Handler {
	prop := propagation.TraceContext{}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			capability := capabilityFor(r.URL.Path)

			ctx := prop.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
			ctx, span := tracer().Start(ctx, r.Method+" "+r.URL.Path,
				trace.WithSpanKind(trace.SpanKindServer),
				trace.WithAttributes(
					semconv.HTTPRequestMethodKey.String(r.Method),
					semconv.URLPath(r.URL.Path),
					attribute.String("capability", capability),
				),
			)
			defer span.End()

			if cid := CorrelationID(ctx); cid != "" {
				w.Header().Set("X-Correlation-ID", cid)
			}
			prop.Inject(ctx, propagation.HeaderCarrier(w.Header()))

			tap := &responseTap{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(tap, r.WithContext(ctx))

			elapsed := time.Since(start)
			m.HTTPRequestDuration.Record(ctx, elapsed.Seconds(),
				metric.WithAttributes(
					attribute.String("method", r.Method),
					attribute.String("path", r.URL.Path),
					attribute.String("capability", capability),
					attribute.Int("status", tap.status),
				),
			)

			span.SetAttributes(
				semconv.HTTPResponseStatusCode(tap.status),
				attribute.Int("http.response.body.size", tap.bytes),
			)
			if tap.status >= http.StatusInternalServerError {
				span.SetStatus(codes.Error, http.StatusText(tap.status))
			}

			Logger(ctx).Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"capability", capability,
				"status", tap.status,
				"duration", elapsed,
			)
		})
	}
}
