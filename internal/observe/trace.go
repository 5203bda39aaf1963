package observe

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// tracerName is the instrumentation scope for spans started by this package.
const tracerName = "github.com/tomekkedziera-maker/poczytajmy-backend"

// tracer returns the backend tracer from the globally registered provider.
func tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// CorrelationID returns the identifier clients quote when reporting a failed
// request. It is the trace ID of the active span, so a support report can be
// matched directly against server logs and exported spans. Empty when ctx
// carries no recording span.
func CorrelationID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// Logger returns the default slog logger stamped with the trace and span IDs
// from ctx, so log lines written deep in a handler can be tied back to the
// request's X-Correlation-ID. Without an active span it is just
// [slog.Default].
func Logger(ctx context.Context) *slog.Logger {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return slog.Default()
	}
	return slog.Default().With(
		slog.String("trace_id", sc.TraceID().String()),
		slog.String("span_id", sc.SpanID().String()),
	)
}
