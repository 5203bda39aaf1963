package observe

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// ── helpers ──────────────────────────────────────────────────────────────────

// installTestTracing swaps the global tracer provider for one backed by an
// in-memory exporter and restores it when the test finishes.
func installTestTracing(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	exp := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	orig := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(orig) })
	return exp
}

// newInstrumentedMux wires the middleware around a stub API mux and returns
// collectors for the metrics and spans it produces. The stub answers the
// routes the real server exposes with fixed statuses.
func newInstrumentedMux(t *testing.T) (http.Handler, *sdkmetric.ManualReader, *tracetest.InMemoryExporter) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	exp := installTestTracing(t)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /asr", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true,"text":"Ala ma kota i psa."}`))
	})
	mux.HandleFunc("POST /agent/generate-greeting", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
		w.Write([]byte(`{"ok":false,"error":"DEADLINE_EXCEEDED"}`))
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return Middleware(m)(mux), reader, exp
}

func requestDurationPoints(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.HistogramDataPoint[float64] {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	met := findMetric(rm, "poczytajmy.http.request.duration")
	if met == nil {
		t.Fatal("request duration histogram not found")
	}
	hist, ok := met.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("unexpected data type %T", met.Data)
	}
	return hist.DataPoints
}

func attrString(dp metricdata.HistogramDataPoint[float64], key string) string {
	for _, kv := range dp.Attributes.ToSlice() {
		if string(kv.Key) == key {
			return kv.Value.Emit()
		}
	}
	return ""
}

// ── tests ────────────────────────────────────────────────────────────────────

func TestMiddleware_LabelsCapability(t *testing.T) {
	handler, reader, _ := newInstrumentedMux(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/asr", nil))

	points := requestDurationPoints(t, reader)
	if len(points) != 1 {
		t.Fatalf("expected 1 histogram series, got %d", len(points))
	}
	dp := points[0]
	if got := attrString(dp, "capability"); got != "asr" {
		t.Errorf("capability attribute = %q, want %q", got, "asr")
	}
	if got := attrString(dp, "path"); got != "/asr" {
		t.Errorf("path attribute = %q, want %q", got, "/asr")
	}
	if got := attrString(dp, "status"); got != "200" {
		t.Errorf("status attribute = %q, want %q", got, "200")
	}
	if dp.Count != 1 {
		t.Errorf("sample count = %d, want 1", dp.Count)
	}
}

func TestMiddleware_HealthCountsAsMeta(t *testing.T) {
	handler, reader, _ := newInstrumentedMux(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	points := requestDurationPoints(t, reader)
	if len(points) != 1 {
		t.Fatalf("expected 1 histogram series, got %d", len(points))
	}
	if got := attrString(points[0], "capability"); got != "meta" {
		t.Errorf("capability attribute = %q, want %q", got, "meta")
	}
}

func TestMiddleware_CorrelationHeaderMatchesHandlerContext(t *testing.T) {
	installTestTracing(t)

	m, _ := newTestMetrics(t)
	var inHandler string
	wrapped := Middleware(m)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inHandler = CorrelationID(r.Context())
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest("POST", "/tts", nil))

	if inHandler == "" {
		t.Fatal("handler context carries no correlation ID")
	}
	if got := rec.Header().Get("X-Correlation-ID"); got != inHandler {
		t.Errorf("X-Correlation-ID = %q, handler saw %q", got, inHandler)
	}
}

func TestMiddleware_AdoptsUpstreamTrace(t *testing.T) {
	handler, _, _ := newInstrumentedMux(t)

	const upstream = "7ad6b7169203331c2a35c8f7d07b2e43"
	req := httptest.NewRequest("POST", "/asr", nil)
	req.Header.Set("traceparent", "00-"+upstream+"-00f067aa0ba902b7-01")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != upstream {
		t.Errorf("X-Correlation-ID = %q, want upstream trace ID %q", got, upstream)
	}
}

func TestMiddleware_GatewayTimeoutMarksSpanError(t *testing.T) {
	handler, _, exp := newInstrumentedMux(t)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/agent/generate-greeting", nil))

	spans := exp.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != "POST /agent/generate-greeting" {
		t.Errorf("span name = %q, want %q", span.Name, "POST /agent/generate-greeting")
	}
	if span.Status.Code != codes.Error {
		t.Errorf("span status = %v, want Error for a 504", span.Status.Code)
	}

	var status int64 = -1
	var body int64 = -1
	for _, a := range span.Attributes {
		switch string(a.Key) {
		case "http.response.status_code":
			status = a.Value.AsInt64()
		case "http.response.body.size":
			body = a.Value.AsInt64()
		case "capability":
			if a.Value.AsString() != "generation" {
				t.Errorf("capability attribute = %q, want %q", a.Value.AsString(), "generation")
			}
		}
	}
	if status != http.StatusGatewayTimeout {
		t.Errorf("status_code attribute = %d, want 504", status)
	}
	if body <= 0 {
		t.Errorf("body.size attribute = %d, want positive", body)
	}
}

func TestCapabilityFor(t *testing.T) {
	cases := map[string]string{
		"/asr":                     "asr",
		"/tts":                     "tts",
		"/ocr":                     "ocr",
		"/agent/generate-greeting": "generation",
		"/agent/motivate":          "generation",
		"/agent/generate-text":     "generation",
		"/generate-text":           "generation",
		"/healthz":                 "meta",
		"/readyz":                  "meta",
		"/metrics":                 "meta",
		"/":                        "meta",
	}
	for path, want := range cases {
		if got := capabilityFor(path); got != want {
			t.Errorf("capabilityFor(%q) = %q, want %q", path, got, want)
		}
	}
}
