package ocr_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/imageprep"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr/mock"
)

func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 32, 32))
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 256)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func TestExtract_Success(t *testing.T) {
	t.Parallel()

	eng := &mock.Engine{Result: ocr.Result{Text: "Ala ma kota", Confidence: 0.93}}
	svc := ocr.NewService(eng, imageprep.Options{MaxWidth: 32}, []string{"pol"}, 6, 2)

	res, err := svc.Extract(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "Ala ma kota" {
		t.Errorf("expected recognized text, got %q", res.Text)
	}
	if res.Confidence != 0.93 {
		t.Errorf("expected confidence 0.93, got %f", res.Confidence)
	}

	calls := eng.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected 1 engine call, got %d", len(calls))
	}
	if len(calls[0].Languages) != 1 || calls[0].Languages[0] != "pol" {
		t.Errorf("expected language hint forwarded, got %v", calls[0].Languages)
	}
	if calls[0].PageSegMode != 6 {
		t.Errorf("expected PSM 6 forwarded, got %d", calls[0].PageSegMode)
	}
	if len(calls[0].Image) == 0 {
		t.Error("expected preprocessed image bytes forwarded")
	}
}

func TestExtract_InvalidImage(t *testing.T) {
	t.Parallel()

	eng := &mock.Engine{}
	svc := ocr.NewService(eng, imageprep.Options{}, nil, 0, 1)

	_, err := svc.Extract(context.Background(), []byte("not an image"))
	if err == nil {
		t.Fatal("expected preprocessing error")
	}
	if eng.CallCount() != 0 {
		t.Error("engine must not run when preprocessing fails")
	}
}

func TestExtract_EngineError(t *testing.T) {
	t.Parallel()

	engineErr := errors.New("tesseract exploded")
	eng := &mock.Engine{Err: engineErr}
	svc := ocr.NewService(eng, imageprep.Options{MaxWidth: 32}, nil, 0, 1)

	_, err := svc.Extract(context.Background(), testImage(t))
	if !errors.Is(err, engineErr) {
		t.Fatalf("expected engine error, got %v", err)
	}
}

func TestExtract_AdmissionGate(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	eng := &mock.Engine{Block: release, Result: ocr.Result{Text: "ok"}}
	svc := ocr.NewService(eng, imageprep.Options{MaxWidth: 32}, nil, 0, 1)

	img := testImage(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := svc.Extract(context.Background(), img); err != nil {
			t.Errorf("first job failed: %v", err)
		}
	}()

	// Wait for the first job to occupy the single slot.
	deadline := time.Now().Add(time.Second)
	for eng.CallCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first job never reached the engine")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// A second job must wait on the gate and fail once its context expires.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := svc.Extract(ctx, img); err == nil {
		t.Error("expected second job to time out waiting for a slot")
	}
	if n := eng.CallCount(); n != 1 {
		t.Errorf("gated job must not reach the engine, got %d calls", n)
	}

	close(release)
	wg.Wait()
}

// activeJobsValue collects the gauge and returns its current sum, or zero
// when no measurement exists yet.
func activeJobsValue(t *testing.T, reader *sdkmetric.ManualReader) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "ocr.active_jobs" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok || len(sum.DataPoints) == 0 {
				return 0
			}
			return sum.DataPoints[0].Value
		}
	}
	return 0
}

func TestExtract_ReportsActiveJobs(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()
	gauge, err := mp.Meter("test").Int64UpDownCounter("ocr.active_jobs")
	if err != nil {
		t.Fatalf("Int64UpDownCounter: %v", err)
	}

	release := make(chan struct{})
	eng := &mock.Engine{Block: release, Result: ocr.Result{Text: "ok"}}
	svc := ocr.NewService(eng, imageprep.Options{MaxWidth: 32}, nil, 0, 2,
		ocr.WithActiveJobsGauge(gauge))
	img := testImage(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := svc.Extract(context.Background(), img); err != nil {
			t.Errorf("Extract: %v", err)
		}
	}()

	// Once the engine sees the job, the slot is held and the gauge must
	// read one.
	deadline := time.Now().Add(time.Second)
	for eng.CallCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("job never reached the engine")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := activeJobsValue(t, reader); got != 1 {
		t.Errorf("active jobs while holding a slot = %d, want 1", got)
	}

	close(release)
	wg.Wait()
	if got := activeJobsValue(t, reader); got != 0 {
		t.Errorf("active jobs after completion = %d, want 0", got)
	}
}
