package ocr

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/semaphore"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/imageprep"
)

// DefaultMaxConcurrent bounds simultaneous OCR jobs when none is configured.
// Tesseract is CPU and memory hungry; uncapped jobs can take down a small
// host.
const DefaultMaxConcurrent = 2

// Service runs the preprocessing pipeline and the OCR engine behind a
// weighted-semaphore admission gate. Safe for concurrent use.
type Service struct {
	engine    Engine
	prep      imageprep.Options
	languages []string
	psm       int
	gate      *semaphore.Weighted
	active    metric.Int64UpDownCounter
}

// Option configures a [Service].
type Option func(*Service)

// WithActiveJobsGauge publishes the number of jobs currently holding an
// admission slot to g. Waiting jobs are not counted.
func WithActiveJobsGauge(g metric.Int64UpDownCounter) Option {
	return func(s *Service) { s.active = g }
}

// NewService wraps engine with preprocessing and an admission gate of
// maxConcurrent slots (non-positive selects DefaultMaxConcurrent).
func NewService(engine Engine, prep imageprep.Options, languages []string, psm, maxConcurrent int, opts ...Option) *Service {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	s := &Service{
		engine:    engine,
		prep:      prep,
		languages: languages,
		psm:       psm,
		gate:      semaphore.NewWeighted(int64(maxConcurrent)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine returns the wrapped engine.
func (s *Service) Engine() Engine { return s.engine }

// Extract preprocesses the encoded image and recognizes its text. The call
// waits for an admission slot; cancellation of ctx aborts both the wait and
// the job.
func (s *Service) Extract(ctx context.Context, image []byte) (Result, error) {
	if err := s.gate.Acquire(ctx, 1); err != nil {
		return Result{}, fmt.Errorf("ocr: acquire job slot: %w", err)
	}
	defer s.gate.Release(1)

	if s.active != nil {
		s.active.Add(ctx, 1)
		defer s.active.Add(ctx, -1)
	}

	prepared, err := imageprep.Process(image, s.prep)
	if err != nil {
		return Result{}, err
	}

	return s.engine.Recognize(ctx, Input{
		Image:       prepared,
		Languages:   s.languages,
		PageSegMode: s.psm,
	})
}
