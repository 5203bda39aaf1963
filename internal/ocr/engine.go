// Package ocr extracts text from page photos. An Engine wraps one OCR
// backend; Service adds the preprocessing pipeline and a bounded admission
// gate so concurrent recognition jobs cannot exhaust the host.
package ocr

import "context"

// Input encapsulates a single image submitted for OCR.
type Input struct {
	// Image is the encoded image payload (PNG or JPEG).
	Image []byte
	// Languages is a list of trained-data hints (e.g., "pol", "eng").
	Languages []string
	// PageSegMode is the Tesseract page segmentation mode; zero keeps the
	// engine default.
	PageSegMode int
}

// Result captures OCR output for a single input image.
type Result struct {
	// Text is the linearized recognized text.
	Text string
	// Confidence is the mean per-word confidence in [0,1]; zero when the
	// engine reports none.
	Confidence float64
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
