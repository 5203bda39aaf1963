// Package tesseract implements the ocr.Engine contract with the gosseract
// client over a local Tesseract installation.
package tesseract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr"
)

// Engine recognizes text via Tesseract. A fresh gosseract client is created
// per call; the client is not safe for concurrent use.
type Engine struct {
	clientFactory func() *gosseract.Client
	tessdataDir   string
}

var _ ocr.Engine = (*Engine)(nil)

// Option is a functional option for Engine.
type Option func(*Engine)

// WithTessdataDir points the engine at a non-default trained-data directory.
func WithTessdataDir(dir string) Option {
	return func(e *Engine) {
		e.tessdataDir = dir
	}
}

// New constructs a Tesseract-backed OCR engine.
func New(opts ...Option) *Engine {
	e := &Engine{clientFactory: gosseract.NewClient}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Name implements ocr.Engine.
func (e *Engine) Name() string { return "tesseract" }

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}

	c := e.clientFactory()
	defer c.Close()

	if e.tessdataDir != "" {
		if err := c.SetTessdataPrefix(e.tessdataDir); err != nil {
			return ocr.Result{}, fmt.Errorf("tesseract: set tessdata prefix: %w", err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract: set image: %w", err)
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("tesseract: set languages: %w", err)
		}
	}
	if in.PageSegMode > 0 {
		if err := c.SetVariable(gosseract.SettableVariable("tessedit_pageseg_mode"), strconv.Itoa(in.PageSegMode)); err != nil {
			return ocr.Result{}, fmt.Errorf("tesseract: set page segmentation mode: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("tesseract: recognize text: %w", err)
	}

	return ocr.Result{
		Text:       strings.TrimSpace(text),
		Confidence: meanConfidence(c),
	}, nil
}

// meanConfidence averages per-word confidences into a 0-1 score.
func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}
