// Package mock provides a mock implementation of the ocr.Engine interface
// for testing.
package mock

import (
	"context"
	"sync"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr"
)

// Engine is a mock ocr.Engine. Configure Result and Err before use; Calls
// records every Recognize invocation.
type Engine struct {
	EngineName string
	Result     ocr.Result
	Err        error

	// Block, when non-nil, is waited on before returning; used to hold jobs
	// in flight for admission-gate tests.
	Block chan struct{}

	mu    sync.Mutex
	calls []ocr.Input
}

var _ ocr.Engine = (*Engine)(nil)

// Name implements ocr.Engine.
func (e *Engine) Name() string {
	if e.EngineName == "" {
		return "mock"
	}
	return e.EngineName
}

// Recognize implements ocr.Engine.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	e.mu.Lock()
	e.calls = append(e.calls, in)
	e.mu.Unlock()

	if e.Block != nil {
		select {
		case <-e.Block:
		case <-ctx.Done():
			return ocr.Result{}, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return ocr.Result{}, err
	}
	if e.Err != nil {
		return ocr.Result{}, e.Err
	}
	return e.Result, nil
}

// CallCount returns the number of recorded invocations.
func (e *Engine) CallCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.calls)
}

// Calls returns a copy of all recorded inputs.
func (e *Engine) Calls() []ocr.Input {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]ocr.Input, len(e.calls))
	copy(out, e.calls)
	return out
}
