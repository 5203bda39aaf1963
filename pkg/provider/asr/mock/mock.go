// Package mock provides a test double for the asr.Provider interface.
//
// Use Provider in unit tests and in mock mode, where the /asr endpoint must
// answer without a live transcription backend.
package mock

import (
	"context"
	"sync"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
)

// Call records a single invocation of Transcribe.
type Call struct {
	// Ctx is the context passed to Transcribe.
	Ctx context.Context
	// Req is the Request passed to Transcribe.
	Req asr.Request
}

// Provider is a mock implementation of asr.Provider.
// Zero values for response fields cause Transcribe to return nil, nil.
// Set Err to inject an error.
type Provider struct {
	mu sync.Mutex

	// Result is returned by Transcribe. May be nil (returns nil, nil).
	Result *asr.Result

	// Err, if non-nil, is returned as the error from Transcribe.
	Err error

	// Calls records every invocation of Transcribe in order.
	Calls []Call
}

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Name implements asr.Provider.
func (p *Provider) Name() string { return "mock" }

// Transcribe implements asr.Provider. It records the call and returns the
// configured Result and Err.
func (p *Provider) Transcribe(ctx context.Context, req asr.Request) (*asr.Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Calls = append(p.Calls, Call{Ctx: ctx, Req: req})
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Result, nil
}
