// Package mock provides a mock implementation of the tts.Provider interface
// for testing.
package mock

import (
	"context"
	"sync"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts"
)

// Call records a single Synthesize invocation.
type Call struct {
	Text    string
	VoiceID string
}

// Provider is a mock tts.Provider. Configure Audio and Err before use;
// Calls records every Synthesize invocation.
type Provider struct {
	ProviderName string
	Audio        []byte
	Err          error

	mu    sync.Mutex
	calls []Call
}

var _ tts.Provider = (*Provider)(nil)

// Name implements tts.Provider.
func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "mock"
	}
	return p.ProviderName
}

// Synthesize implements tts.Provider. It records the call and returns the
// configured Audio or Err.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	p.mu.Lock()
	p.calls = append(p.calls, Call{Text: text, VoiceID: voiceID})
	p.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Audio, nil
}

// Calls returns a copy of all recorded invocations.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}
