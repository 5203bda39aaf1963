// Package mock provides a test double for the chat.Provider interface.
//
// Use Provider in unit tests to feed controlled completions without a live
// LLM backend, and in mock mode to serve canned generation output. All fields
// are safe to set before calling any method; mutating them during a
// concurrent call is the caller's responsibility.
//
// Example:
//
//	p := &mock.Provider{Response: &chat.Response{Text: "Ala ma kota."}}
//	resp, err := p.Complete(ctx, req)
package mock

import (
	"context"
	"sync"
	"time"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
)

// Call records a single invocation of Complete.
type Call struct {
	// Ctx is the context passed to Complete.
	Ctx context.Context
	// Req is the Request passed to Complete.
	Req chat.Request
}

// Provider is a mock implementation of chat.Provider.
// Zero values for response fields cause Complete to return nil, nil.
// Set Err to inject an error.
type Provider struct {
	mu sync.Mutex

	// ProviderName is returned by Name. Defaults to "mock" when empty.
	ProviderName string

	// Response is returned by Complete. May be nil (returns nil, nil).
	Response *chat.Response

	// Err, if non-nil, is returned as the error from Complete.
	Err error

	// Delay, when positive, makes Complete block for that duration or until
	// ctx is cancelled, whichever comes first. Used to simulate a slow
	// provider in race tests.
	Delay time.Duration

	// Calls records every invocation of Complete in order.
	Calls []Call
}

// Compile-time assertion that Provider implements chat.Provider.
var _ chat.Provider = (*Provider)(nil)

// Name implements chat.Provider.
func (p *Provider) Name() string {
	if p.ProviderName == "" {
		return "mock"
	}
	return p.ProviderName
}

// Complete implements chat.Provider. It records the call, waits for the
// configured Delay, then returns the configured Response and Err.
func (p *Provider) Complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	p.mu.Lock()
	p.Calls = append(p.Calls, Call{Ctx: ctx, Req: req})
	delay := p.Delay
	p.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Response, nil
}

// CallCount returns the number of recorded Complete invocations.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
