package resilience

import (
	"context"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts"
)

// ChatGuard wraps a chat provider with its own [Breaker]. While the breaker
// is open, Complete fails immediately with [ErrTripped] and the race moves on
// without waiting on the dead upstream.
type ChatGuard struct {
	inner   chat.Provider
	breaker *Breaker
}

var _ chat.Provider = (*ChatGuard)(nil)

// GuardChat wraps p.
func GuardChat(p chat.Provider, opts ...BreakerOption) *ChatGuard {
	return &ChatGuard{
		inner:   p,
		breaker: NewBreaker(p.Name(), opts...),
	}
}

// Name implements chat.Provider.
func (g *ChatGuard) Name() string { return g.inner.Name() }

// Complete implements chat.Provider.
func (g *ChatGuard) Complete(ctx context.Context, req chat.Request) (*chat.Response, error) {
	var resp *chat.Response
	err := g.breaker.Do(func() error {
		var err error
		resp, err = g.inner.Complete(ctx, req)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// TTSGuard wraps a TTS provider with its own [Breaker].
type TTSGuard struct {
	inner   tts.Provider
	breaker *Breaker
}

var _ tts.Provider = (*TTSGuard)(nil)

// GuardTTS wraps p.
func GuardTTS(p tts.Provider, opts ...BreakerOption) *TTSGuard {
	return &TTSGuard{
		inner:   p,
		breaker: NewBreaker(p.Name(), opts...),
	}
}

// Name implements tts.Provider.
func (g *TTSGuard) Name() string { return g.inner.Name() }

// Synthesize implements tts.Provider.
func (g *TTSGuard) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	var audio []byte
	err := g.breaker.Do(func() error {
		var err error
		audio, err = g.inner.Synthesize(ctx, text, voiceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return audio, nil
}
