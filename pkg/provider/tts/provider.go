// Package tts defines the Provider interface for Text-to-Speech backends.
//
// A TTS provider wraps a speech synthesis service (e.g., ElevenLabs) and
// renders one short text into a single complete audio clip. The /tts endpoint
// returns that clip base64-encoded, so there is no streaming contract here —
// providers that stream internally assemble the chunks before returning.
//
// Implementations must be safe for concurrent use.
package tts

import "context"

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Name returns the provider identifier used in logs and metrics.
	Name() string

	// Synthesize renders text with the given provider-specific voice and
	// returns the complete encoded audio clip. Returns an error if the voice
	// is unknown, the upstream responds with a non-success status, or ctx is
	// cancelled before synthesis completes.
	Synthesize(ctx context.Context, text, voiceID string) ([]byte, error)
}
