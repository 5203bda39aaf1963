// Package chat defines the Provider interface for chat-completion backends.
//
// A chat provider wraps a remote LLM API (e.g., OpenAI GPT-4o or Google
// Gemini) and exposes a uniform single-turn completion interface for the
// generation endpoints. Providers are interchangeable: the HTTP layer races
// every configured provider and serves the first successful answer.
//
// Implementations must be safe for concurrent use and must propagate context
// cancellation promptly — a losing race participant is told to abort through
// its context.
package chat

import "context"

// Request carries everything a provider needs for one completion.
// Callers should treat a zero-value request as invalid; at minimum Prompt
// must be non-empty.
type Request struct {
	// SystemPrompt is a high-priority instruction injected before the user
	// prompt. Providers that have no dedicated system slot prepend it as a
	// "system"-role message.
	SystemPrompt string

	// Prompt is the user-role message that drives the response.
	Prompt string

	// Temperature controls output randomness in [0.0, 2.0]. Zero means use
	// the provider default.
	Temperature float64

	// MaxTokens caps the number of completion tokens the model may generate.
	// Zero means use the provider default.
	MaxTokens int
}

// Response is the full completion returned by a provider.
type Response struct {
	// Text is the complete text of the model's reply.
	Text string
}

// Provider is the abstraction over any chat-completion backend.
//
// Implementations must be safe for concurrent use from multiple goroutines.
type Provider interface {
	// Name returns the provider identifier surfaced to clients in the
	// "source" field of generation responses (e.g., "openai", "gemini").
	Name() string

	// Complete sends req to the model and waits for the full response.
	// Returns an error if the request fails, the response carries no
	// choices, or ctx is cancelled before the completion arrives.
	Complete(ctx context.Context, req Request) (*Response, error)
}
