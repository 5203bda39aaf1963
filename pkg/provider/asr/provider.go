// Package asr defines the Provider interface for speech-recognition backends.
//
// An ASR provider wraps a batch transcription service (e.g., the OpenAI audio
// API or a self-hosted whisper-server) and transcribes one uploaded audio
// file per call. Providers that support word-level timing return it in
// Result.Words; for the rest the caller synthesizes placeholder windows so
// the client always receives one timestamp per recognized word.
//
// Implementations must be safe for concurrent use.
package asr

import "context"

// Word is a single recognized word with its timing window, in seconds from
// the start of the audio.
type Word struct {
	Text  string
	Start float64
	End   float64
}

// Request describes one transcription job.
type Request struct {
	// FilePath is the path of the audio file to transcribe. The file must
	// outlive the call; the caller owns its lifecycle.
	FilePath string

	// Language is the ISO-639-1 language hint (e.g., "pl"). Empty lets the
	// provider auto-detect.
	Language string

	// Prompt is an optional text hint biasing recognition towards expected
	// vocabulary (the sentence the child was asked to read).
	Prompt string
}

// Result is the outcome of one transcription.
type Result struct {
	// Text is the full recognized text.
	Text string

	// Words carries word-level timestamps when the provider returns them.
	// May be empty; callers must not assume per-word timing is available.
	Words []Word
}

// Provider is the abstraction over any speech-recognition backend.
type Provider interface {
	// Name returns the provider identifier used in logs and metrics.
	Name() string

	// Transcribe submits the audio file described by req and waits for the
	// transcription. Returns an error if the upload fails, the provider
	// responds with a non-success status, or ctx is cancelled.
	Transcribe(ctx context.Context, req Request) (*Result, error)
}
