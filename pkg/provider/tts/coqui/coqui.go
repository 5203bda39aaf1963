// Package coqui provides a Coqui TTS-backed provider that talks to a local
// Coqui server via its REST API. It implements the tts.Provider interface
// with one HTTP call per utterance.
//
// Two API modes are supported:
//
//   - APIModeStandard (default): targets the standard Coqui TTS server
//     (ghcr.io/coqui-ai/tts-cpu). Synthesis is performed via GET /api/tts
//     with URL query parameters.
//
//   - APIModeXTTS: targets the Coqui XTTS v2 API server. Synthesis is
//     performed via POST /tts_to_audio/ with a JSON body.
//
// Typical usage:
//
//	p, err := coqui.New("http://localhost:5002", coqui.WithLanguage("pl"))
//	audio, err := p.Synthesize(ctx, "Ala ma kota.", "p225")
package coqui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts"
)

var _ tts.Provider = (*Provider)(nil)

// APIMode selects which Coqui server API the provider will target.
type APIMode string

const (
	// APIModeStandard targets the standard Coqui TTS server (/api/tts).
	// This is the default mode.
	APIModeStandard APIMode = "standard"

	// APIModeXTTS targets the Coqui XTTS v2 API server (/tts_to_audio/).
	APIModeXTTS APIMode = "xtts"
)

const (
	defaultLanguage = "en"
	defaultTimeout  = 30 * time.Second

	ttsEndpoint    = "/tts_to_audio/"
	apiTTSEndpoint = "/api/tts"
)

// ---- options ----

// Option is a functional option for configuring a Coqui Provider.
type Option func(*Provider)

// WithLanguage sets the BCP-47 language code sent to the TTS server (e.g.,
// "pl", "en"). Defaults to "en" if not set.
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout sets the per-request HTTP timeout for calls to the TTS server.
// Defaults to 30 s if not set.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// WithAPIMode sets the server API mode. Use APIModeStandard (default) for the
// standard Coqui TTS Docker image (ghcr.io/coqui-ai/tts-cpu) or APIModeXTTS
// for the XTTS v2 API server.
func WithAPIMode(mode APIMode) Option {
	return func(p *Provider) {
		p.apiMode = mode
	}
}

// WithDefaultVoice sets the speaker used when a request does not name one.
func WithDefaultVoice(voiceID string) Option {
	return func(p *Provider) {
		p.defaultVoice = voiceID
	}
}

// ---- Provider ----

// Provider implements tts.Provider backed by a locally-running Coqui TTS
// server. It is safe for concurrent use.
type Provider struct {
	serverURL    string
	language     string
	apiMode      APIMode
	defaultVoice string
	httpClient   *http.Client
}

// New creates a new Coqui Provider that targets the TTS server at serverURL
// (e.g., "http://localhost:5002"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("coqui: serverURL must not be empty")
	}
	p := &Provider{
		serverURL: strings.TrimRight(serverURL, "/"),
		language:  defaultLanguage,
		apiMode:   APIModeStandard,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return "coqui"
}

// ttsRequest is the JSON body sent to POST /tts_to_audio/ (XTTS mode).
type ttsRequest struct {
	Text       string `json:"text"`
	SpeakerWav string `json:"speaker_wav"`
	Language   string `json:"language"`
}

// Synthesize renders text with the given speaker in one HTTP round trip and
// returns the complete encoded clip.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("coqui: text must not be empty")
	}
	if voiceID == "" {
		voiceID = p.defaultVoice
	}

	var req *http.Request
	var err error
	if p.apiMode == APIModeXTTS {
		req, err = p.xttsRequest(ctx, text, voiceID)
	} else {
		req, err = p.standardRequest(ctx, text, voiceID)
	}
	if err != nil {
		return nil, err
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coqui: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("coqui: server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("coqui: read audio: %w", err)
	}
	if len(audio) == 0 {
		return nil, errors.New("coqui: server returned no audio")
	}
	return audio, nil
}

func (p *Provider) standardRequest(ctx context.Context, text, voiceID string) (*http.Request, error) {
	q := url.Values{}
	q.Set("text", text)
	if voiceID != "" {
		q.Set("speaker_id", voiceID)
	}
	if p.language != "" {
		q.Set("language_id", p.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.serverURL+apiTTSEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("coqui: build request: %w", err)
	}
	return req, nil
}

func (p *Provider) xttsRequest(ctx context.Context, text, voiceID string) (*http.Request, error) {
	body, err := json.Marshal(ttsRequest{
		Text:       text,
		SpeakerWav: voiceID,
		Language:   p.language,
	})
	if err != nil {
		return nil, fmt.Errorf("coqui: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.serverURL+ttsEndpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("coqui: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
