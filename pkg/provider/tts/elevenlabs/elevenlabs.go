// Package elevenlabs provides an ElevenLabs-backed TTS provider using the
// ElevenLabs stream-input WebSocket API. It implements the tts.Provider
// interface by sending the whole text as one fragment, flushing, and
// concatenating the returned audio chunks into a single clip.
package elevenlabs

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/coder/websocket"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts"
)

const (
	wsEndpointFmt    = "wss://api.elevenlabs.io/v1/text-to-speech/%s/stream-input?model_id=%s&output_format=%s"
	defaultModel     = "eleven_multilingual_v2"
	defaultOutputFmt = "mp3_44100_128"
)

// Option is a functional option for configuring the ElevenLabs Provider.
type Option func(*Provider)

// WithModel sets the ElevenLabs model ID (e.g., "eleven_multilingual_v2").
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithOutputFormat sets the audio output format (e.g., "mp3_44100_128", "pcm_16000").
func WithOutputFormat(format string) Option {
	return func(p *Provider) {
		p.outputFormat = format
	}
}

// WithDefaultVoice sets the voice used when a request does not name one.
func WithDefaultVoice(voiceID string) Option {
	return func(p *Provider) {
		p.defaultVoice = voiceID
	}
}

// Provider implements tts.Provider backed by the ElevenLabs stream-input API.
type Provider struct {
	apiKey       string
	model        string
	outputFormat string
	defaultVoice string
}

// New creates a new ElevenLabs Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("elevenlabs: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:       apiKey,
		model:        defaultModel,
		outputFormat: defaultOutputFmt,
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

var _ tts.Provider = (*Provider)(nil)

// Name implements tts.Provider.
func (p *Provider) Name() string {
	return "elevenlabs"
}

// ---- WebSocket message types ----

// textMessage is the JSON payload sent to ElevenLabs for each text fragment.
// An empty Text signals end of input and flushes any buffered audio.
type textMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
}

// voiceSettings mirrors the ElevenLabs voice_settings object.
type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// audioResponse is the JSON message received from ElevenLabs over the WebSocket.
type audioResponse struct {
	Audio   string `json:"audio"` // base64-encoded audio chunk
	IsFinal bool   `json:"isFinal"`
	Message string `json:"message,omitempty"` // error or info
}

// boiMessage is used for the initial "begin of input" handshake.
type boiMessage struct {
	Text          string         `json:"text"`
	VoiceSettings *voiceSettings `json:"voice_settings,omitempty"`
	XiAPIKey      string         `json:"xi_api_key"`
}

// buildURLForVoice constructs the WebSocket URL for a given voice, model and
// output format.
func buildURLForVoice(voiceID, model, outputFormat string) string {
	return fmt.Sprintf(wsEndpointFmt, voiceID, model, outputFormat)
}

// Synthesize opens a WebSocket to ElevenLabs, sends text as a single fragment
// followed by a flush, and collects audio chunks until the stream ends.
func (p *Provider) Synthesize(ctx context.Context, text, voiceID string) ([]byte, error) {
	if text == "" {
		return nil, errors.New("elevenlabs: text must not be empty")
	}
	if voiceID == "" {
		voiceID = p.defaultVoice
	}
	if voiceID == "" {
		return nil, errors.New("elevenlabs: voiceID must not be empty")
	}

	wsURL := buildURLForVoice(voiceID, p.model, p.outputFormat)
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("elevenlabs: dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// Large single clips can exceed the default read limit.
	conn.SetReadLimit(1 << 24)

	vs := &voiceSettings{Stability: 0.5, SimilarityBoost: 0.75}

	// Send the initial BOI message to authenticate and configure the stream.
	boi := boiMessage{
		Text:          " ", // ElevenLabs requires a non-empty first text value
		VoiceSettings: vs,
		XiAPIKey:      p.apiKey,
	}
	boiBytes, _ := json.Marshal(boi)
	if err := conn.Write(ctx, websocket.MessageText, boiBytes); err != nil {
		return nil, fmt.Errorf("elevenlabs: send BOI: %w", err)
	}

	payload, _ := json.Marshal(textMessage{Text: text + " "})
	if err := conn.Write(ctx, websocket.MessageText, payload); err != nil {
		return nil, fmt.Errorf("elevenlabs: send text: %w", err)
	}

	// Empty text flushes the buffer and ends the input stream.
	flush, _ := json.Marshal(textMessage{Text: ""})
	if err := conn.Write(ctx, websocket.MessageText, flush); err != nil {
		return nil, fmt.Errorf("elevenlabs: send flush: %w", err)
	}

	var clip []byte
	for {
		_, msg, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("elevenlabs: read: %w", ctx.Err())
			}
			// Normal closure after the final chunk ends the stream.
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure && len(clip) > 0 {
				return clip, nil
			}
			if len(clip) > 0 {
				return clip, nil
			}
			return nil, fmt.Errorf("elevenlabs: read: %w", err)
		}
		var resp audioResponse
		if err := json.Unmarshal(msg, &resp); err != nil {
			continue
		}
		if resp.Audio != "" {
			chunk, err := base64.StdEncoding.DecodeString(resp.Audio)
			if err != nil {
				return nil, fmt.Errorf("elevenlabs: decode audio chunk: %w", err)
			}
			clip = append(clip, chunk...)
		}
		if resp.IsFinal {
			if len(clip) == 0 {
				return nil, errors.New("elevenlabs: stream ended with no audio")
			}
			return clip, nil
		}
	}
}
