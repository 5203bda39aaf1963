// Package openai provides an ASR provider backed by the OpenAI audio
// transcription API (Whisper).
//
// The provider uploads the audio file as multipart/form-data and requests the
// verbose JSON response with word-level timestamp granularity, so downstream
// code receives per-word timing windows whenever the model produces them.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "whisper-1"
)

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the transcription model (e.g., "whisper-1"). Defaults to
// whisper-1.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithBaseURL overrides the default API base URL. Useful for
// OpenAI-compatible transcription servers.
func WithBaseURL(url string) Option {
	return func(p *Provider) {
		p.baseURL = url
	}
}

// WithTimeout sets the HTTP client timeout. Defaults to 60 s — audio uploads
// are slow on poor connections.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements asr.Provider backed by POST /audio/transcriptions.
type Provider struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// New creates a new Provider. apiKey must be non-empty.
func New(apiKey string, opts ...Option) (*Provider, error) {
	if apiKey == "" {
		return nil, errors.New("openai: apiKey must not be empty")
	}
	p := &Provider{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name implements asr.Provider.
func (p *Provider) Name() string { return "openai" }

// transcriptionResponse mirrors the verbose_json response shape of the
// OpenAI audio transcription endpoint. Only the fields we consume are listed.
type transcriptionResponse struct {
	Text  string `json:"text"`
	Words []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

// Transcribe implements asr.Provider. It streams the file into a multipart
// request body and parses the verbose JSON response.
func (p *Provider) Transcribe(ctx context.Context, req asr.Request) (*asr.Result, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("openai: open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("openai: create form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("openai: write audio data: %w", err)
	}

	fields := map[string]string{
		"model":                     p.model,
		"response_format":           "verbose_json",
		"timestamp_granularities[]": "word",
	}
	if req.Language != "" {
		fields["language"] = req.Language
	}
	if req.Prompt != "" {
		fields["prompt"] = req.Prompt
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("openai: write field %s: %w", k, err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("openai: close multipart writer: %w", err)
	}

	endpoint := p.baseURL + "/audio/transcriptions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("openai: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("openai: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openai: server returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("openai: read response body: %w", err)
	}

	var tr transcriptionResponse
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("openai: parse JSON response: %w", err)
	}

	result := &asr.Result{Text: tr.Text}
	for _, w := range tr.Words {
		result.Words = append(result.Words, asr.Word{Text: w.Word, Start: w.Start, End: w.End})
	}
	return result, nil
}
