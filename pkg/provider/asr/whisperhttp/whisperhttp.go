// Package whisperhttp provides an ASR provider backed by a self-hosted
// whisper-server binary, which exposes a REST API at POST /inference.
//
// whisper-server is a batch engine without word-level timing, so Result.Words
// is always empty; the HTTP layer synthesizes placeholder windows instead.
//
// Usage:
//
//	p, err := whisperhttp.New("http://localhost:8080",
//	    whisperhttp.WithLanguage("pl"),
//	)
//	res, err := p.Transcribe(ctx, asr.Request{FilePath: "/tmp/upload.wav"})
package whisperhttp

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

const defaultLanguage = "pl"

// Compile-time assertion that Provider implements asr.Provider.
var _ asr.Provider = (*Provider)(nil)

// Option is a functional option for configuring a Provider.
type Option func(*Provider)

// WithModel sets the model identifier forwarded to the whisper server
// (e.g., "base", "small"). When empty the server uses whichever model it was
// started with — this is the default.
func WithModel(model string) Option {
	return func(p *Provider) {
		p.model = model
	}
}

// WithLanguage sets the language code sent to the whisper server. Defaults
// to "pl".
func WithLanguage(lang string) Option {
	return func(p *Provider) {
		p.language = lang
	}
}

// WithTimeout sets the HTTP client timeout. Defaults to 30 s.
func WithTimeout(d time.Duration) Option {
	return func(p *Provider) {
		p.httpClient.Timeout = d
	}
}

// Provider implements asr.Provider backed by a whisper-server HTTP endpoint.
type Provider struct {
	serverURL  string
	model      string
	language   string
	httpClient *http.Client
}

// New creates a new Provider that connects to the whisper server at
// serverURL (e.g., "http://localhost:8080"). serverURL must be non-empty.
func New(serverURL string, opts ...Option) (*Provider, error) {
	if serverURL == "" {
		return nil, errors.New("whisperhttp: serverURL must not be empty")
	}
	p := &Provider{
		serverURL:  serverURL,
		language:   defaultLanguage,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Name implements asr.Provider.
func (p *Provider) Name() string { return "whisper" }

// Transcribe implements asr.Provider. It POSTs the audio file to the
// /inference endpoint as multipart/form-data and parses the JSON response.
func (p *Provider) Transcribe(ctx context.Context, req asr.Request) (*asr.Result, error) {
	f, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("whisperhttp: open audio file: %w", err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	fw, err := mw.CreateFormFile("file", filepath.Base(req.FilePath))
	if err != nil {
		return nil, fmt.Errorf("whisperhttp: create form file: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return nil, fmt.Errorf("whisperhttp: write audio data: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = p.language
	}
	if lang != "" {
		if err := mw.WriteField("language", lang); err != nil {
			return nil, fmt.Errorf("whisperhttp: write language field: %w", err)
		}
	}
	if p.model != "" {
		if err := mw.WriteField("model", p.model); err != nil {
			return nil, fmt.Errorf("whisperhttp: write model field: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("whisperhttp: close multipart writer: %w", err)
	}

	endpoint := p.serverURL + "/inference"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("whisperhttp: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("whisperhttp: http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("whisperhttp: server returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("whisperhttp: read response body: %w", err)
	}

	var result struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("whisperhttp: parse JSON response: %w", err)
	}

	return &asr.Result{Text: result.Text}, nil
}
