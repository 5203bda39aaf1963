// Package config provides the configuration schema, loader, and provider
// registry for the reading-practice backend.
package config

// LogLevel controls log verbosity for the server.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure. It is typically loaded from a
// YAML file using [Load] or [LoadFromReader]; credentials and the listen port
// can be overridden from the environment afterwards with [ApplyEnv].
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Providers  ProvidersConfig  `yaml:"providers"`
	Generation GenerationConfig `yaml:"generation"`
	OCR        OCRConfig        `yaml:"ocr"`
	TTS        TTSConfig        `yaml:"tts"`
	Mocks      MocksConfig      `yaml:"mocks"`
	Keepalive  KeepaliveConfig  `yaml:"keepalive"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares the provider implementations per capability. Chat
// takes a list: every configured entry participates in the generation race.
type ProvidersConfig struct {
	Chat []ProviderEntry `yaml:"chat"`
	ASR  ProviderEntry   `yaml:"asr"`
	TTS  ProviderEntry   `yaml:"tts"`
}

// ProviderEntry is the common configuration block shared by all provider
// types. The Name field is used to look up the constructor in the [Registry].
type ProviderEntry struct {
	// Name selects the registered provider implementation
	// (e.g., "openai", "gemini", "whisper", "elevenlabs").
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider
	// (e.g., "gpt-4o-mini", "gemini-2.0-flash", "whisper-1").
	Model string `yaml:"model"`

	// Options holds provider-specific configuration values not covered by
	// the standard fields above.
	Options map[string]any `yaml:"options"`
}

// GenerationConfig tunes the text-generation race and post-processing.
type GenerationConfig struct {
	// RaceDeadlineMS is the race budget in milliseconds. Zero selects the
	// default (1200).
	RaceDeadlineMS int `yaml:"race_deadline_ms"`

	// MaxTokens caps provider completions. Zero leaves the provider default.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for chat completions. Zero leaves the provider default.
	Temperature float64 `yaml:"temperature"`

	// MotivationMaxChars is the motivational-message character budget.
	// Zero selects the default (160).
	MotivationMaxChars int `yaml:"motivation_max_chars"`

	// HistoryMaxProfiles bounds the greeting-history LRU; HistoryMaxEntries
	// bounds remembered greetings per profile. Zero selects the defaults.
	HistoryMaxProfiles int `yaml:"history_max_profiles"`
	HistoryMaxEntries  int `yaml:"history_max_entries"`
}

// OCRConfig tunes image preprocessing and the Tesseract engine.
type OCRConfig struct {
	// Languages lists trained-data hints, e.g. ["pol", "eng"].
	Languages []string `yaml:"languages"`

	// TessdataDir points at a non-default trained-data directory.
	TessdataDir string `yaml:"tessdata_dir"`

	// MaxWidth is the preprocessing resize target in pixels.
	MaxWidth int `yaml:"max_width"`

	// Rotate is a clockwise rotation in degrees (0, 90, 180, 270).
	Rotate int `yaml:"rotate"`

	// Threshold enables binarization at ThresholdValue (0 = Otsu) instead of
	// the linear contrast stretch defined by ContrastGain/ContrastBias.
	Threshold      bool    `yaml:"threshold"`
	ThresholdValue uint8   `yaml:"threshold_value"`
	ContrastGain   float64 `yaml:"contrast_gain"`
	ContrastBias   float64 `yaml:"contrast_bias"`

	// Sharpen applies the final sharpening convolution.
	Sharpen bool `yaml:"sharpen"`

	// PageSegMode is the Tesseract PSM; zero keeps the engine default.
	PageSegMode int `yaml:"page_seg_mode"`

	// MaxConcurrent bounds simultaneous OCR jobs. Zero selects the default.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// TTSConfig holds synthesis settings beyond the provider entry.
type TTSConfig struct {
	// DefaultVoice is the voice used when a request names none.
	DefaultVoice string `yaml:"default_voice"`

	// MaxTextLen caps the synthesized text length in runes. Zero selects
	// the default (500).
	MaxTextLen int `yaml:"max_text_len"`
}

// MocksConfig short-circuits capabilities with canned output, so the client
// can be exercised without provider credentials.
type MocksConfig struct {
	ASR  bool `yaml:"asr"`
	OCR  bool `yaml:"ocr"`
	Text bool `yaml:"text"`
}

// KeepaliveConfig drives the periodic self-ping that discourages idle
// shutdown on the hosting platform. An empty URL disables it.
type KeepaliveConfig struct {
	URL        string `yaml:"url"`
	IntervalMS int    `yaml:"interval_ms"`
}
