package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// ValidProviderNames lists known provider names per provider kind.
// Used by [Validate] to warn about unrecognised provider names.
var ValidProviderNames = map[string][]string{
	"chat": {"openai", "gemini", "ollama", "mistral", "groq"},
	"asr":  {"openai", "whisper"},
	"tts":  {"elevenlabs", "coqui"},
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg: provider credentials
// (OPENAI_API_KEY, GEMINI_API_KEY, ELEVENLABS_API_KEY) fill in empty api_key
// fields by provider name, and PORT overrides the listen address.
func ApplyEnv(cfg *Config) {
	envKeys := map[string]string{
		"openai":     os.Getenv("OPENAI_API_KEY"),
		"gemini":     os.Getenv("GEMINI_API_KEY"),
		"elevenlabs": os.Getenv("ELEVENLABS_API_KEY"),
	}

	for i := range cfg.Providers.Chat {
		entry := &cfg.Providers.Chat[i]
		if entry.APIKey == "" {
			entry.APIKey = envKeys[entry.Name]
		}
	}
	if cfg.Providers.ASR.APIKey == "" {
		cfg.Providers.ASR.APIKey = envKeys[cfg.Providers.ASR.Name]
	}
	if cfg.Providers.TTS.APIKey == "" {
		cfg.Providers.TTS.APIKey = envKeys[cfg.Providers.TTS.Name]
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.ListenAddr = ":" + port
	}
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	// Server
	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	// Provider name validation — warn for unknown provider names.
	seenChat := make(map[string]int, len(cfg.Providers.Chat))
	for i, entry := range cfg.Providers.Chat {
		prefix := fmt.Sprintf("providers.chat[%d]", i)
		if entry.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
			continue
		}
		if prev, ok := seenChat[entry.Name]; ok {
			errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of providers.chat[%d]", prefix, entry.Name, prev))
		}
		seenChat[entry.Name] = i
		validateProviderName("chat", entry.Name)
	}
	validateProviderName("asr", cfg.Providers.ASR.Name)
	validateProviderName("tts", cfg.Providers.TTS.Name)

	// Availability warnings — missing providers degrade endpoints to 5xx,
	// they do not prevent startup.
	if len(cfg.Providers.Chat) == 0 && !cfg.Mocks.Text {
		slog.Warn("no chat provider configured; generation endpoints will fail with no-provider")
	}
	if cfg.Providers.ASR.Name == "" && !cfg.Mocks.ASR {
		slog.Warn("no ASR provider configured; /asr will fail with no-provider")
	}
	if cfg.Providers.TTS.Name == "" {
		slog.Warn("no TTS provider configured; /tts will fail with no-provider")
	}

	// Generation bounds
	if cfg.Generation.RaceDeadlineMS < 0 {
		errs = append(errs, fmt.Errorf("generation.race_deadline_ms %d must not be negative", cfg.Generation.RaceDeadlineMS))
	}
	if cfg.Generation.Temperature < 0 || cfg.Generation.Temperature > 2 {
		errs = append(errs, fmt.Errorf("generation.temperature %.2f is out of range [0, 2]", cfg.Generation.Temperature))
	}
	if cfg.Generation.MotivationMaxChars < 0 {
		errs = append(errs, fmt.Errorf("generation.motivation_max_chars %d must not be negative", cfg.Generation.MotivationMaxChars))
	}

	// OCR bounds
	if r := ((cfg.OCR.Rotate % 360) + 360) % 360; r%90 != 0 {
		errs = append(errs, fmt.Errorf("ocr.rotate %d must be a multiple of 90", cfg.OCR.Rotate))
	}
	if cfg.OCR.MaxConcurrent < 0 {
		errs = append(errs, fmt.Errorf("ocr.max_concurrent %d must not be negative", cfg.OCR.MaxConcurrent))
	}
	if cfg.OCR.PageSegMode < 0 || cfg.OCR.PageSegMode > 13 {
		errs = append(errs, fmt.Errorf("ocr.page_seg_mode %d is out of range [0, 13]", cfg.OCR.PageSegMode))
	}

	// Keepalive
	if cfg.Keepalive.URL != "" && cfg.Keepalive.IntervalMS < 0 {
		errs = append(errs, fmt.Errorf("keepalive.interval_ms %d must not be negative", cfg.Keepalive.IntervalMS))
	}

	return errors.Join(errs...)
}

// validateProviderName logs a warning if name is non-empty and not found in
// the [ValidProviderNames] list for the given kind.
func validateProviderName(kind, name string) {
	if name == "" {
		return
	}
	known, ok := ValidProviderNames[kind]
	if !ok {
		return
	}
	if slices.Contains(known, name) {
		return
	}
	slog.Warn("unknown provider name — may be a typo or third-party provider",
		"kind", kind,
		"name", name,
		"known", known,
	)
}
