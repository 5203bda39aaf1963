// Command poczytajmy is the backend server for the reading-practice app.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/config"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/httpapi"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/imageprep"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/keepalive"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/observe"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr"
	ocrmock "github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr/mock"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr/tesseract"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/resilience"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
	asropenai "github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr/openai"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr/whisperhttp"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat/anyllm"
	chatopenai "github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat/openai"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts/coqui"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts/elevenlabs"
)

// version is stamped by the build via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "poczytajmy: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "poczytajmy: %v\n", err)
		}
		return 1
	}
	config.ApplyEnv(cfg)

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("poczytajmy starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    httpapi.ServiceName,
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	// ── Provider registry ─────────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	chatProviders, asrProvider, ttsProvider, err := buildProviders(cfg, reg)
	if err != nil {
		slog.Error("failed to build providers", "err", err)
		return 1
	}

	metrics := observe.DefaultMetrics()

	// ── OCR pipeline ──────────────────────────────────────────────────────────
	ocrService := buildOCR(cfg, metrics)

	// ── HTTP server ───────────────────────────────────────────────────────────
	server := httpapi.New(cfg, httpapi.Deps{
		Chat:    chatProviders,
		ASR:     asrProvider,
		TTS:     ttsProvider,
		OCR:     ocrService,
		Metrics: metrics,
		Version: version,
	})

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.Empty() {
			slog.Info("config reloaded, no runtime-applicable changes")
			return
		}
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level changed", "level", d.NewLogLevel)
		}
		server.ApplyConfig(d)
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Keepalive ─────────────────────────────────────────────────────────────
	if cfg.Keepalive.URL != "" {
		pinger := keepalive.New(cfg.Keepalive.URL, time.Duration(cfg.Keepalive.IntervalMS)*time.Millisecond)
		go pinger.Run(ctx)
	}

	printStartupSummary(cfg, len(chatProviders))

	if err := server.Run(ctx); err != nil {
		slog.Error("server error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// registerBuiltinProviders wires the shipped provider factories into reg.
// Each factory receives a config.ProviderEntry and constructs the provider
// from the real implementation packages.
func registerBuiltinProviders(reg *config.Registry) {
	// ── Chat ──────────────────────────────────────────────────────────────────

	reg.RegisterChat("openai", func(entry config.ProviderEntry) (chat.Provider, error) {
		var opts []chatopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, chatopenai.WithBaseURL(entry.BaseURL))
		}
		return chatopenai.New(entry.APIKey, entry.Model, opts...)
	})

	// gemini, mistral and groq share the any-llm pattern: optional APIKey +
	// optional BaseURL.
	for _, providerName := range []string{"gemini", "mistral", "groq"} {
		reg.RegisterChat(providerName, func(entry config.ProviderEntry) (chat.Provider, error) {
			var opts []anyllmlib.Option
			if entry.APIKey != "" {
				opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
			}
			if entry.BaseURL != "" {
				opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
			}
			return anyllm.New(providerName, entry.Model, opts...)
		})
	}

	// ollama is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterChat("ollama", func(entry config.ProviderEntry) (chat.Provider, error) {
		var opts []anyllmlib.Option
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New("ollama", entry.Model, opts...)
	})

	// ── ASR ───────────────────────────────────────────────────────────────────

	reg.RegisterASR("openai", func(entry config.ProviderEntry) (asr.Provider, error) {
		var opts []asropenai.Option
		if entry.Model != "" {
			opts = append(opts, asropenai.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, asropenai.WithBaseURL(entry.BaseURL))
		}
		return asropenai.New(entry.APIKey, opts...)
	})

	reg.RegisterASR("whisper", func(entry config.ProviderEntry) (asr.Provider, error) {
		var opts []whisperhttp.Option
		if entry.Model != "" {
			opts = append(opts, whisperhttp.WithModel(entry.Model))
		}
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisperhttp.WithLanguage(lang))
		}
		return whisperhttp.New(entry.BaseURL, opts...)
	})

	// ── TTS ───────────────────────────────────────────────────────────────────

	reg.RegisterTTS("elevenlabs", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if outputFmt := optString(entry.Options, "output_format"); outputFmt != "" {
			opts = append(opts, elevenlabs.WithOutputFormat(outputFmt))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	})

	// coqui is a local server; it uses BaseURL for the address, not an API key.
	reg.RegisterTTS("coqui", func(entry config.ProviderEntry) (tts.Provider, error) {
		var opts []coqui.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, coqui.WithLanguage(lang))
		}
		if mode := optString(entry.Options, "api_mode"); mode != "" {
			opts = append(opts, coqui.WithAPIMode(coqui.APIMode(mode)))
		}
		return coqui.New(entry.BaseURL, opts...)
	})
}

// buildProviders instantiates every provider named in cfg. Chat entries
// without an API key are skipped with a warning rather than failing startup,
// so a single missing credential costs one race participant, not the server.
func buildProviders(cfg *config.Config, reg *config.Registry) ([]chat.Provider, asr.Provider, tts.Provider, error) {
	var chatProviders []chat.Provider
	for _, entry := range cfg.Providers.Chat {
		if entry.APIKey == "" && entry.Name != "ollama" {
			slog.Warn("chat provider has no API key — skipping", "name", entry.Name)
			continue
		}
		p, err := reg.CreateChat(entry)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("create chat provider %q: %w", entry.Name, err)
		}
		chatProviders = append(chatProviders, resilience.GuardChat(p))
		slog.Info("provider created", "kind", "chat", "name", entry.Name, "model", entry.Model)
	}

	var asrProvider asr.Provider
	if name := cfg.Providers.ASR.Name; name != "" {
		if cfg.Providers.ASR.APIKey == "" && name == "openai" {
			slog.Warn("asr provider has no API key — transcription disabled", "name", name)
		} else {
			p, err := reg.CreateASR(cfg.Providers.ASR)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("create asr provider %q: %w", name, err)
			}
			asrProvider = p
			slog.Info("provider created", "kind", "asr", "name", name, "model", cfg.Providers.ASR.Model)
		}
	}

	var ttsProvider tts.Provider
	if name := cfg.Providers.TTS.Name; name != "" {
		if cfg.Providers.TTS.APIKey == "" && name == "elevenlabs" {
			slog.Warn("tts provider has no API key — synthesis disabled", "name", name)
		} else {
			p, err := reg.CreateTTS(cfg.Providers.TTS)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("create tts provider %q: %w", name, err)
			}
			ttsProvider = resilience.GuardTTS(p)
			slog.Info("provider created", "kind", "tts", "name", name)
		}
	}

	return chatProviders, asrProvider, ttsProvider, nil
}

// buildOCR assembles the OCR service from the configured preprocessing
// options and engine. Mock mode swaps in the canned engine so the endpoint
// works on hosts without Tesseract installed.
func buildOCR(cfg *config.Config, metrics *observe.Metrics) *ocr.Service {
	prep := imageprep.Options{
		MaxWidth:       cfg.OCR.MaxWidth,
		Rotate:         cfg.OCR.Rotate,
		Threshold:      cfg.OCR.Threshold,
		ThresholdValue: cfg.OCR.ThresholdValue,
		ContrastGain:   cfg.OCR.ContrastGain,
		ContrastBias:   cfg.OCR.ContrastBias,
		Sharpen:        cfg.OCR.Sharpen,
	}

	var engine ocr.Engine
	if cfg.Mocks.OCR {
		engine = &ocrmock.Engine{}
	} else {
		var opts []tesseract.Option
		if cfg.OCR.TessdataDir != "" {
			opts = append(opts, tesseract.WithTessdataDir(cfg.OCR.TessdataDir))
		}
		engine = tesseract.New(opts...)
	}

	return ocr.NewService(engine, prep, cfg.OCR.Languages, cfg.OCR.PageSegMode, cfg.OCR.MaxConcurrent,
		ocr.WithActiveJobsGauge(metrics.ActiveOCRJobs))
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, chatCount int) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║      Poczytajmy — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	fmt.Printf("║  Chat providers  : %-19d ║\n", chatCount)
	printProvider("ASR", cfg.Providers.ASR.Name, cfg.Providers.ASR.Model)
	printProvider("TTS", cfg.Providers.TTS.Name, "")
	printMock("Mock ASR", cfg.Mocks.ASR)
	printMock("Mock OCR", cfg.Mocks.OCR)
	printMock("Mock text", cfg.Mocks.Text)
	if cfg.Keepalive.URL != "" {
		fmt.Printf("║  Keepalive       : %-19s ║\n", "on")
	}
	fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

func printMock(label string, on bool) {
	value := "off"
	if on {
		value = "on"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", label, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// optString extracts a string value from a provider Options map[string]any.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
