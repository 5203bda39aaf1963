// Package httpapi implements the HTTP JSON API of the reading-practice
// backend: speech recognition, greeting/motivation/reading-text generation,
// OCR, and text-to-speech, plus health and metrics endpoints.
//
// Handlers are stateless functions of one request; the only cross-request
// state is the greeting history store and the OCR admission gate, both safe
// for concurrent use. Error responses carry a structured code from errors.go.
package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/config"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/health"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/observe"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/ocr"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/textgen/history"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/tts"
)

// ServiceName identifies this service in health responses and telemetry.
const ServiceName = "poczytajmy-backend"

// shutdownTimeout bounds graceful shutdown after ctx cancellation.
const shutdownTimeout = 5 * time.Second

// Deps carries the constructed dependencies of the API. Nil provider fields
// mean the capability is unconfigured; the matching endpoints answer with a
// no-provider error instead of failing at startup.
type Deps struct {
	// Chat lists every configured chat provider; generation endpoints race
	// all of them.
	Chat []chat.Provider

	// ASR transcribes uploaded audio. May be nil.
	ASR asr.Provider

	// TTS synthesizes speech. May be nil.
	TTS tts.Provider

	// OCR extracts text from uploaded images. May be nil.
	OCR *ocr.Service

	// History remembers recent greetings per child profile.
	History *history.Store

	// Metrics receives request and provider instrumentation. May be nil.
	Metrics *observe.Metrics

	// Version is reported by /health.
	Version string
}

// Server is the HTTP API server. Construct with [New], serve with [Run] or
// mount [Handler] directly in tests.
type Server struct {
	listenAddr string
	deps       Deps
	health     *health.Handler

	// mu guards the hot-reloadable config sections.
	mu    sync.RWMutex
	mocks config.MocksConfig
	gen   config.GenerationConfig

	// ttsVoice and ttsMaxLen come from the TTS config section.
	ttsVoice  string
	ttsMaxLen int

	httpServer *http.Server
}

// New creates a Server from the loaded config and constructed dependencies.
func New(cfg *config.Config, deps Deps) *Server {
	if deps.History == nil {
		deps.History = history.New(cfg.Generation.HistoryMaxProfiles, cfg.Generation.HistoryMaxEntries)
	}

	s := &Server{
		listenAddr: cfg.Server.ListenAddr,
		deps:       deps,
		mocks:      cfg.Mocks,
		gen:        cfg.Generation,
		ttsVoice:   cfg.TTS.DefaultVoice,
		ttsMaxLen:  cfg.TTS.MaxTextLen,
	}

	s.health = health.New(ServiceName, deps.Version, s.readinessCheckers()...)
	return s
}

// ApplyConfig applies a hot-reload diff produced by [config.Diff]. Provider
// and OCR changes require a restart and are ignored here.
func (s *Server) ApplyConfig(d config.ConfigDiff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.MocksChanged {
		s.mocks = d.NewMocks
	}
	if d.GenerationChanged {
		s.gen = d.NewGeneration
	}
}

// mocksConfig returns the current mock-mode flags.
func (s *Server) mocksConfig() config.MocksConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mocks
}

// generation returns the current generation tuning.
func (s *Server) generation() config.GenerationConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gen
}

// raceDeadline returns the configured race budget as a duration; zero lets
// the dispatcher pick its default.
func (s *Server) raceDeadline() time.Duration {
	return time.Duration(s.generation().RaceDeadlineMS) * time.Millisecond
}

// readinessCheckers builds the /readyz probes from the configured providers.
func (s *Server) readinessCheckers() []health.Checker {
	var checkers []health.Checker
	checkers = append(checkers, health.Checker{
		Name: "chat",
		Check: func(context.Context) error {
			if len(s.deps.Chat) == 0 && !s.mocksConfig().Text {
				return fmt.Errorf("no chat provider configured")
			}
			return nil
		},
	})
	checkers = append(checkers, health.Checker{
		Name: "asr",
		Check: func(context.Context) error {
			if s.deps.ASR == nil && !s.mocksConfig().ASR {
				return fmt.Errorf("no asr provider configured")
			}
			return nil
		},
	})
	return checkers
}

// Handler returns the fully routed handler, without observability middleware.
// Wrap it with [observe.Middleware] for production serving.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.health.Register(mux)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /asr", s.handleASR)
	mux.HandleFunc("POST /agent/generate-greeting", s.handleGreeting)
	mux.HandleFunc("POST /agent/motivate", s.handleMotivate)
	mux.HandleFunc("POST /agent/generate-text", s.handleGenerateText)
	mux.HandleFunc("POST /generate-text", s.handleGenerateTextAlias)
	mux.HandleFunc("POST /ocr", s.handleOCR)
	mux.HandleFunc("POST /tts", s.handleTTS)
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}

// Run serves the API until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	handler := s.Handler()
	if s.deps.Metrics != nil {
		handler = observe.Middleware(s.deps.Metrics)(handler)
	}

	s.httpServer = &http.Server{
		Addr:              s.listenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("http api listening", "addr", s.listenAddr)

	go func() {
		<-ctx.Done()
		slog.Info("http api shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("httpapi: listen: %w", err)
	}
	return nil
}
