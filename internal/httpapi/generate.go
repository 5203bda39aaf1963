package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/race"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/textgen"
	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/textgen/history"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
)

// mockSource labels responses produced by mock mode.
const mockSource = "mock"

// Canned mock-mode outputs. Fixed so the client can be demoed without
// provider credentials.
const (
	mockGreetingText   = "Dziś czeka nas wspaniała przygoda z książką!"
	mockMotivationText = "Świetnie czytasz, tak trzymaj!"
)

// motivationFallback is the literal stand-in sentence shipped inside the
// /agent/motivate error body so the client always has something to render.
const motivationFallback = "Super ci idzie! Czytajmy dalej!"

// generateResponse is the JSON shape of the generation endpoints.
type generateResponse struct {
	OK       bool   `json:"ok"`
	Text     string `json:"text"`
	Source   string `json:"source"`
	Level    string `json:"level,omitempty"`
	Language string `json:"language,omitempty"`
}

// greetingRequest is the POST /agent/generate-greeting body.
type greetingRequest struct {
	Name      string `json:"name"`
	Age       int    `json:"age"`
	Character string `json:"character"`
}

// motivateRequest is the POST /agent/motivate body.
type motivateRequest struct {
	Age           int    `json:"age"`
	Accuracy      int    `json:"accuracy"`
	Text          string `json:"text"`
	CharacterName string `json:"characterName"`
	Lang          string `json:"lang"`
}

// generateTextRequest is the POST /agent/generate-text body.
type generateTextRequest struct {
	Language string `json:"language"`
	Level    string `json:"level"`
}

// handleGreeting implements POST /agent/generate-greeting. The winning
// response is parsed into candidate sentences, the one least similar to the
// profile's recent greetings is picked, sanitized, and remembered.
func (s *Server) handleGreeting(w http.ResponseWriter, r *http.Request) {
	var req greetingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "invalid JSON body")
		return
	}

	if s.mocksConfig().Text {
		writeJSON(w, http.StatusOK, generateResponse{OK: true, Text: mockGreetingText, Source: mockSource})
		return
	}

	system, user := textgen.GreetingPrompt(req.Name, req.Age, req.Character)
	result, err := s.runRace(r, "greeting", system, user)
	if err != nil {
		status, code := raceFailure(err)
		writeError(w, status, code, err.Error())
		return
	}

	candidates := textgen.ExtractCandidates(result.Text)
	if len(candidates) == 0 {
		writeError(w, http.StatusBadGateway, CodeEmptyGeneration, "provider produced no usable sentence")
		return
	}

	key := history.Key(req.Name, req.Age)
	picked := textgen.SelectNovel(candidates, s.deps.History.Recent(key))
	text := textgen.SanitizeGreeting(picked, req.Name)
	if text == "" {
		writeError(w, http.StatusBadGateway, CodeEmptyGeneration, "sanitizer left no usable sentence")
		return
	}
	s.deps.History.Add(key, text)

	writeJSON(w, http.StatusOK, generateResponse{OK: true, Text: text, Source: result.Provider})
}

// handleMotivate implements POST /agent/motivate. Failure bodies carry a
// hardcoded fallback sentence; this is the one endpoint that degrades
// gracefully instead of surfacing a bare error.
func (s *Server) handleMotivate(w http.ResponseWriter, r *http.Request) {
	var req motivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "invalid JSON body")
		return
	}

	gen := s.generation()
	maxChars := gen.MotivationMaxChars
	if maxChars <= 0 {
		maxChars = textgen.DefaultMotivationMaxChars
	}

	if s.mocksConfig().Text {
		writeJSON(w, http.StatusOK, generateResponse{
			OK:     true,
			Text:   textgen.TightenMotivation(mockMotivationText, maxChars),
			Source: mockSource,
		})
		return
	}

	system, user := textgen.MotivationPrompt(req.Age, req.Accuracy, req.Text, req.CharacterName, req.Lang)
	result, err := s.runRace(r, "motivate", system, user)
	if err != nil {
		status, code := raceFailure(err)
		writeJSON(w, status, errorBody{Error: code, Message: err.Error(), Fallback: motivationFallback})
		return
	}

	// Tightened once where produced and once more at the boundary, in case a
	// provider smuggles markup past the first pass.
	text := textgen.TightenMotivation(result.Text, maxChars)
	text = textgen.TightenMotivation(text, maxChars)

	writeJSON(w, http.StatusOK, generateResponse{OK: true, Text: text, Source: result.Provider})
}

// handleGenerateText implements POST /agent/generate-text.
func (s *Server) handleGenerateText(w http.ResponseWriter, r *http.Request) {
	var req generateTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "invalid JSON body")
		return
	}

	level, err := textgen.ParseLevel(req.Level)
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, err.Error())
		return
	}
	language := strings.TrimSpace(req.Language)
	if language == "" {
		language = "pl"
	}

	if s.mocksConfig().Text {
		writeJSON(w, http.StatusOK, generateResponse{
			OK:       true,
			Text:     textgen.MockSentence(level, int(time.Now().UnixNano())),
			Source:   mockSource,
			Level:    string(level),
			Language: language,
		})
		return
	}

	system, user := textgen.ReadingTextPrompt(language, level)
	result, err := s.runRace(r, "generate-text", system, user)
	if err != nil {
		status, code := raceFailure(err)
		writeError(w, status, code, err.Error())
		return
	}

	candidates := textgen.ExtractCandidates(result.Text)
	text := result.Text
	if len(candidates) > 0 {
		text = candidates[0]
	}
	text = strings.TrimSpace(text)
	if text == "" {
		writeError(w, http.StatusBadGateway, CodeEmptyGeneration, "provider produced no usable sentence")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{
		OK:       true,
		Text:     text,
		Source:   result.Provider,
		Level:    string(level),
		Language: language,
	})
}

// handleGenerateTextAlias implements POST /generate-text, a 307 redirect kept
// for clients built against the old route. 307 preserves method and body.
func (s *Server) handleGenerateTextAlias(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/agent/generate-text", http.StatusTemporaryRedirect)
}

// runRace dispatches the prompt to every configured chat provider and
// returns the first successful completion. Wall time and outcome feed the
// generation metrics.
func (s *Server) runRace(r *http.Request, endpoint, system, user string) (*race.Result, error) {
	gen := s.generation()

	participants := make([]race.Participant, 0, len(s.deps.Chat))
	for _, p := range s.deps.Chat {
		provider := p
		participants = append(participants, race.Participant{
			Name: provider.Name(),
			Call: func(ctx context.Context) (string, error) {
				resp, err := provider.Complete(ctx, chat.Request{
					SystemPrompt: system,
					Prompt:       user,
					Temperature:  gen.Temperature,
					MaxTokens:    gen.MaxTokens,
				})
				if err == nil && resp == nil {
					err = errors.New("provider returned no completion")
				}
				if err != nil {
					if s.deps.Metrics != nil {
						s.deps.Metrics.RecordProviderError(ctx, provider.Name(), "chat")
					}
					return "", err
				}
				if s.deps.Metrics != nil {
					s.deps.Metrics.RecordProviderRequest(ctx, provider.Name(), "chat", "ok")
				}
				return resp.Text, nil
			},
		})
	}

	start := time.Now()
	result, err := race.Run(r.Context(), s.raceDeadline(), participants)
	if s.deps.Metrics != nil {
		s.deps.Metrics.GenerationDuration.Record(r.Context(), time.Since(start).Seconds())
		winner, status := "none", "error"
		if err == nil {
			winner, status = result.Provider, "ok"
		} else if errors.Is(err, race.ErrDeadlineExceeded) {
			status = "deadline"
		}
		s.deps.Metrics.RecordRaceOutcome(r.Context(), endpoint, winner, status)
	}
	if err != nil {
		slog.Warn("generation race failed", "endpoint", endpoint, "err", err)
		return nil, err
	}
	return result, nil
}

// raceFailure maps a race error to an HTTP status and error code.
func raceFailure(err error) (status int, code string) {
	switch {
	case errors.Is(err, race.ErrDeadlineExceeded):
		return http.StatusGatewayTimeout, CodeDeadlineExceeded
	case errors.Is(err, race.ErrNoProvider):
		return http.StatusBadGateway, CodeNoProvider
	default:
		return http.StatusBadGateway, CodeUpstreamFailure
	}
}
