package httpapi

import (
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// DefaultTTSMaxTextLen caps synthesized text length in runes when none is
// configured. Synthesis cost scales with input length.
const DefaultTTSMaxTextLen = 500

// ttsRequest is the POST /tts body.
type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voiceId"`
}

// ttsResponse is the JSON shape of a successful /tts call.
type ttsResponse struct {
	OK       bool   `json:"ok"`
	AudioB64 string `json:"audioB64"`
}

// handleTTS implements POST /tts. Text is capped at the configured rune
// budget; the clip comes back base64-encoded.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req ttsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "invalid JSON body")
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "text is required")
		return
	}

	maxLen := s.ttsMaxLen
	if maxLen <= 0 {
		maxLen = DefaultTTSMaxTextLen
	}
	if runes := []rune(text); len(runes) > maxLen {
		text = string(runes[:maxLen])
	}

	if s.deps.TTS == nil {
		writeError(w, http.StatusInternalServerError, CodeNoProvider, "no speech-synthesis credential configured")
		return
	}

	voice := strings.TrimSpace(req.VoiceID)
	if voice == "" {
		voice = s.ttsVoice
	}

	start := time.Now()
	audio, err := s.deps.TTS.Synthesize(r.Context(), text, voice)
	if s.deps.Metrics != nil {
		s.deps.Metrics.TTSDuration.Record(r.Context(), time.Since(start).Seconds())
	}
	if err != nil {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordProviderError(r.Context(), s.deps.TTS.Name(), "tts")
		}
		slog.Error("tts synthesis failed", "provider", s.deps.TTS.Name(), "err", err)
		writeError(w, http.StatusBadGateway, CodeUpstreamFailure, "speech synthesis failed")
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordProviderRequest(r.Context(), s.deps.TTS.Name(), "tts", "ok")
	}

	writeJSON(w, http.StatusOK, ttsResponse{
		OK:       true,
		AudioB64: base64.StdEncoding.EncodeToString(audio),
	})
}
