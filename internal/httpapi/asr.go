package httpapi

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/reading"
	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
)

// maxAudioUpload bounds the multipart form size for /asr.
const maxAudioUpload = 25 << 20

// mockRecognizedText is the canned /asr result in mock mode when the client
// supplies no expected text.
const mockRecognizedText = "Ala ma kota i psa."

// asrResponse is the JSON shape of a successful /asr call.
type asrResponse struct {
	OK           bool      `json:"ok"`
	Text         string    `json:"text"`
	WordCount    int       `json:"wordCount"`
	Words        []asrWord `json:"words"`
	Accuracy     int       `json:"accuracy"`
	MisreadWords []string  `json:"misreadWords"`
}

// asrWord is one recognized word with its timing window in seconds.
type asrWord struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// handleASR implements POST /asr: multipart field "audio", optional
// "expectedText" and "language" fields. The upload is spooled to a uniquely
// named temp file that is removed on every exit path.
func (s *Server) handleASR(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioUpload); err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "expected multipart form with an audio file")
		return
	}
	expected := strings.TrimSpace(r.FormValue("expectedText"))
	language := strings.TrimSpace(r.FormValue("language"))

	if s.mocksConfig().ASR {
		text := expected
		if text == "" {
			text = mockRecognizedText
		}
		writeJSON(w, http.StatusOK, buildASRResponse(text, nil, expected))
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "missing audio file")
		return
	}
	defer file.Close()

	if s.deps.ASR == nil {
		writeError(w, http.StatusBadGateway, CodeNoProvider, "no speech-recognition provider configured")
		return
	}

	tmpPath, err := spoolUpload(file, header.Filename)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeLocalFailure, "cannot store uploaded audio")
		return
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			slog.Warn("asr temp file not removed", "path", tmpPath, "err", err)
		}
	}()

	start := time.Now()
	result, err := s.deps.ASR.Transcribe(r.Context(), asr.Request{
		FilePath: tmpPath,
		Language: language,
		Prompt:   expected,
	})
	if s.deps.Metrics != nil {
		s.deps.Metrics.ASRDuration.Record(r.Context(), time.Since(start).Seconds())
	}
	if err != nil {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RecordProviderError(r.Context(), s.deps.ASR.Name(), "asr")
		}
		slog.Error("asr transcription failed", "provider", s.deps.ASR.Name(), "err", err)
		writeError(w, http.StatusInternalServerError, CodeLocalFailure, "transcription failed")
		return
	}
	if s.deps.Metrics != nil {
		s.deps.Metrics.RecordProviderRequest(r.Context(), s.deps.ASR.Name(), "asr", "ok")
	}

	writeJSON(w, http.StatusOK, buildASRResponse(result.Text, result.Words, expected))
}

// buildASRResponse assembles the recognition payload: word timings (provider
// ones when present, synthesized placeholder windows otherwise), the Jaccard
// accuracy score, and the misread-word report.
func buildASRResponse(text string, words []asr.Word, expected string) asrResponse {
	if len(words) == 0 {
		words = reading.SynthesizeTimings(strings.Fields(text))
	}

	out := make([]asrWord, len(words))
	for i, wd := range words {
		out[i] = asrWord{Word: wd.Text, Start: wd.Start, End: wd.End}
	}

	misread := reading.MisreadWords(text, expected)
	if misread == nil {
		misread = []string{}
	}

	return asrResponse{
		OK:           true,
		Text:         text,
		WordCount:    len(out),
		Words:        out,
		Accuracy:     reading.Accuracy(text, expected),
		MisreadWords: misread,
	}
}

// spoolUpload copies an uploaded file to a uniquely named temp file and
// returns its path. The caller owns removal.
func spoolUpload(src io.Reader, filename string) (string, error) {
	ext := filepath.Ext(filename)
	path := filepath.Join(os.TempDir(), "asr-"+uuid.NewString()+ext)

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(path)
		return "", err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}
