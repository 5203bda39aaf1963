package httpapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/imageprep"
)

// maxImageUpload bounds the multipart form size for /ocr.
const maxImageUpload = 15 << 20

// mockOCRText is the canned /ocr result in mock mode.
const mockOCRText = "Ala ma kota. Kot ma Alę."

// ocrResponse is the JSON shape of a successful /ocr call. Confidence is in
// [0, 1] and omitted when the engine reports none.
type ocrResponse struct {
	OK         bool     `json:"ok"`
	Text       string   `json:"text"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// handleOCR implements POST /ocr: multipart field "image".
func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	if s.mocksConfig().OCR {
		conf := 1.0
		writeJSON(w, http.StatusOK, ocrResponse{OK: true, Text: mockOCRText, Confidence: &conf})
		return
	}

	if err := r.ParseMultipartForm(maxImageUpload); err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "expected multipart form with an image file")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeMissingInput, "missing image file")
		return
	}
	defer file.Close()

	if s.deps.OCR == nil {
		writeError(w, http.StatusBadGateway, CodeNoProvider, "no OCR engine configured")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, CodeLocalFailure, "cannot read uploaded image")
		return
	}

	start := time.Now()
	result, err := s.deps.OCR.Extract(r.Context(), data)
	if s.deps.Metrics != nil {
		s.deps.Metrics.OCRDuration.Record(r.Context(), time.Since(start).Seconds())
	}
	if err != nil {
		if errors.Is(err, imageprep.ErrBadImage) {
			writeError(w, http.StatusBadRequest, CodeMissingInput, "uploaded file is not a decodable image")
			return
		}
		slog.Error("ocr extraction failed", "engine", s.deps.OCR.Engine().Name(), "err", err)
		writeError(w, http.StatusInternalServerError, CodeLocalFailure, "text extraction failed")
		return
	}

	resp := ocrResponse{OK: true, Text: result.Text}
	if result.Confidence > 0 {
		conf := result.Confidence
		resp.Confidence = &conf
	}
	writeJSON(w, http.StatusOK, resp)
}
