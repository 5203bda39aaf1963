package httpapi

import (
	"encoding/json"
	"net/http"
)

// Error codes surfaced to clients in the "error" field. Status codes follow
// conventional HTTP semantics: 400 malformed or missing input, 500 unexpected
// local failure, 502 upstream failure or no provider configured, 504 race
// deadline exceeded.
const (
	CodeMissingInput     = "MISSING_INPUT"
	CodeNoProvider       = "NO_PROVIDER"
	CodeDeadlineExceeded = "DEADLINE_EXCEEDED"
	CodeUpstreamFailure  = "UPSTREAM_FAILURE"
	CodeEmptyGeneration  = "EMPTY_GENERATION"
	CodeLocalFailure     = "LOCAL_FAILURE"
)

// errorBody is the JSON shape of every failure response. Fallback carries
// renderable stand-in text on the one endpoint that degrades gracefully.
type errorBody struct {
	OK       bool   `json:"ok"`
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"ok":false,"error":"LOCAL_FAILURE"}`, http.StatusInternalServerError)
	}
}

// writeError writes a structured failure response with the given status,
// error code, and human-readable message.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Error: code, Message: message})
}
