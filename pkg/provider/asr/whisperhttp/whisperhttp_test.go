package whisperhttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/asr"
)

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "speech.wav")
	if err := os.WriteFile(path, []byte("RIFF....WAVEfmt "), 0o644); err != nil {
		t.Fatalf("write temp audio: %v", err)
	}
	return path
}

func TestTranscribe_Success(t *testing.T) {
	var gotLanguage, gotModel string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/inference" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		gotModel = r.FormValue("model")
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("missing file part: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"text": "Ala ma kota"}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL, WithModel("base"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := p.Transcribe(context.Background(), asr.Request{FilePath: writeTempAudio(t)})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "Ala ma kota" {
		t.Errorf("expected text 'Ala ma kota', got %q", res.Text)
	}
	if len(res.Words) != 0 {
		t.Errorf("whisper-server has no word timing, expected empty words, got %d", len(res.Words))
	}
	if gotLanguage != defaultLanguage {
		t.Errorf("expected default language %q, got %q", defaultLanguage, gotLanguage)
	}
	if gotModel != "base" {
		t.Errorf("expected model 'base', got %q", gotModel)
	}
}

func TestTranscribe_RequestLanguageWins(t *testing.T) {
	var gotLanguage string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotLanguage = r.FormValue("language")
		w.Write([]byte(`{"text": "ok"}`))
	}))
	defer srv.Close()

	p, err := New(srv.URL, WithLanguage("pl"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Transcribe(context.Background(), asr.Request{
		FilePath: writeTempAudio(t),
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if gotLanguage != "en" {
		t.Errorf("expected request language to win, got %q", gotLanguage)
	}
}

func TestTranscribe_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p, err := New(srv.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	_, err = p.Transcribe(context.Background(), asr.Request{FilePath: writeTempAudio(t)})
	if err == nil {
		t.Fatal("expected error for HTTP 503")
	}
}

func TestTranscribe_MissingFile(t *testing.T) {
	p, err := New("http://localhost:9999")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = p.Transcribe(context.Background(), asr.Request{FilePath: "/nonexistent/audio.wav"})
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNew_EmptyServerURL(t *testing.T) {
	_, err := New("")
	if err == nil {
		t.Fatal("expected error for empty server URL")
	}
}

func TestName(t *testing.T) {
	p, err := New("http://localhost:8080")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if p.Name() != "whisper" {
		t.Errorf("expected name 'whisper', got %q", p.Name())
	}
}
