package anyllm

import (
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
)

// TestNew_EmptyProviderName ensures constructor rejects an empty provider name.
func TestNew_EmptyProviderName(t *testing.T) {
	_, err := New("", "gemini-2.0-flash")
	if err == nil {
		t.Fatal("expected error for empty provider name")
	}
}

// TestNew_EmptyModel ensures constructor rejects an empty model.
func TestNew_EmptyModel(t *testing.T) {
	_, err := New("gemini", "")
	if err == nil {
		t.Fatal("expected error for empty model")
	}
}

// TestNew_UnsupportedProvider ensures unknown backends are rejected.
func TestNew_UnsupportedProvider(t *testing.T) {
	_, err := New("yolollm", "some-model")
	if err == nil {
		t.Fatal("expected error for unsupported provider")
	}
}

// TestNew_NameLowercased checks the provider name normalisation.
func TestNew_NameLowercased(t *testing.T) {
	p, err := New("Gemini", "gemini-2.0-flash", anyllmlib.WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "gemini" {
		t.Errorf("expected name 'gemini', got %q", p.Name())
	}
}

// TestBuildParams_Messages checks system and user message conversion.
func TestBuildParams_Messages(t *testing.T) {
	p := &Provider{name: "gemini", model: "gemini-2.0-flash"}
	params := p.buildParams(chat.Request{
		SystemPrompt: "Jesteś lektorem.",
		Prompt:       "Napisz zdanie.",
	})
	if params.Model != "gemini-2.0-flash" {
		t.Errorf("expected model gemini-2.0-flash, got %q", params.Model)
	}
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].Role != anyllmlib.RoleSystem {
		t.Errorf("expected system role first, got %q", params.Messages[0].Role)
	}
	if params.Messages[1].Role != anyllmlib.RoleUser {
		t.Errorf("expected user role second, got %q", params.Messages[1].Role)
	}
}

// TestBuildParams_Tuning checks temperature and max token propagation.
func TestBuildParams_Tuning(t *testing.T) {
	p := &Provider{name: "gemini", model: "gemini-2.0-flash"}
	params := p.buildParams(chat.Request{
		Prompt:      "Hej",
		Temperature: 0.7,
		MaxTokens:   128,
	})
	if params.Temperature == nil || *params.Temperature != 0.7 {
		t.Errorf("expected temperature 0.7, got %v", params.Temperature)
	}
	if params.MaxTokens == nil || *params.MaxTokens != 128 {
		t.Errorf("expected max tokens 128, got %v", params.MaxTokens)
	}
}

// TestBuildParams_ZeroTuningOmitted checks that zero values stay nil.
func TestBuildParams_ZeroTuningOmitted(t *testing.T) {
	p := &Provider{name: "gemini", model: "gemini-2.0-flash"}
	params := p.buildParams(chat.Request{Prompt: "Hej"})
	if params.Temperature != nil {
		t.Error("expected nil temperature")
	}
	if params.MaxTokens != nil {
		t.Error("expected nil max tokens")
	}
}
