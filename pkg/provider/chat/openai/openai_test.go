package openai

import (
	"testing"

	"github.com/tomekkedziera-maker/poczytajmy-backend/pkg/provider/chat"
)

// TestBuildParams_SystemAndUser checks that both prompts become messages.
func TestBuildParams_SystemAndUser(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.buildParams(chat.Request{
		SystemPrompt: "Jesteś lektorem.",
		Prompt:       "Napisz zdanie.",
	})
	if len(params.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(params.Messages))
	}
	if params.Messages[0].OfSystem == nil {
		t.Error("expected first message to be a system message")
	}
	if params.Messages[1].OfUser == nil {
		t.Error("expected second message to be a user message")
	}
	if string(params.Model) != "gpt-4o-mini" {
		t.Errorf("expected model gpt-4o-mini, got %s", params.Model)
	}
}

// TestBuildParams_NoSystemPrompt checks that an empty system prompt is omitted.
func TestBuildParams_NoSystemPrompt(t *testing.T) {
	p := &Provider{model: "gpt-4o-mini"}
	params := p.buildParams(chat.Request{Prompt: "Hej"})
	if len(params.Messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(params.Messages))
	}
	if params.Messages[0].OfUser == nil {
		t.Error("expected a user message")
	}
}

// TestBuildParams_Tuning checks temperature and max token propagation.
func TestBuildParams_Tuning(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(chat.Request{
		Prompt:      "Hej",
		Temperature: 0.9,
		MaxTokens:   256,
	})
	if !params.Temperature.Valid() || params.Temperature.Value != 0.9 {
		t.Errorf("expected temperature 0.9, got %+v", params.Temperature)
	}
	if !params.MaxCompletionTokens.Valid() || params.MaxCompletionTokens.Value != 256 {
		t.Errorf("expected max tokens 256, got %+v", params.MaxCompletionTokens)
	}
}

// TestBuildParams_ZeroTuningOmitted checks that zero values stay unset.
func TestBuildParams_ZeroTuningOmitted(t *testing.T) {
	p := &Provider{model: "gpt-4o"}
	params := p.buildParams(chat.Request{Prompt: "Hej"})
	if params.Temperature.Valid() {
		t.Error("expected temperature to be unset")
	}
	if params.MaxCompletionTokens.Valid() {
		t.Error("expected max tokens to be unset")
	}
}

// TestNew_MissingAPIKey ensures constructor rejects an empty API key.
func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New("", "gpt-4o")
	if err == nil {
		t.Fatal("expected error for empty API key")
	}
}

// TestNew_DefaultModel checks the model fallback.
func TestNew_DefaultModel(t *testing.T) {
	p, err := New("sk-test", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.model != defaultModel {
		t.Errorf("expected model %q, got %q", defaultModel, p.model)
	}
	if p.Name() != "openai" {
		t.Errorf("expected name openai, got %q", p.Name())
	}
}
