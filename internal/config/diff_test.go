package config_test

import (
	"testing"

	"github.com/tomekkedziera-maker/poczytajmy-backend/internal/config"
)

func TestDiff_NoChanges(t *testing.T) {
	t.Parallel()
	cfg := &config.Config{
		Server: config.ServerConfig{LogLevel: config.LogInfo},
		Mocks:  config.MocksConfig{Text: true},
		Generation: config.GenerationConfig{
			RaceDeadlineMS:     1200,
			MotivationMaxChars: 160,
		},
	}
	d := config.Diff(cfg, cfg)
	if !d.Empty() {
		t.Errorf("expected empty diff for identical configs, got %+v", d)
	}
}

func TestDiff_LogLevelChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Server: config.ServerConfig{LogLevel: config.LogInfo}}
	new := &config.Config{Server: config.ServerConfig{LogLevel: config.LogDebug}}

	d := config.Diff(old, new)
	if !d.LogLevelChanged {
		t.Error("expected LogLevelChanged=true")
	}
	if d.NewLogLevel != config.LogDebug {
		t.Errorf("expected NewLogLevel=debug, got %q", d.NewLogLevel)
	}
	if d.MocksChanged || d.GenerationChanged {
		t.Error("expected only the log level to change")
	}
	if d.Empty() {
		t.Error("expected non-empty diff")
	}
}

func TestDiff_MocksChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{Mocks: config.MocksConfig{ASR: false, Text: false}}
	new := &config.Config{Mocks: config.MocksConfig{ASR: true, Text: false}}

	d := config.Diff(old, new)
	if !d.MocksChanged {
		t.Error("expected MocksChanged=true")
	}
	if !d.NewMocks.ASR {
		t.Error("expected NewMocks.ASR=true")
	}
	if d.LogLevelChanged {
		t.Error("expected LogLevelChanged=false")
	}
}

func TestDiff_GenerationChanged(t *testing.T) {
	t.Parallel()
	old := &config.Config{
		Generation: config.GenerationConfig{RaceDeadlineMS: 1200},
	}
	new := &config.Config{
		Generation: config.GenerationConfig{RaceDeadlineMS: 2000},
	}

	d := config.Diff(old, new)
	if !d.GenerationChanged {
		t.Error("expected GenerationChanged=true")
	}
	if d.NewGeneration.RaceDeadlineMS != 2000 {
		t.Errorf("expected NewGeneration.RaceDeadlineMS=2000, got %d", d.NewGeneration.RaceDeadlineMS)
	}
}

func TestDiff_ProviderChangeIsNotReloadable(t *testing.T) {
	t.Parallel()
	old := &config.Config{
		Providers: config.ProvidersConfig{
			Chat: []config.ProviderEntry{{Name: "openai"}},
		},
	}
	new := &config.Config{
		Providers: config.ProvidersConfig{
			Chat: []config.ProviderEntry{{Name: "gemini"}},
		},
	}

	// Provider swaps need a restart, so the diff stays empty.
	if d := config.Diff(old, new); !d.Empty() {
		t.Errorf("expected empty diff for provider-only change, got %+v", d)
	}
}

func TestDiff_MultipleChanges(t *testing.T) {
	t.Parallel()
	old := &config.Config{
		Server:     config.ServerConfig{LogLevel: config.LogInfo},
		Mocks:      config.MocksConfig{OCR: false},
		Generation: config.GenerationConfig{Temperature: 0.7},
	}
	new := &config.Config{
		Server:     config.ServerConfig{LogLevel: config.LogWarn},
		Mocks:      config.MocksConfig{OCR: true},
		Generation: config.GenerationConfig{Temperature: 0.9},
	}

	d := config.Diff(old, new)
	if !d.LogLevelChanged || !d.MocksChanged || !d.GenerationChanged {
		t.Errorf("expected all tracked sections to change, got %+v", d)
	}
}
