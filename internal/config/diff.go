package config

// ConfigDiff describes what changed between two configs.
// Only fields that can be safely hot-reloaded are tracked.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// MocksChanged is true if any mock-mode flag flipped.
	MocksChanged bool
	NewMocks     MocksConfig

	// GenerationChanged is true if any race/post-processing knob changed.
	GenerationChanged bool
	NewGeneration     GenerationConfig
}

// Empty reports whether the diff carries no reloadable change.
func (d ConfigDiff) Empty() bool {
	return !d.LogLevelChanged && !d.MocksChanged && !d.GenerationChanged
}

// Diff compares old and new configs and returns what changed.
// Only tracks changes that are safe to apply without restart; provider
// entries and OCR tuning require a restart because clients and the admission
// gate are constructed once at startup.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	if old.Mocks != new.Mocks {
		d.MocksChanged = true
		d.NewMocks = new.Mocks
	}

	if old.Generation != new.Generation {
		d.GenerationChanged = true
		d.NewGeneration = new.Generation
	}

	return d
}
