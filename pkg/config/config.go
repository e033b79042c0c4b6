package config

// Config holds every runtime setting for the processor. Values come from
// defaults, then environment overrides (PATCHFLOW_*), highest last.
type Config struct {
	Log    LogConfig    `koanf:"log"    validate:"required"`
	Stream StreamConfig `koanf:"stream" validate:"required"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level     string `koanf:"level"      validate:"oneof=debug info warn error"`
	JSON      bool   `koanf:"json"`
	AddSource bool   `koanf:"add_source"`
}

// StreamConfig controls orchestrator behavior.
type StreamConfig struct {
	// OnPatchError picks what happens when a patch fails to apply mid-stream:
	// halt ends the derived sequence, skip logs and continues.
	OnPatchError string `koanf:"on_patch_error" validate:"oneof=halt skip"`
	// Format selects the derived-event output encoding.
	Format string `koanf:"format" validate:"oneof=jsonl sse"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Stream: StreamConfig{
			OnPatchError: "halt",
			Format:       "jsonl",
		},
	}
}
