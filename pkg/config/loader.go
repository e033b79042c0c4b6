package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PATCHFLOW_"

// Load assembles the configuration: struct defaults first, then PATCHFLOW_*
// environment overrides, then validation.
func Load(_ context.Context) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return transformEnvKey(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// transformEnvKey converts an environment variable name to a koanf path.
// The first underscore separates the section from the key, so
// STREAM_ON_PATCH_ERROR becomes stream.on_patch_error.
func transformEnvKey(key string) string {
	key = strings.ToLower(key)
	section, rest, found := strings.Cut(key, "_")
	if !found {
		return key
	}
	return section + "." + rest
}
