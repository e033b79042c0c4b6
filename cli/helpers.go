package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/patchflow/patchflow/pkg/config"
	"github.com/patchflow/patchflow/pkg/logger"
)

// loadConfig assembles the runtime configuration, letting command flags win
// over environment and defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level, _ = cmd.Flags().GetString("log-level")
	}
	if cmd.Flags().Changed("log-json") {
		cfg.Log.JSON, _ = cmd.Flags().GetBool("log-json")
	}
	if cmd.Flags().Changed("format") {
		cfg.Stream.Format, _ = cmd.Flags().GetString("format")
	}
	if cmd.Flags().Changed("on-patch-error") {
		cfg.Stream.OnPatchError, _ = cmd.Flags().GetString("on-patch-error")
	}
	return cfg, nil
}

// setupContext attaches a configured logger to the command context.
func setupContext(cmd *cobra.Command, cfg *config.Config) context.Context {
	log := logger.NewLogger(&logger.Config{
		Level:     logger.LogLevel(cfg.Log.Level),
		Output:    cmd.ErrOrStderr(),
		JSON:      cfg.Log.JSON,
		AddSource: cfg.Log.AddSource,
	})
	return logger.ContextWithLogger(cmd.Context(), log)
}

// openInput returns the input reader for an optional file argument, falling
// back to stdin.
func openInput(args []string) (io.ReadCloser, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}
