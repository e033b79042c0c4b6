package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/patchflow/patchflow/engine/stream"
	"github.com/patchflow/patchflow/pkg/logger"
)

func ProcessCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process [file]",
		Short: "Process an outer event stream into derived events",
		Long: "Reads outer events (one JSON object per line) from a file or stdin, " +
			"routes text deltas through the patch/text pipeline, and writes the " +
			"derived event sequence to stdout.",
		Args: cobra.MaximumNArgs(1),
		RunE: runProcess,
	}
	cmd.Flags().String("format", "", "Output format: jsonl or sse")
	cmd.Flags().String("on-patch-error", "", "Patch failure policy: halt or skip")
	return cmd
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := setupContext(cmd, cfg)
	log := logger.FromContext(ctx)

	in, err := openInput(args)
	if err != nil {
		return err
	}
	defer in.Close()

	emit, err := newEmitter(cfg.Stream.Format, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	orch := stream.New(
		stream.NewJSONLSource(in),
		stream.WithErrorPolicy(stream.ErrorPolicy(cfg.Stream.OnPatchError)),
	)
	defer orch.Close()

	events := 0
	for {
		ev, err := orch.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("process stream: %w", err)
		}
		if err := emit(ev); err != nil {
			return fmt.Errorf("emit event: %w", err)
		}
		events++
	}
	log.Debug("Stream completed", "events", events)
	return nil
}

// newEmitter picks the derived-event encoding for stdout.
func newEmitter(format string, out io.Writer) (func(stream.Event) error, error) {
	switch format {
	case "", "jsonl":
		enc := json.NewEncoder(out)
		return func(ev stream.Event) error { return enc.Encode(ev) }, nil
	case "sse":
		w := stream.NewSSEWriter(out)
		return w.WriteEvent, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}
