package cli

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patchflow/patchflow/engine/document"
	"github.com/patchflow/patchflow/engine/stream"
	"github.com/patchflow/patchflow/pkg/logger"
)

func BuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [file]",
		Short: "Fold a patch-per-line file into a final document snapshot",
		Long: "Reads raw lines from a file or stdin, keeps those that classify " +
			"as patches, folds them in order, and prints the resulting document " +
			"as indented JSON.",
		Args: cobra.MaximumNArgs(1),
		RunE: runBuild,
	}
}

func runBuild(cmd *cobra.Command, args []string) error {
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

	var patches []*document.Patch
	skipped := 0
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		parsed, ok := stream.ClassifyLine(scanner.Text())
		if !ok {
			continue
		}
		if parsed.Kind != stream.LinePatch {
			skipped++
			continue
		}
		patches = append(patches, parsed.Patch)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read patches: %w", err)
	}
	if skipped > 0 {
		log.Debug("Ignored non-patch lines", "count", skipped)
	}

	doc, err := document.Build(patches)
	if err != nil {
		return fmt.Errorf("build document: %w", err)
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
