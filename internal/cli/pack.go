package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/codec"
	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

// containerExt is the conventional binary container extension.
const containerExt = ".sltb"

// packCommand creates the pack command.
func (c *CLI) packCommand() *cobra.Command {
	var (
		flags    loadFlags
		output   string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "pack <file>",
		Short: "Resolve a model and write a binary container",
		Long: `Resolve a model and write a binary container.

Containers load much faster than the XML they were built from and can be
passed to every other command in place of the original model. Outputs
ending in .xz (or written with --xz) are compressed.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeModelFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = defaultContainerPath(args[0])
			}
			if compress && !strings.HasSuffix(output, codec.CompressedExt) {
				output += codec.CompressedExt
			}
			return c.withRunner(cmd, &flags, args[0], func(_ *pipeline.Runner, res *pipeline.Result) error {
				st := startStage(c.Logger, "pack", "output", output)
				size, err := pipeline.SaveBinary(cmd.Context(), output, res.Doc)
				if err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				st.end("files", res.Stats.Files, "bytes", size)

				printSuccess("Packed %s", args[0])
				printStats(res.Stats, res.CacheHit)
				printKeyValue("Size", formatBytes(size))
				printFile(output)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.sltb)")
	cmd.Flags().BoolVar(&compress, "xz", false, "compress the container with xz")

	return cmd
}

// defaultContainerPath derives "<dir>/<name>.sltb" from an input path.
func defaultContainerPath(input string) string {
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(filepath.Dir(input), base+containerExt)
}

// formatBytes renders a byte count with a binary unit.
func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
