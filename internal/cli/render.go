package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/pipeline"
	"github.com/ulikoehler/slinktree/pkg/render"
)

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags  loadFlags
		output string
		opts   = pipeline.RenderOptions{Format: render.FormatSVG}
	)

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Draw one system level as a node-link diagram",
		Long: `Draw one system level as a node-link diagram.

Blocks become nodes and lines become edges. Select a nested system by its
block path with --system, e.g. --system Controller/Inner. SVG output is laid
out in-process with Graphviz; DOT output can be fed to external tools.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeModelFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := render.ValidateFormat(opts.Format); err != nil {
				return err
			}
			return c.withRunner(cmd, &flags, args[0], func(runner *pipeline.Runner, res *pipeline.Result) error {
				data, hit, err := runner.Render(cmd.Context(), res.Doc, opts)
				if err != nil {
					return err
				}
				if output == "" {
					_, err := stdout.Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", output, err)
				}
				printSuccess("Rendered %s", args[0])
				printStats(res.Stats, res.CacheHit && hit)
				printFile(output)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.System, "system", "s", "", "block path of the system to draw (default: root)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", opts.Format, "output format: svg (default), dot")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "label nodes with block types and edges with ports")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormat)

	return cmd
}
