package cli

import (
	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/export"
	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

// jsonCommand creates the json export command.
func (c *CLI) jsonCommand() *cobra.Command {
	var (
		flags  loadFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "json <file>",
		Short: "Export the resolved model as JSON",
		Long: `Export the resolved model as JSON.

Properties keep their source order and port references use the same
"SID#kind:index" notation as the model files. Without -o the document is
written to stdout.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeModelFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd, &flags, args[0], func(_ *pipeline.Runner, res *pipeline.Result) error {
				if output == "" {
					return export.WriteJSON(stdout, res.Doc)
				}
				if err := export.ExportJSON(res.Doc, output); err != nil {
					return err
				}
				printSuccess("Exported %s", args[0])
				printStats(res.Stats, res.CacheHit)
				printFile(output)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")

	return cmd
}
