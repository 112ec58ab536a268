package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

// findCommand creates the find command.
func (c *CLI) findCommand() *cobra.Command {
	var (
		flags     loadFlags
		blockType string
	)

	cmd := &cobra.Command{
		Use:               "find <file> --type <BlockType>",
		Short:             "List blocks of a type with their block paths",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeModelFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd, &flags, args[0], func(_ *pipeline.Runner, res *pipeline.Result) error {
				matches := res.Doc.Root.FindBlocksByType(blockType)
				if len(matches) == 0 {
					printInfo("No %s blocks", blockType)
					return nil
				}
				for _, m := range matches {
					fmt.Fprintln(stdout, StyleValue.Render(m.Path)+" "+StyleDim.Render("SID "+m.Block.ID))
				}
				printDetail("%d %s blocks", len(matches), blockType)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVarP(&blockType, "type", "t", "", "block type to search for, e.g. Gain (required)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}
