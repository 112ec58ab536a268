package cli

import (
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/model"
	"github.com/ulikoehler/slinktree/pkg/pipeline"
)

// treeOptions controls tree output.
type treeOptions struct {
	blocks   bool // list every block, not only subsystems
	maxDepth int  // 0 means unlimited
}

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	var (
		flags loadFlags
		opts  treeOptions
	)

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the hierarchy of nested systems",
		Long: `Print the hierarchy of nested systems.

The input may be a system XML file, an .slx archive or a binary container.
Every subsystem reference is resolved first, so the tree shows the model as
a whole, with the file each subsystem was read from.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeModelFile,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withRunner(cmd, &flags, args[0], func(_ *pipeline.Runner, res *pipeline.Result) error {
				writeTree(stdout, res.Doc, opts)
				printStats(res.Stats, res.CacheHit)
				return nil
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVarP(&opts.blocks, "blocks", "b", false, "list all blocks, not only subsystems")
	cmd.Flags().IntVarP(&opts.maxDepth, "depth", "d", 0, "maximum nesting depth to print (0 = unlimited)")

	return cmd
}

// writeTree prints doc as an indented tree.
func writeTree(w io.Writer, doc *model.SystemDoc, opts treeOptions) {
	title := doc.Root.Name()
	if title == "" {
		title = path.Base(doc.Source)
	}
	fmt.Fprintln(w, StyleTitle.Render(title)+" "+StyleDim.Render(doc.Source))
	writeSystem(w, doc.Root, "", 1, opts)
}

func writeSystem(w io.Writer, sys *model.System, prefix string, depth int, opts treeOptions) {
	var children []*model.Block
	for _, b := range sys.Blocks {
		if opts.blocks || b.IsSubsystem() {
			children = append(children, b)
		}
	}

	for i, b := range children {
		branch, indent := "├── ", "│   "
		if i == len(children)-1 {
			branch, indent = "└── ", "    "
		}
		fmt.Fprintln(w, prefix+styleTreeBranch.Render(branch)+blockLabel(b))
		if b.System != nil && (opts.maxDepth == 0 || depth < opts.maxDepth) {
			writeSystem(w, b.System, prefix+styleTreeBranch.Render(indent), depth+1, opts)
		}
	}
}

func blockLabel(b *model.Block) string {
	name := b.Name
	if name == "" {
		name = "#" + b.ID
	}
	label := name + " " + styleBlockType.Render("["+b.Type+"]")
	if b.System == nil {
		return label
	}
	if b.Ref != "" {
		label += " " + StyleHighlight.Render(b.System.Path)
	}
	return label + StyleDim.Render(fmt.Sprintf(" · %d blocks", len(b.System.Blocks)))
}
