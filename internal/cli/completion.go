package cli

import (
	"github.com/spf13/cobra"

	"github.com/ulikoehler/slinktree/pkg/render"
)

// modelExts are the file extensions offered when completing a model argument.
var modelExts = []string{"xml", "slx", "sltb", "xz"}

// completionCommand creates the completion command.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for slinktree.

Model arguments complete to .xml, .slx and .sltb files, and --format to the
supported diagram formats.

  $ source <(slinktree completion bash)
  $ slinktree completion zsh > "${fpath[1]}/_slinktree"
  $ slinktree completion fish > ~/.config/fish/completions/slinktree.fish
  PS> slinktree completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(cmd.OutOrStdout(), true)
			case "zsh":
				return cmd.Root().GenZshCompletion(cmd.OutOrStdout())
			case "fish":
				return cmd.Root().GenFishCompletion(cmd.OutOrStdout(), true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
			}
			return nil
		},
	}
}

// completeModelFile completes the single model argument of a command.
func completeModelFile(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return modelExts, cobra.ShellCompDirectiveFilterFileExt
}

func completeFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{render.FormatSVG, render.FormatDOT}, cobra.ShellCompDirectiveNoFileComp
}
