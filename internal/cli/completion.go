package cli

import (
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/netgrid/pkg/graph"
	"github.com/matzehuels/netgrid/pkg/pipeline"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for netgrid.

To load completions:

Bash:
  $ source <(netgrid completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ netgrid completion bash > /etc/bash_completion.d/netgrid
  # macOS:
  $ netgrid completion bash > $(brew --prefix)/etc/bash_completion.d/netgrid

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ netgrid completion zsh > "${fpath[1]}/_netgrid"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ netgrid completion fish | source

  # To load completions for each session, execute once:
  $ netgrid completion fish > ~/.config/fish/completions/netgrid.fish

PowerShell:
  PS> netgrid completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> netgrid completion powershell > netgrid.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			}
			return nil
		},
	}

	return cmd
}

// completeFrames completes --frame with the cells of the layout named by the
// first argument.
func completeFrames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	l, err := graph.ReadLayoutFile(args[0])
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var cells []string
	for _, f := range l.Frames {
		if strings.HasPrefix(f.Cell, toComplete) {
			cells = append(cells, f.Cell)
		}
	}
	return cells, cobra.ShellCompDirectiveNoFileComp
}

// completeFormats completes a comma-separated --format list.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
	}
	var out []string
	for f := range pipeline.ValidFormats {
		out = append(out, prefix+f)
	}
	sort.Strings(out)
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
