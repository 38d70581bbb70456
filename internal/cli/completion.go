package cli

import (
	"os"

	"github.com/spf13/cobra"
)

// completionCommand generates shell completion scripts so targets and
// flags like --format tab-complete in interactive shells.
func (c *CLI) completionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate a shell completion script for ` + appName + `.

Bash:
  $ source <(` + appName + ` completion bash)

  # To persist, execute once:
  $ ` + appName + ` completion bash > /etc/bash_completion.d/` + appName + `

Zsh:
  # Enable completion if your environment does not already:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ ` + appName + ` completion zsh > "${fpath[1]}/_` + appName + `"

Fish:
  $ ` + appName + ` completion fish | source

  # To persist, execute once:
  $ ` + appName + ` completion fish > ~/.config/fish/completions/` + appName + `.fish

PowerShell:
  PS> ` + appName + ` completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletion(os.Stdout)
			case "zsh":
				return root.GenZshCompletion(os.Stdout)
			case "fish":
				return root.GenFishCompletion(os.Stdout, true)
			default:
				return root.GenPowerShellCompletionWithDesc(os.Stdout)
			}
		},
	}
}
