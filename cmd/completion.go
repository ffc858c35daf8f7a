package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// completionCmd represents the completion command
var completionCmd = &cobra.Command{
	Use:       "completion bash|zsh",
	Short:     "Generate the completion script for the specified shell",
	ValidArgs: []string{"bash", "zsh"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `To load completions:

Bash:

  $ source <(%[1]s completion bash), e.g. source <(tokengas completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ %[1]s completion bash > /etc/bash_completion.d/%[1]s
  # macOS:
  $ %[1]s completion bash > $(brew --prefix)/etc/bash_completion.d/%[1]s

Zsh:

  $ %[1]s completion zsh > "${fpath[1]}/_%[1]s"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return errors.Wrap(cmd.Root().GenBashCompletion(cmd.OutOrStdout()), "unable to generate a bash completion")
		case "zsh":
			return errors.Wrap(cmd.Root().GenZshCompletion(cmd.OutOrStdout()), "unable to generate a zsh completion")
		}
		return errors.Errorf("unsupported shell %s", args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
