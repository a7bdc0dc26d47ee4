package etlagents

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	command := &cobra.Command{
		Use:           rootCommandUse,
		Short:         rootCommandShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	command.AddCommand(newReorderCommand())
	command.AddCommand(newRowDiffCommand())
	command.AddCommand(newToolsCommand())
	command.AddCommand(newConfigCommand())
	return command
}

// Execute runs the CLI and returns the terminal error, if any.
func Execute() error {
	return newRootCommand().Execute()
}
