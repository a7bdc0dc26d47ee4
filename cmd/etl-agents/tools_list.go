package etlagents

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/temirov/etl-agents/internal/tools"
)

func newToolsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   toolsCommandUse,
		Short: toolsCommandShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := tools.NewRegistry()
			registry.Register(tools.OrderConsistencyTool{})
			registry.Register(tools.RowLevelDiffTool{})
			for _, name := range registry.Names() {
				if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
