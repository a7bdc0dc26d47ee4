package etlagents

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCommand() *cobra.Command {
	var configPath string

	command := &cobra.Command{
		Use:   configCommandUse,
		Short: configCommandShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rootConfiguration, configErr := loadRootConfiguration(configPath)
			if configErr != nil {
				return configErr
			}
			rendered, marshalErr := yaml.Marshal(rootConfiguration)
			if marshalErr != nil {
				return fmt.Errorf("render configuration: %w", marshalErr)
			}
			_, writeErr := cmd.OutOrStdout().Write(rendered)
			return writeErr
		},
	}
	command.Flags().StringVar(&configPath, configFlagName, "", configFlagUsage)
	return command
}
