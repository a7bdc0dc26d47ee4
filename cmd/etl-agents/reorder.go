package etlagents

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/etl-agents/internal/tools"
)

type reorderCommandOptions struct {
	configPath string
	workingDir string
	sourceFile string
	targetFile string
	models     string
	timeout    time.Duration
}

func newReorderCommand() *cobra.Command {
	options := &reorderCommandOptions{}

	command := &cobra.Command{
		Use:   reorderCommandUse,
		Short: reorderCommandShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReorderCommand(cmd, *options)
		},
	}
	command.Flags().StringVar(&options.configPath, configFlagName, "", configFlagUsage)
	command.Flags().StringVar(&options.workingDir, workingDirFlagName, "", workingDirFlagUsage)
	command.Flags().StringVar(&options.sourceFile, sourceFlagName, "", sourceFlagUsage)
	command.Flags().StringVar(&options.targetFile, targetFlagName, "", targetFlagUsage)
	command.Flags().StringVar(&options.models, modelsFlagName, "", modelsFlagUsage)
	command.Flags().DurationVar(&options.timeout, timeoutFlagName, 0, timeoutFlagUsage)
	_ = command.MarkFlagRequired(workingDirFlagName)
	_ = command.MarkFlagRequired(sourceFlagName)
	_ = command.MarkFlagRequired(targetFlagName)
	return command
}

func runReorderCommand(command *cobra.Command, options reorderCommandOptions) error {
	rootConfiguration, configErr := loadRootConfiguration(options.configPath)
	if configErr != nil {
		return configErr
	}
	logger, loggerErr := buildLogger(rootConfiguration)
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	coordinator, buildErr := buildCoordinator(rootConfiguration, logger, options.timeout, true)
	if buildErr != nil {
		return buildErr
	}

	registry := tools.NewRegistry()
	registry.Register(tools.OrderConsistencyTool{Coordinator: coordinator})

	arguments := map[string]string{
		"working_dir": options.workingDir,
		"source_file": options.sourceFile,
		"target_file": options.targetFile,
	}
	if options.models != "" {
		arguments["models"] = options.models
	}

	invocation, invokeErr := registry.Invoke(command.Context(), tools.OrderConsistencyToolName, arguments)
	if invokeErr != nil {
		return invokeErr
	}
	return reportInvocation(command, invocation)
}

func reportInvocation(command *cobra.Command, invocation tools.Invocation) error {
	out := command.OutOrStdout()
	fmt.Fprintf(out, "status: %s\n", invocation.Status)
	for _, artifact := range invocation.Artifacts {
		fmt.Fprintf(out, "artifact: %s\n", artifact)
	}
	for _, message := range invocation.Messages {
		fmt.Fprintf(out, "note: %s\n", message)
	}
	if invocation.Status == "failed" {
		return fmt.Errorf("run failed")
	}
	return nil
}
