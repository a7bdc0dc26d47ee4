package etlagents

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/temirov/etl-agents/internal/tools"
)

type rowDiffCommandOptions struct {
	configPath string
	workingDir string
	sourceFile string
	targetFile string
	threshold  float64
	timeout    time.Duration
}

func newRowDiffCommand() *cobra.Command {
	options := &rowDiffCommandOptions{}

	command := &cobra.Command{
		Use:   rowDiffCommandUse,
		Short: rowDiffCommandShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRowDiffCommand(cmd, *options)
		},
	}
	command.Flags().StringVar(&options.configPath, configFlagName, "", configFlagUsage)
	command.Flags().StringVar(&options.workingDir, workingDirFlagName, "", workingDirFlagUsage)
	command.Flags().StringVar(&options.sourceFile, sourceFlagName, "", sourceFlagUsage)
	command.Flags().StringVar(&options.targetFile, targetFlagName, "", targetFlagUsage)
	command.Flags().Float64Var(&options.threshold, thresholdFlagName, 0, thresholdFlagUsage)
	command.Flags().DurationVar(&options.timeout, timeoutFlagName, 0, timeoutFlagUsage)
	_ = command.MarkFlagRequired(workingDirFlagName)
	_ = command.MarkFlagRequired(sourceFlagName)
	_ = command.MarkFlagRequired(targetFlagName)
	return command
}

func runRowDiffCommand(command *cobra.Command, options rowDiffCommandOptions) error {
	rootConfiguration, configErr := loadRootConfiguration(options.configPath)
	if configErr != nil {
		return configErr
	}
	logger, loggerErr := buildLogger(rootConfiguration)
	if loggerErr != nil {
		return loggerErr
	}
	defer func() { _ = logger.Sync() }()

	coordinator, buildErr := buildCoordinator(rootConfiguration, logger, options.timeout, false)
	if buildErr != nil {
		return buildErr
	}

	registry := tools.NewRegistry()
	registry.Register(tools.RowLevelDiffTool{Coordinator: coordinator})

	arguments := map[string]string{
		"working_dir": options.workingDir,
		"source_file": options.sourceFile,
		"target_file": options.targetFile,
	}
	if options.threshold > 0 {
		arguments["similarity_threshold"] = strconv.FormatFloat(options.threshold, 'f', -1, 64)
	}

	invocation, invokeErr := registry.Invoke(command.Context(), tools.RowLevelDiffToolName, arguments)
	if invokeErr != nil {
		return invokeErr
	}
	return reportInvocation(command, invocation)
}
