package etlagents

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/etl-agents/internal/align"
	"github.com/temirov/etl-agents/internal/config"
	"github.com/temirov/etl-agents/internal/fsops"
	"github.com/temirov/etl-agents/internal/llm"
	"github.com/temirov/etl-agents/internal/pipeline"
	"github.com/temirov/etl-agents/internal/reconcile"
	"github.com/temirov/etl-agents/internal/tabular"
)

func buildLogger(root config.Root) (*zap.Logger, error) {
	level, levelErr := zap.ParseAtomicLevel(root.Common.Logging.Level)
	if levelErr != nil {
		return nil, fmt.Errorf("parse logging level %q: %w", root.Common.Logging.Level, levelErr)
	}
	loggerConfiguration := zap.NewProductionConfig()
	if root.Common.Logging.Format == "console" {
		loggerConfiguration = zap.NewDevelopmentConfig()
	}
	loggerConfiguration.Level = level
	return loggerConfiguration.Build()
}

func loadRootConfiguration(explicitPath string) (config.Root, error) {
	workingDirectory, workingDirectoryErr := os.Getwd()
	if workingDirectoryErr != nil {
		return config.Root{}, fmt.Errorf("determine working directory: %w", workingDirectoryErr)
	}
	return config.Load(explicitPath, workingDirectory, os.Getenv("HOME"))
}

// buildCoordinator wires the pipeline from configuration. The API key is
// resolved here, at the process boundary; nothing under internal/ reads the
// environment. needBackends is false for operations that never call a model
// (rowdiff), so they run without credentials.
func buildCoordinator(root config.Root, logger *zap.Logger, timeoutOverride time.Duration, needBackends bool) (pipeline.Coordinator, error) {
	apiKeyEnvironmentVariable := strings.TrimSpace(root.Common.API.APIKeyEnv)
	apiKey := strings.TrimSpace(os.Getenv(apiKeyEnvironmentVariable))
	if apiKey == "" && needBackends {
		return pipeline.Coordinator{}, fmt.Errorf("missing API key: set %s", apiKeyEnvironmentVariable)
	}

	httpClient := llm.Client{
		HTTPBaseURL: strings.TrimSpace(root.Common.API.Endpoint),
		APIKey:      apiKey,
	}

	backends := make([]align.Backend, 0, len(root.Models))
	for _, model := range root.Models {
		backends = append(backends, llm.ModelBackend{
			Client:              httpClient,
			BackendName:         model.Name,
			ModelID:             model.ModelID,
			MaxTokens:           model.MaxCompletionTokens,
			Temperature:         model.DefaultTemperature,
			SupportsTemperature: model.SupportsTemperature,
			MaxRetries:          uint64(root.Common.Defaults.MaxRetries),
		})
	}

	judgeModel, _ := root.FindModel(root.Judge.Model)
	judgeBackend := llm.ModelBackend{
		Client:              httpClient,
		BackendName:         judgeModel.Name,
		ModelID:             judgeModel.ModelID,
		MaxTokens:           judgeModel.MaxCompletionTokens,
		Temperature:         judgeModel.DefaultTemperature,
		SupportsTemperature: judgeModel.SupportsTemperature,
		MaxRetries:          uint64(root.Common.Defaults.MaxRetries),
	}

	pipelineTimeout := time.Duration(root.Common.Defaults.PipelineTimeoutSeconds) * time.Second
	if timeoutOverride > 0 {
		pipelineTimeout = timeoutOverride
	}

	fileSystem := fsops.NewOS()
	return pipeline.Coordinator{
		Loader: tabular.NewLoader(fileSystem),
		Generator: align.Generator{
			Backends: backends,
			Timeout:  time.Duration(root.Common.Defaults.BackendTimeoutSeconds) * time.Second,
			Logger:   logger,
		},
		Judge:      align.Judge{Backend: judgeBackend, Logger: logger},
		Writer:     pipeline.NewArtifactWriter(fileSystem),
		Reconcile:  reconcile.Options{MinSimilarity: root.Reconcile.MinSimilarity},
		SampleRows: root.Common.Defaults.ProblemSampleRows,
		Timeout:    pipelineTimeout,
		Logger:     logger,
	}, nil
}
