package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configurationFileBaseName   = "config"
	configurationFileType       = "yaml"
	homeConfigurationDirectory  = ".etl-agents"
	readConfigurationErrFormat  = "read configuration: %w"
	parseConfigurationErrFormat = "parse configuration: %w"
)

// Load resolves the root configuration with the preferred search order:
// explicit path, then config.yaml in workingDirectory, then
// ~/.etl-agents/config.yaml. A missing file is only an error when the path
// was explicit; otherwise defaults apply.
func Load(explicitPath, workingDirectory, homeDirectory string) (Root, error) {
	loader := viper.New()
	loader.SetConfigType(configurationFileType)
	setDefaults(loader)

	if explicitPath != "" {
		loader.SetConfigFile(explicitPath)
		if readErr := loader.ReadInConfig(); readErr != nil {
			return Root{}, fmt.Errorf(readConfigurationErrFormat, readErr)
		}
	} else {
		loader.SetConfigName(configurationFileBaseName)
		if workingDirectory != "" {
			loader.AddConfigPath(workingDirectory)
		}
		if homeDirectory != "" {
			loader.AddConfigPath(filepath.Join(homeDirectory, homeConfigurationDirectory))
		}
		if readErr := loader.ReadInConfig(); readErr != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(readErr, &notFound) {
				return Root{}, fmt.Errorf(readConfigurationErrFormat, readErr)
			}
		}
	}

	var root Root
	if unmarshalErr := loader.Unmarshal(&root); unmarshalErr != nil {
		return Root{}, fmt.Errorf(parseConfigurationErrFormat, unmarshalErr)
	}
	if validateErr := root.Validate(); validateErr != nil {
		return Root{}, validateErr
	}
	return root, nil
}

func setDefaults(loader *viper.Viper) {
	loader.SetDefault("common.api.endpoint", "https://api.openai.com/v1")
	loader.SetDefault("common.api.api_key_env", "OPENAI_API_KEY")
	loader.SetDefault("common.logging.level", "info")
	loader.SetDefault("common.logging.format", "json")
	loader.SetDefault("common.defaults.backend_timeout_seconds", defaultBackendTimeoutSecs)
	loader.SetDefault("common.defaults.pipeline_timeout_seconds", defaultPipelineTimeoutSecs)
	loader.SetDefault("common.defaults.problem_sample_rows", defaultProblemSampleRows)
	loader.SetDefault("common.defaults.max_retries", defaultMaxRetries)
	loader.SetDefault("reconcile.min_similarity", defaultMinSimilarity)
}
