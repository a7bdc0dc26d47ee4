package config

import (
	"errors"
	"fmt"
)

const (
	emptyModelsErrorMessage    = "config.models is empty"
	missingJudgeErrorFormat    = "judge.model %q not found in models[]"
	duplicateModelErrorFormat  = "duplicate model name %q"
	invalidThresholdErrFormat  = "reconcile.min_similarity %v outside (0,1]"
	defaultBackendTimeoutSecs  = 60
	defaultPipelineTimeoutSecs = 300
	defaultProblemSampleRows   = 20
	defaultMaxRetries          = 2
	defaultMinSimilarity       = 0.6
)

// Root is the explicit configuration object constructed once at process
// start and passed down. No component below cmd reads environment state
// directly; even the API key is resolved by the CLI from APIKeyEnv.
type Root struct {
	Common    Common    `mapstructure:"common" yaml:"common"`
	Models    []Model   `mapstructure:"models" yaml:"models"`
	Judge     Judge     `mapstructure:"judge" yaml:"judge"`
	Reconcile Reconcile `mapstructure:"reconcile" yaml:"reconcile"`
}

type Common struct {
	API struct {
		Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
		APIKeyEnv string `mapstructure:"api_key_env" yaml:"api_key_env"`
	} `mapstructure:"api" yaml:"api"`
	Logging struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"logging" yaml:"logging"`
	Defaults Defaults `mapstructure:"defaults" yaml:"defaults"`
}

type Defaults struct {
	BackendTimeoutSeconds  int `mapstructure:"backend_timeout_seconds" yaml:"backend_timeout_seconds"`
	PipelineTimeoutSeconds int `mapstructure:"pipeline_timeout_seconds" yaml:"pipeline_timeout_seconds"`
	ProblemSampleRows      int `mapstructure:"problem_sample_rows" yaml:"problem_sample_rows"`
	MaxRetries             int `mapstructure:"max_retries" yaml:"max_retries"`
}

// Model is one configured backend. The list order is load-bearing: it is the
// candidate collection order and the judge's tie-break order.
type Model struct {
	Name                string  `mapstructure:"name" yaml:"name"`
	ModelID             string  `mapstructure:"model_id" yaml:"model_id"`
	SupportsTemperature bool    `mapstructure:"supports_temperature" yaml:"supports_temperature"`
	DefaultTemperature  float64 `mapstructure:"default_temperature" yaml:"default_temperature"`
	MaxCompletionTokens int     `mapstructure:"max_completion_tokens" yaml:"max_completion_tokens"`
}

type Judge struct {
	Model string `mapstructure:"model" yaml:"model"`
}

type Reconcile struct {
	MinSimilarity float64 `mapstructure:"min_similarity" yaml:"min_similarity"`
}

// Validate checks cross-field invariants and fills zero-value defaults.
func (root *Root) Validate() error {
	if len(root.Models) == 0 {
		return errors.New(emptyModelsErrorMessage)
	}
	seen := map[string]bool{}
	for _, model := range root.Models {
		if seen[model.Name] {
			return fmt.Errorf(duplicateModelErrorFormat, model.Name)
		}
		seen[model.Name] = true
	}
	if root.Judge.Model == "" {
		root.Judge.Model = root.Models[0].Name
	}
	if _, ok := root.FindModel(root.Judge.Model); !ok {
		return fmt.Errorf(missingJudgeErrorFormat, root.Judge.Model)
	}
	if root.Reconcile.MinSimilarity == 0 {
		root.Reconcile.MinSimilarity = defaultMinSimilarity
	}
	if root.Reconcile.MinSimilarity < 0 || root.Reconcile.MinSimilarity > 1 {
		return fmt.Errorf(invalidThresholdErrFormat, root.Reconcile.MinSimilarity)
	}
	if root.Common.Defaults.BackendTimeoutSeconds <= 0 {
		root.Common.Defaults.BackendTimeoutSeconds = defaultBackendTimeoutSecs
	}
	if root.Common.Defaults.PipelineTimeoutSeconds <= 0 {
		root.Common.Defaults.PipelineTimeoutSeconds = defaultPipelineTimeoutSecs
	}
	if root.Common.Defaults.ProblemSampleRows <= 0 {
		root.Common.Defaults.ProblemSampleRows = defaultProblemSampleRows
	}
	if root.Common.Defaults.MaxRetries < 0 {
		root.Common.Defaults.MaxRetries = defaultMaxRetries
	}
	return nil
}

func (root Root) FindModel(name string) (Model, bool) {
	for _, model := range root.Models {
		if model.Name == name {
			return model, true
		}
	}
	return Model{}, false
}
