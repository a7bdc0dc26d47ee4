package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/etl-agents/internal/config"
)

const sampleConfiguration = `
common:
  api:
    endpoint: https://llm.internal/v1
    api_key_env: INTERNAL_LLM_KEY
  logging:
    level: debug
    format: console
  defaults:
    backend_timeout_seconds: 30
models:
  - name: fast
    model_id: gpt-4o
    supports_temperature: true
    default_temperature: 0.2
    max_completion_tokens: 2048
  - name: careful
    model_id: gpt-4.1
    max_completion_tokens: 4096
judge:
  model: careful
reconcile:
  min_similarity: 0.75
`

func writeConfiguration(t *testing.T, directory, fileName, content string) string {
	t.Helper()
	path := filepath.Join(directory, fileName)
	if writeErr := os.WriteFile(path, []byte(content), 0o600); writeErr != nil {
		t.Fatalf("write configuration: %v", writeErr)
	}
	return path
}

func TestLoadExplicitPath(t *testing.T) {
	path := writeConfiguration(t, t.TempDir(), "custom.yaml", sampleConfiguration)

	root, loadErr := config.Load(path, "", "")
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if root.Common.API.Endpoint != "https://llm.internal/v1" {
		t.Fatalf("endpoint %q", root.Common.API.Endpoint)
	}
	if root.Common.API.APIKeyEnv != "INTERNAL_LLM_KEY" {
		t.Fatalf("api key env %q", root.Common.API.APIKeyEnv)
	}
	if len(root.Models) != 2 || root.Models[0].Name != "fast" || root.Models[1].Name != "careful" {
		t.Fatalf("models %+v", root.Models)
	}
	if root.Judge.Model != "careful" {
		t.Fatalf("judge model %q", root.Judge.Model)
	}
	if root.Reconcile.MinSimilarity != 0.75 {
		t.Fatalf("min similarity %v", root.Reconcile.MinSimilarity)
	}
	// Explicit value survives, untouched siblings fall back to defaults.
	if root.Common.Defaults.BackendTimeoutSeconds != 30 {
		t.Fatalf("backend timeout %d", root.Common.Defaults.BackendTimeoutSeconds)
	}
	if root.Common.Defaults.PipelineTimeoutSeconds != 300 {
		t.Fatalf("pipeline timeout %d", root.Common.Defaults.PipelineTimeoutSeconds)
	}
}

func TestLoadExplicitPathMissingFile(t *testing.T) {
	_, loadErr := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), "", "")
	if loadErr == nil {
		t.Fatal("expected an error for an explicit missing file")
	}
}

func TestLoadSearchesWorkingDirectory(t *testing.T) {
	workingDirectory := t.TempDir()
	writeConfiguration(t, workingDirectory, "config.yaml", sampleConfiguration)

	root, loadErr := config.Load("", workingDirectory, t.TempDir())
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if len(root.Models) != 2 {
		t.Fatalf("models %+v", root.Models)
	}
}

func TestLoadSearchesHomeDirectory(t *testing.T) {
	homeDirectory := t.TempDir()
	configDirectory := filepath.Join(homeDirectory, ".etl-agents")
	if mkdirErr := os.MkdirAll(configDirectory, 0o755); mkdirErr != nil {
		t.Fatal(mkdirErr)
	}
	writeConfiguration(t, configDirectory, "config.yaml", sampleConfiguration)

	root, loadErr := config.Load("", t.TempDir(), homeDirectory)
	if loadErr != nil {
		t.Fatalf("load: %v", loadErr)
	}
	if root.Judge.Model != "careful" {
		t.Fatalf("judge model %q", root.Judge.Model)
	}
}

func TestLoadWithoutAnyFileRequiresModels(t *testing.T) {
	_, loadErr := config.Load("", t.TempDir(), t.TempDir())
	if loadErr == nil || !strings.Contains(loadErr.Error(), "models") {
		t.Fatalf("expected empty-models error, got %v", loadErr)
	}
}

func TestValidateFillsDefaults(t *testing.T) {
	root := config.Root{Models: []config.Model{{Name: "only", ModelID: "gpt-4o"}}}
	if validateErr := root.Validate(); validateErr != nil {
		t.Fatalf("validate: %v", validateErr)
	}
	if root.Judge.Model != "only" {
		t.Fatalf("judge defaulted to %q", root.Judge.Model)
	}
	if root.Reconcile.MinSimilarity != 0.6 {
		t.Fatalf("min similarity %v", root.Reconcile.MinSimilarity)
	}
	if root.Common.Defaults.ProblemSampleRows != 20 {
		t.Fatalf("sample rows %d", root.Common.Defaults.ProblemSampleRows)
	}
}

func TestValidateRejections(t *testing.T) {
	testCases := []struct {
		name string
		root config.Root
		want string
	}{
		{
			name: "no models",
			root: config.Root{},
			want: "models is empty",
		},
		{
			name: "duplicate model names",
			root: config.Root{Models: []config.Model{{Name: "twin"}, {Name: "twin"}}},
			want: "duplicate model",
		},
		{
			name: "judge model not configured",
			root: config.Root{
				Models: []config.Model{{Name: "fast"}},
				Judge:  config.Judge{Model: "missing"},
			},
			want: "not found in models",
		},
		{
			name: "threshold above one",
			root: config.Root{
				Models:    []config.Model{{Name: "fast"}},
				Reconcile: config.Reconcile{MinSimilarity: 1.5},
			},
			want: "outside (0,1]",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			validateErr := testCase.root.Validate()
			if validateErr == nil || !strings.Contains(validateErr.Error(), testCase.want) {
				t.Fatalf("want error containing %q, got %v", testCase.want, validateErr)
			}
		})
	}
}
