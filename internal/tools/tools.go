package tools

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/temirov/etl-agents/internal/align"
	"github.com/temirov/etl-agents/internal/pipeline"
	"github.com/temirov/etl-agents/internal/reconcile"
)

const (
	OrderConsistencyToolName = "order_consistency"
	RowLevelDiffToolName     = "rowlevel_diff"

	workingDirArgument = "working_dir"
	sourceFileArgument = "source_file"
	targetFileArgument = "target_file"
	modelsArgument     = "models"
	thresholdArgument  = "similarity_threshold"
	timeoutArgument    = "timeout_seconds"
)

// OrderConsistencyTool reorders the target file to match the source row
// sequence using the configured model backends. Optional "models" argument
// narrows the backend list for one invocation; optional "timeout_seconds"
// overrides the global pipeline timeout.
type OrderConsistencyTool struct {
	Coordinator pipeline.Coordinator
}

func (t OrderConsistencyTool) Name() string { return OrderConsistencyToolName }

func (t OrderConsistencyTool) Run(ctx context.Context, args map[string]string) (Invocation, error) {
	request, parseErr := parseRequest(args, pipeline.OperationReorder)
	if parseErr != nil {
		return Invocation{}, parseErr
	}

	coordinator := t.Coordinator
	if override := strings.TrimSpace(args[modelsArgument]); override != "" {
		filtered, filterErr := filterBackends(coordinator.Generator.Backends, override)
		if filterErr != nil {
			return Invocation{}, filterErr
		}
		coordinator.Generator.Backends = filtered
	}
	if override := strings.TrimSpace(args[timeoutArgument]); override != "" {
		seconds, timeoutErr := strconv.Atoi(override)
		if timeoutErr != nil || seconds <= 0 {
			return Invocation{}, fmt.Errorf("invalid %s %q: want a positive integer", timeoutArgument, override)
		}
		coordinator.Timeout = time.Duration(seconds) * time.Second
	}

	return invocationFor(coordinator.Run(ctx, request)), nil
}

// RowLevelDiffTool computes a best-effort row correspondence between the two
// files and writes a mapping report. Optional "similarity_threshold" argument
// overrides the configured pairing floor.
type RowLevelDiffTool struct {
	Coordinator pipeline.Coordinator
}

func (t RowLevelDiffTool) Name() string { return RowLevelDiffToolName }

func (t RowLevelDiffTool) Run(ctx context.Context, args map[string]string) (Invocation, error) {
	request, parseErr := parseRequest(args, pipeline.OperationRowDiff)
	if parseErr != nil {
		return Invocation{}, parseErr
	}

	coordinator := t.Coordinator
	if override := strings.TrimSpace(args[thresholdArgument]); override != "" {
		threshold, thresholdErr := strconv.ParseFloat(override, 64)
		if thresholdErr != nil || threshold <= 0 || threshold > 1 {
			return Invocation{}, fmt.Errorf("invalid %s %q: want a number in (0,1]", thresholdArgument, override)
		}
		coordinator.Reconcile = reconcile.Options{MinSimilarity: threshold}
	}

	return invocationFor(coordinator.Run(ctx, request)), nil
}

func parseRequest(args map[string]string, operation pipeline.Operation) (pipeline.Request, error) {
	workingDir, workingDirErr := requireArg(args, workingDirArgument)
	if workingDirErr != nil {
		return pipeline.Request{}, workingDirErr
	}
	sourceFile, sourceErr := requireArg(args, sourceFileArgument)
	if sourceErr != nil {
		return pipeline.Request{}, sourceErr
	}
	targetFile, targetErr := requireArg(args, targetFileArgument)
	if targetErr != nil {
		return pipeline.Request{}, targetErr
	}
	return pipeline.Request{
		Operation:  operation,
		WorkingDir: workingDir,
		SourcePath: sourceFile,
		TargetPath: targetFile,
	}, nil
}

func filterBackends(configured []align.Backend, commaSeparatedNames string) ([]align.Backend, error) {
	byName := make(map[string]align.Backend, len(configured))
	for _, backend := range configured {
		byName[backend.Name()] = backend
	}
	var selected []align.Backend
	for _, rawName := range strings.Split(commaSeparatedNames, ",") {
		name := strings.TrimSpace(rawName)
		if name == "" {
			continue
		}
		backend, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown backend %q in %s override", name, modelsArgument)
		}
		selected = append(selected, backend)
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("%s override selected no backends", modelsArgument)
	}
	return selected, nil
}

func invocationFor(result pipeline.Result) Invocation {
	invocation := Invocation{
		Status:    string(result.Status),
		Artifacts: result.Artifacts,
		Messages:  append([]string(nil), result.Warnings...),
	}
	if result.Err != nil {
		invocation.Messages = append(invocation.Messages,
			fmt.Sprintf("failed at stage %s: %v", result.Stage, result.Err))
	}
	return invocation
}
