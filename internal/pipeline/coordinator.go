package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/etl-agents/internal/align"
	"github.com/temirov/etl-agents/internal/reconcile"
	"github.com/temirov/etl-agents/internal/tabular"
)

// Coordinator sequences Loading → Generating → Judging → (Reconciling) →
// Persisting for one file pair and reduces the outcome to a single Result.
// It is safe to run concurrently for different file pairs; two runs against
// the same working directory must be serialized by the caller, since the
// derived artifact writes would race.
type Coordinator struct {
	Loader    tabular.Loader
	Generator align.Generator
	Judge     align.Judge
	Writer    ArtifactWriter

	Reconcile  reconcile.Options
	SampleRows int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Run executes one pipeline invocation. It never panics across the boundary
// and never returns a partial artifact: persistence is all-or-nothing.
func (c Coordinator) Run(ctx context.Context, request Request) Result {
	result := Result{
		RunID:     uuid.NewString(),
		Operation: request.Operation,
		Status:    StatusFailed,
	}
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", result.RunID), zap.String("operation", string(request.Operation)))

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	result.Stage = StageLoading
	logger.Info("pipeline stage", zap.String("stage", string(StageLoading)))
	sourcePath := resolvePath(request.WorkingDir, request.SourcePath)
	targetPath := resolvePath(request.WorkingDir, request.TargetPath)

	var source, target *tabular.Dataset
	group, _ := errgroup.WithContext(ctx)
	group.Go(func() error {
		loaded, err := c.Loader.Load(sourcePath)
		if err != nil {
			return fmt.Errorf("load source: %w", err)
		}
		source = loaded
		return nil
	})
	group.Go(func() error {
		loaded, err := c.Loader.Load(targetPath)
		if err != nil {
			return fmt.Errorf("load target: %w", err)
		}
		target = loaded
		return nil
	})
	if loadErr := group.Wait(); loadErr != nil {
		result.Err = loadErr
		result.Source = source
		result.Target = target
		return result
	}
	result.Source = source
	result.Target = target

	switch request.Operation {
	case OperationReorder:
		return c.runReorder(ctx, logger, request, result)
	case OperationRowDiff:
		return c.runRowDiff(logger, request, result)
	default:
		result.Err = fmt.Errorf("unknown operation %q", request.Operation)
		return result
	}
}

func (c Coordinator) runReorder(ctx context.Context, logger *zap.Logger, request Request, result Result) Result {
	result.Stage = StageGenerating
	logger.Info("pipeline stage", zap.String("stage", string(StageGenerating)))
	problem := align.NewProblem(result.Source, result.Target, c.SampleRows)
	candidates, warnings, generateErr := c.Generator.Generate(ctx, problem)
	result.Warnings = append(result.Warnings, warnings...)
	if generateErr != nil {
		result.Err = fmt.Errorf("generate candidates: %w", generateErr)
		return result
	}

	result.Stage = StageJudging
	logger.Info("pipeline stage", zap.String("stage", string(StageJudging)), zap.Int("candidates", len(candidates)))
	verdict, judgeErr := c.Judge.Select(ctx, problem, candidates)
	if judgeErr != nil {
		result.Err = fmt.Errorf("judge candidates: %w", judgeErr)
		return result
	}
	result.Verdict = &verdict

	result.Stage = StagePersisting
	artifactPath, writeErr := c.Writer.WriteOrdered(request.WorkingDir, result.Target, verdict.Selected.Order)
	if writeErr != nil {
		result.Err = fmt.Errorf("persist ordered artifact: %w", writeErr)
		return result
	}
	result.Artifacts = append(result.Artifacts, artifactPath)

	result.Stage = StageDone
	result.Status = statusForWarnings(result.Warnings)
	logger.Info("pipeline done",
		zap.String("status", string(result.Status)),
		zap.String("selected_backend", verdict.Selected.Backend),
		zap.String("artifact", artifactPath))
	return result
}

func (c Coordinator) runRowDiff(logger *zap.Logger, request Request, result Result) Result {
	result.Stage = StageReconciling
	logger.Info("pipeline stage", zap.String("stage", string(StageReconciling)))
	mapping := reconcile.Reconcile(result.Source, result.Target, c.Reconcile)
	result.Mapping = &mapping
	for _, targetIndex := range mapping.UnmatchedTarget {
		result.Warnings = append(result.Warnings, fmt.Sprintf("target row %d has no confident source counterpart", targetIndex))
	}
	for _, sourceIndex := range mapping.UnmatchedSource {
		result.Warnings = append(result.Warnings, fmt.Sprintf("source row %d has no confident target counterpart", sourceIndex))
	}

	result.Stage = StagePersisting
	artifactPath, writeErr := c.Writer.WriteMappingReport(request.WorkingDir, result.Source, result.Target, mapping)
	if writeErr != nil {
		result.Err = fmt.Errorf("persist mapping report: %w", writeErr)
		return result
	}
	result.Artifacts = append(result.Artifacts, artifactPath)

	result.Stage = StageDone
	result.Status = statusForWarnings(result.Warnings)
	logger.Info("pipeline done",
		zap.String("status", string(result.Status)),
		zap.Int("matched_rows", len(mapping.Pairs)),
		zap.String("artifact", artifactPath))
	return result
}

func statusForWarnings(warnings []string) Status {
	if len(warnings) > 0 {
		return StatusPartialSuccess
	}
	return StatusSucceeded
}

func resolvePath(workingDir, path string) string {
	if filepath.IsAbs(path) || workingDir == "" {
		return path
	}
	return filepath.Join(workingDir, path)
}
