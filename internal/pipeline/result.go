package pipeline

import (
	"github.com/temirov/etl-agents/internal/align"
	"github.com/temirov/etl-agents/internal/reconcile"
	"github.com/temirov/etl-agents/internal/tabular"
)

type Operation string

const (
	// OperationReorder runs Loader → Generator → Judge and persists the
	// winning ordering of the target file.
	OperationReorder Operation = "reorder"
	// OperationRowDiff runs Loader → Reconciler and persists a row mapping
	// report.
	OperationRowDiff Operation = "rowdiff"
)

type Stage string

const (
	StageLoading     Stage = "loading"
	StageGenerating  Stage = "generating"
	StageJudging     Stage = "judging"
	StageReconciling Stage = "reconciling"
	StagePersisting  Stage = "persisting"
	StageDone        Stage = "done"
)

type Status string

const (
	StatusSucceeded      Status = "succeeded"
	StatusPartialSuccess Status = "partial_success"
	StatusFailed         Status = "failed"
)

// Request is one pipeline invocation: a file pair plus the working directory
// artifacts are written into. Paths are resolved against WorkingDir unless
// absolute.
type Request struct {
	Operation  Operation
	WorkingDir string
	SourcePath string
	TargetPath string
}

// Result is the uniform outcome of one run, created once and returned to the
// caller. On failure, any datasets loaded before the failing stage stay
// attached for diagnostic reporting.
type Result struct {
	RunID     string
	Operation Operation
	Status    Status
	Stage     Stage
	Artifacts []string
	Warnings  []string
	Err       error

	Source  *tabular.Dataset
	Target  *tabular.Dataset
	Verdict *align.Verdict
	Mapping *reconcile.Mapping
}
