package align

import "github.com/temirov/etl-agents/internal/tabular"

// Problem is the row-alignment question handed to every backend: both
// datasets' headers plus sampled row content, and the full target row count
// the proposed permutation must cover.
type Problem struct {
	SourceHeader   []string
	TargetHeader   []string
	SourceCSV      string
	TargetCSV      string
	SourceRowCount int
	TargetRowCount int
}

// NewProblem builds a problem statement from the loaded dataset pair.
// sampleRows bounds how much row content is shipped to the backends;
// zero or negative means full content.
func NewProblem(source, target *tabular.Dataset, sampleRows int) Problem {
	return Problem{
		SourceHeader:   source.Header,
		TargetHeader:   target.Header,
		SourceCSV:      source.RenderCSV(sampleRows),
		TargetCSV:      target.RenderCSV(sampleRows),
		SourceRowCount: source.RowCount(),
		TargetRowCount: target.RowCount(),
	}
}
