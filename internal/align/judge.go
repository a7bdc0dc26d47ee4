package align

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Verdict is the judge's final selection among candidates. Scores are
// parallel to the judged candidate list and comparable within one verdict.
type Verdict struct {
	Selected      Candidate
	SelectedIndex int
	Scores        []float64
	Rationale     string
}

// Judge ranks candidates with one evaluation call each and reduces them to a
// single winner. It never mutates candidates.
type Judge struct {
	Backend Backend
	Logger  *zap.Logger
}

// Select returns the highest-scoring candidate. Ties go to the candidate
// whose backend appears earlier in the configured backend list, which is the
// order candidates arrive in; scoring by the underlying model is not
// deterministic, so this fallback keeps repeated runs reproducible.
func (j Judge) Select(ctx context.Context, problem Problem, candidates []Candidate) (Verdict, error) {
	if len(candidates) == 0 {
		return Verdict{}, fmt.Errorf("%w: nothing to judge", ErrNoCandidates)
	}
	if len(candidates) == 1 {
		return Verdict{
			Selected:  candidates[0],
			Scores:    []float64{1},
			Rationale: fmt.Sprintf("single candidate from %s, evaluation skipped", candidates[0].Backend),
		}, nil
	}

	scores := make([]float64, len(candidates))
	rationales := make([]string, len(candidates))
	for index, candidate := range candidates {
		evaluation, evaluateErr := j.Backend.Evaluate(ctx, problem, candidate)
		if evaluateErr != nil {
			return Verdict{}, &JudgeError{Backend: j.Backend.Name(), Err: evaluateErr}
		}
		scores[index] = evaluation.Value
		rationales[index] = evaluation.Rationale
		if j.Logger != nil {
			j.Logger.Debug("candidate scored",
				zap.String("backend", candidate.Backend),
				zap.Float64("score", evaluation.Value))
		}
	}

	winnerIndex := 0
	for index := 1; index < len(scores); index++ {
		// Strict greater-than: an equal later score never displaces an
		// earlier winner.
		if scores[index] > scores[winnerIndex] {
			winnerIndex = index
		}
	}

	return Verdict{
		Selected:      candidates[winnerIndex],
		SelectedIndex: winnerIndex,
		Scores:        scores,
		Rationale: fmt.Sprintf("selected %s (score %.3f): %s",
			candidates[winnerIndex].Backend, scores[winnerIndex], rationales[winnerIndex]),
	}, nil
}
