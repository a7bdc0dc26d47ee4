package align_test

import (
	"context"
	"errors"
	"testing"

	"github.com/temirov/etl-agents/internal/align"
)

func TestSelectEmptyCandidates(t *testing.T) {
	judge := align.Judge{Backend: &fakeBackend{name: "judge"}}
	_, err := judge.Select(context.Background(), threeRowProblem(), nil)
	if !errors.Is(err, align.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
}

func TestSelectSingleCandidateSkipsEvaluation(t *testing.T) {
	evaluator := &fakeBackend{name: "judge"}
	judge := align.Judge{Backend: evaluator}
	only := align.Candidate{Backend: "solo", Order: []int{0, 1, 2}}

	verdict, err := judge.Select(context.Background(), threeRowProblem(), []align.Candidate{only})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if verdict.Selected.Backend != "solo" {
		t.Fatalf("expected the single candidate, got %q", verdict.Selected.Backend)
	}
	if evaluator.evaluated != 0 {
		t.Fatalf("expected no evaluation calls, got %d", evaluator.evaluated)
	}
}

func TestSelectHighestScoreWins(t *testing.T) {
	scoresByBackend := map[string]float64{"a": 0.2, "b": 0.9, "c": 0.4}
	evaluator := &fakeBackend{name: "judge", evaluate: func(candidate align.Candidate) (align.Score, error) {
		return align.Score{Value: scoresByBackend[candidate.Backend]}, nil
	}}
	judge := align.Judge{Backend: evaluator}
	candidates := []align.Candidate{
		{Backend: "a", Order: []int{0, 1, 2}},
		{Backend: "b", Order: []int{1, 0, 2}},
		{Backend: "c", Order: []int{2, 1, 0}},
	}

	verdict, err := judge.Select(context.Background(), threeRowProblem(), candidates)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if verdict.Selected.Backend != "b" || verdict.SelectedIndex != 1 {
		t.Fatalf("expected b at index 1, got %q at %d", verdict.Selected.Backend, verdict.SelectedIndex)
	}
	if len(verdict.Scores) != 3 {
		t.Fatalf("expected 3 scores, got %d", len(verdict.Scores))
	}
}

func TestSelectTieBreakIsDeterministic(t *testing.T) {
	evaluator := &fakeBackend{name: "judge", evaluate: func(candidate align.Candidate) (align.Score, error) {
		return align.Score{Value: 0.7}, nil
	}}
	judge := align.Judge{Backend: evaluator}
	candidates := []align.Candidate{
		{Backend: "earlier", Order: []int{0, 1, 2}},
		{Backend: "later", Order: []int{2, 1, 0}},
	}

	// Identical injected scores: the earlier-listed backend must win on
	// every run.
	for run := 0; run < 20; run++ {
		verdict, err := judge.Select(context.Background(), threeRowProblem(), candidates)
		if err != nil {
			t.Fatalf("Select run %d: %v", run, err)
		}
		if verdict.Selected.Backend != "earlier" {
			t.Fatalf("run %d selected %q, want earlier-listed backend", run, verdict.Selected.Backend)
		}
	}
}

func TestSelectEvaluationFailureIsJudgeError(t *testing.T) {
	evaluator := &fakeBackend{name: "judge", evaluate: func(candidate align.Candidate) (align.Score, error) {
		return align.Score{}, errors.New("scoring call failed")
	}}
	judge := align.Judge{Backend: evaluator}
	candidates := []align.Candidate{
		{Backend: "a", Order: []int{0, 1, 2}},
		{Backend: "b", Order: []int{1, 0, 2}},
	}

	_, err := judge.Select(context.Background(), threeRowProblem(), candidates)
	var judgeErr *align.JudgeError
	if !errors.As(err, &judgeErr) {
		t.Fatalf("expected JudgeError, got %v", err)
	}
}

func TestSelectDoesNotMutateCandidates(t *testing.T) {
	evaluator := &fakeBackend{name: "judge", evaluate: func(candidate align.Candidate) (align.Score, error) {
		return align.Score{Value: 0.5}, nil
	}}
	judge := align.Judge{Backend: evaluator}
	candidates := []align.Candidate{
		{Backend: "a", Order: []int{0, 1, 2}, Confidence: 0.9},
		{Backend: "b", Order: []int{1, 0, 2}, Confidence: 0.8},
	}

	if _, err := judge.Select(context.Background(), threeRowProblem(), candidates); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if candidates[0].Backend != "a" || candidates[0].Confidence != 0.9 || candidates[1].Order[0] != 1 {
		t.Fatalf("candidates mutated: %+v", candidates)
	}
}
