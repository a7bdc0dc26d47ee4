package align_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/temirov/etl-agents/internal/align"
)

type fakeBackend struct {
	name      string
	order     []int
	err       error
	delay     time.Duration
	evaluate  func(align.Candidate) (align.Score, error)
	evaluated int
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) ProposeOrdering(ctx context.Context, problem align.Problem) (align.Candidate, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return align.Candidate{}, ctx.Err()
		}
	}
	if f.err != nil {
		return align.Candidate{}, f.err
	}
	return align.Candidate{Order: f.order}, nil
}

func (f *fakeBackend) Evaluate(ctx context.Context, problem align.Problem, candidate align.Candidate) (align.Score, error) {
	f.evaluated++
	if f.evaluate != nil {
		return f.evaluate(candidate)
	}
	return align.Score{Value: 0.5}, nil
}

func threeRowProblem() align.Problem {
	return align.Problem{SourceRowCount: 3, TargetRowCount: 3}
}

func TestGenerateCollectsInBackendListOrder(t *testing.T) {
	// The slowest backend is listed first; completion order must not leak
	// into collection order.
	backends := []align.Backend{
		&fakeBackend{name: "slow", order: []int{0, 1, 2}, delay: 30 * time.Millisecond},
		&fakeBackend{name: "fast", order: []int{2, 1, 0}},
	}
	generator := align.Generator{Backends: backends, Timeout: time.Second}

	candidates, warnings, err := generator.Generate(context.Background(), threeRowProblem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Backend != "slow" || candidates[1].Backend != "fast" {
		t.Fatalf("candidates out of backend-list order: %q, %q", candidates[0].Backend, candidates[1].Backend)
	}
}

func TestGeneratePartialFailureKeepsSurvivors(t *testing.T) {
	backends := []align.Backend{
		&fakeBackend{name: "one", order: []int{0, 1, 2}},
		&fakeBackend{name: "two", err: errors.New("rate limited")},
		&fakeBackend{name: "three", order: []int{1, 0, 2}},
	}
	generator := align.Generator{Backends: backends}

	candidates, warnings, err := generator.Generate(context.Background(), threeRowProblem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Backend != "one" || candidates[1].Backend != "three" {
		t.Fatalf("wrong survivors: %q, %q", candidates[0].Backend, candidates[1].Backend)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "two") {
		t.Fatalf("expected one warning naming the failed backend, got %v", warnings)
	}
}

func TestGenerateTimeoutCountsAsFailure(t *testing.T) {
	backends := []align.Backend{
		&fakeBackend{name: "stuck", order: []int{0, 1, 2}, delay: time.Second},
		&fakeBackend{name: "healthy", order: []int{0, 1, 2}},
	}
	generator := align.Generator{Backends: backends, Timeout: 20 * time.Millisecond}

	candidates, warnings, err := generator.Generate(context.Background(), threeRowProblem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Backend != "healthy" {
		t.Fatalf("expected only the healthy backend, got %+v", candidates)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected one timeout warning, got %v", warnings)
	}
}

func TestGenerateAllFailed(t *testing.T) {
	backends := []align.Backend{
		&fakeBackend{name: "one", err: errors.New("boom")},
		&fakeBackend{name: "two", err: errors.New("boom")},
	}
	generator := align.Generator{Backends: backends}

	_, warnings, err := generator.Generate(context.Background(), threeRowProblem())
	if !errors.Is(err, align.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates, got %v", err)
	}
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %d", len(warnings))
	}
}

func TestGenerateRejectsInvalidPermutations(t *testing.T) {
	backends := []align.Backend{
		&fakeBackend{name: "short", order: []int{0, 1}},
		&fakeBackend{name: "dupe", order: []int{0, 0, 2}},
		&fakeBackend{name: "range", order: []int{0, 1, 7}},
		&fakeBackend{name: "valid", order: []int{2, 0, 1}},
	}
	generator := align.Generator{Backends: backends}

	candidates, warnings, err := generator.Generate(context.Background(), threeRowProblem())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(candidates) != 1 || candidates[0].Backend != "valid" {
		t.Fatalf("expected only the valid candidate, got %+v", candidates)
	}
	if len(warnings) != 3 {
		t.Fatalf("expected 3 warnings, got %v", warnings)
	}
}
