package align

import (
	"context"
	"fmt"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"
)

// Score is one evaluation result for a candidate, higher is better.
type Score struct {
	Value     float64
	Rationale string
}

// Backend is one configured model endpoint. Implementations must be safe for
// concurrent use and must not retain the problem after returning.
type Backend interface {
	Name() string
	ProposeOrdering(ctx context.Context, problem Problem) (Candidate, error)
	Evaluate(ctx context.Context, problem Problem, candidate Candidate) (Score, error)
}

// Generator fans the alignment problem out to every configured backend
// concurrently and collects the survivors in backend-list order.
type Generator struct {
	Backends []Backend
	Timeout  time.Duration
	Logger   *zap.Logger
}

// Generate returns one validated candidate per surviving backend, ordered by
// backend-list position regardless of completion order, plus a warning per
// dropped backend. It fails with ErrNoCandidates only when every backend
// failed.
func (g Generator) Generate(ctx context.Context, problem Problem) ([]Candidate, []string, error) {
	if len(g.Backends) == 0 {
		return nil, nil, fmt.Errorf("%w: no backends configured", ErrNoCandidates)
	}

	type slot struct {
		candidate Candidate
		err       error
	}
	slots := make([]slot, len(g.Backends))

	pool := pond.NewPool(len(g.Backends))
	for index, backend := range g.Backends {
		index, backend := index, backend
		pool.Submit(func() {
			callCtx := ctx
			if g.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(ctx, g.Timeout)
				defer cancel()
			}
			candidate, proposeErr := backend.ProposeOrdering(callCtx, problem)
			if proposeErr != nil {
				slots[index] = slot{err: &BackendError{Backend: backend.Name(), Err: proposeErr}}
				return
			}
			candidate.Backend = backend.Name()
			if validateErr := candidate.Validate(problem.TargetRowCount); validateErr != nil {
				slots[index] = slot{err: &BackendError{Backend: backend.Name(), Err: validateErr}}
				return
			}
			slots[index] = slot{candidate: candidate}
		})
	}
	pool.StopAndWait()

	var (
		candidates []Candidate
		warnings   []string
	)
	for index, result := range slots {
		if result.err != nil {
			warnings = append(warnings, result.err.Error())
			if g.Logger != nil {
				g.Logger.Warn("backend dropped from candidate set",
					zap.String("backend", g.Backends[index].Name()),
					zap.Error(result.err))
			}
			continue
		}
		candidates = append(candidates, result.candidate)
	}
	if len(candidates) == 0 {
		return nil, warnings, fmt.Errorf("%w: %d backends failed", ErrNoCandidates, len(g.Backends))
	}
	return candidates, warnings, nil
}
