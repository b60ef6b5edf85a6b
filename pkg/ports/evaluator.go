package ports

import (
	"context"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
)

// Evaluator is the pluggable scoring capability consumed by the engine.
//
// Evaluate should return a score in [1, 10]; the engine's ScorePolicy decides
// what happens otherwise. GenerateImprovements may return fewer than n
// proposals, including none, and is not required to be deterministic.
type Evaluator interface {
	Evaluate(ctx context.Context, prompt string) (float64, error)
	GenerateImprovements(ctx context.Context, prompt string, score float64, n int) ([]string, error)
}

// EvaluatorFuncs adapts two plain functions into an Evaluator.
type EvaluatorFuncs struct {
	EvaluateFunc func(ctx context.Context, prompt string) (float64, error)
	GenerateFunc func(ctx context.Context, prompt string, score float64, n int) ([]string, error)
}

// Evaluate calls EvaluateFunc. A nil EvaluateFunc fails with domain.ErrEvaluator.
func (f EvaluatorFuncs) Evaluate(ctx context.Context, prompt string) (float64, error) {
	if f.EvaluateFunc == nil {
		return 0, fmt.Errorf("%w: no evaluate function", domain.ErrEvaluator)
	}
	return f.EvaluateFunc(ctx, prompt)
}

// GenerateImprovements calls GenerateFunc, or proposes nothing if it is nil.
func (f EvaluatorFuncs) GenerateImprovements(ctx context.Context, prompt string, score float64, n int) ([]string, error) {
	if f.GenerateFunc == nil {
		return nil, nil
	}
	return f.GenerateFunc(ctx, prompt, score, n)
}
