package tests

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
)

// EvaluatorContractTest is a reusable test suite that verifies if an evaluator complies with ports.Evaluator
// for the given sample prompts. It requires scores inside [1, 10] and at most n proposals.
func EvaluatorContractTest(t *testing.T, ev ports.Evaluator, prompts []string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Evaluate_Range", func(t *testing.T) {
		for _, p := range prompts {
			score, err := ev.Evaluate(ctx, p)
			if err != nil {
				t.Fatalf("unexpected error evaluating %q: %v", p, err)
			}
			if score < domain.MinScore || score > domain.DefaultPerfectScore {
				t.Errorf("score of %q out of range: %v", p, score)
			}
		}
	})

	t.Run("Generate_AtMostN", func(t *testing.T) {
		for _, p := range prompts {
			for _, n := range []int{1, 2, 3} {
				proposals, err := ev.GenerateImprovements(ctx, p, 5, n)
				if err != nil {
					t.Fatalf("unexpected error generating for %q: %v", p, err)
				}
				if len(proposals) > n {
					t.Errorf("expected at most %d proposals for %q, got %d", n, p, len(proposals))
				}
			}
		}
	})

	t.Run("Generate_Zero", func(t *testing.T) {
		proposals, err := ev.GenerateImprovements(ctx, "prompt", 5, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(proposals) != 0 {
			t.Errorf("expected no proposals for n=0, got %d", len(proposals))
		}
	})
}
