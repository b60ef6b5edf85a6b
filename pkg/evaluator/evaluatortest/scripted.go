// Package evaluatortest provides Evaluator implementations for tests and examples.
package evaluatortest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/stretchr/testify/mock"
)

// ErrUnscripted is returned by Scripted for a prompt it has no score for.
var ErrUnscripted = errors.New("prompt not scripted")

// GenerateCall records one GenerateImprovements invocation.
type GenerateCall struct {
	Prompt string
	Score  float64
	N      int
}

// Scripted answers from fixed tables and records every call.
type Scripted struct {
	Scores    map[string]float64
	Proposals map[string][]string

	// DefaultScore is used for prompts missing from Scores. Zero means "fail".
	DefaultScore float64

	EvaluateCalls map[string]int
	GenerateCalls []GenerateCall
}

// NewScripted creates a Scripted evaluator.
func NewScripted(scores map[string]float64, proposals map[string][]string) *Scripted {
	return &Scripted{
		Scores:        scores,
		Proposals:     proposals,
		EvaluateCalls: make(map[string]int),
	}
}

// Evaluate returns the scripted score of prompt.
func (s *Scripted) Evaluate(ctx context.Context, prompt string) (float64, error) {
	if s.EvaluateCalls == nil {
		s.EvaluateCalls = make(map[string]int)
	}
	s.EvaluateCalls[prompt]++
	if score, ok := s.Scores[prompt]; ok {
		return score, nil
	}
	if s.DefaultScore != 0 {
		return s.DefaultScore, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnscripted, prompt)
}

// GenerateImprovements returns the scripted proposals of prompt, unmodified.
// It does not truncate to n, so tests can script contract violations.
func (s *Scripted) GenerateImprovements(ctx context.Context, prompt string, score float64, n int) ([]string, error) {
	s.GenerateCalls = append(s.GenerateCalls, GenerateCall{Prompt: prompt, Score: score, N: n})
	return s.Proposals[prompt], nil
}

// Random scores every prompt with a seeded pseudo-random value in [1, 10]
// and proposes between zero and n children named after their parent.
type Random struct {
	rng *rand.Rand
	seq int
}

// NewRandom creates a reproducible Random evaluator.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Evaluate returns a score rounded to one decimal.
func (r *Random) Evaluate(ctx context.Context, prompt string) (float64, error) {
	return float64(10+r.rng.IntN(91)) / 10, nil
}

// GenerateImprovements proposes up to n fresh prompts.
func (r *Random) GenerateImprovements(ctx context.Context, prompt string, score float64, n int) ([]string, error) {
	k := r.rng.IntN(n + 1)
	out := make([]string, 0, k)
	for range k {
		r.seq++
		out = append(out, fmt.Sprintf("%s/%d", prompt, r.seq))
	}
	return out, nil
}

// Mock is a testify mock of the Evaluator port.
type Mock struct {
	mock.Mock
}

// Evaluate records the call and returns the configured score.
func (m *Mock) Evaluate(ctx context.Context, prompt string) (float64, error) {
	args := m.Called(ctx, prompt)
	return args.Get(0).(float64), args.Error(1)
}

// GenerateImprovements records the call and returns the configured proposals.
func (m *Mock) GenerateImprovements(ctx context.Context, prompt string, score float64, n int) ([]string, error) {
	args := m.Called(ctx, prompt, score, n)
	proposals, _ := args.Get(0).([]string)
	return proposals, args.Error(1)
}
