// Package heuristic provides a rule-based Evaluator that needs no model.
//
// Scores start at 5 and gain a point for each of: at least ten words, a
// percentage sign, an if/else pair, and a rating vocabulary word. Proposals
// are drawn without replacement from a fixed pool of rewrite templates.
package heuristic

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

const baseScore = 5.0

var ratingWords = []string{"good", "bad", "rate", "classify"}

var templates = []string{
	"Please %s",
	"Analyze the image and %s",
	"Carefully examine the image to %s",
	"Using precise measurements, %s",
}

// Evaluator is the heuristic evaluator. Its random source is not safe for
// concurrent use; give each engine its own Evaluator.
type Evaluator struct {
	rng *rand.Rand
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithRand sets the random source used to sample rewrite templates.
func WithRand(rng *rand.Rand) Option {
	return func(e *Evaluator) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithSeed makes template sampling reproducible.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed)))
}

// New creates a heuristic Evaluator.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// Evaluate scores prompt in [1, 10].
func (e *Evaluator) Evaluate(ctx context.Context, prompt string) (float64, error) {
	score := baseScore
	if len(strings.Fields(prompt)) >= 10 {
		score++
	}
	if strings.Contains(prompt, "%") {
		score++
	}
	// Substring match: "gift" counts as "if".
	if strings.Contains(prompt, "if") && strings.Contains(prompt, "else") {
		score++
	}
	lower := strings.ToLower(prompt)
	for _, w := range ratingWords {
		if strings.Contains(lower, w) {
			score++
			break
		}
	}
	return min(domain.DefaultPerfectScore, max(domain.MinScore, score)), nil
}

// GenerateImprovements returns min(n, 4) distinct rewrites of prompt.
func (e *Evaluator) GenerateImprovements(ctx context.Context, prompt string, score float64, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	lower := strings.ToLower(prompt)
	order := e.rng.Perm(len(templates))
	k := min(n, len(templates))

	out := make([]string, 0, k)
	for _, i := range order[:k] {
		out = append(out, fmt.Sprintf(templates[i], lower))
	}
	return out, nil
}
