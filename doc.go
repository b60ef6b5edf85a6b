/*
Package arbor explores rewrites of a prompt as a tree and keeps the best one.

Starting from an initial prompt, the explorer repeatedly picks the most
promising candidate seen so far, asks an Evaluator for improved variants,
scores them, and only keeps exploring the variants that beat their parent by
more than a configured margin. It stops when no candidate is left, when the
iteration budget is spent, or as soon as a perfect score appears.

# Concept

The search is greedy best-first over a tree of candidates:

  - Every candidate ever scored is kept, with a link to the prompt it was derived from.
  - The frontier is the set of candidates still worth expanding.
  - The Evaluator is the only source of scores and rewrites. It can be a heuristic,
    a language model, or a scripted fake in tests.

# Usage

	package main

	import (
		"context"
		"fmt"
		"log"

		"github.com/aretw0/arbor"
		"github.com/aretw0/arbor/pkg/domain"
		"github.com/aretw0/arbor/pkg/evaluator/heuristic"
	)

	func main() {
		ctx := context.Background()

		cfg := domain.DefaultConfig()
		cfg.MinImprovementThreshold = 0.2
		cfg.MaxIterations = 20

		explorer, err := arbor.New(ctx, "Rate this image good if ...", heuristic.New(),
			arbor.WithConfig(cfg),
		)
		if err != nil {
			log.Fatal(err)
		}

		outcome, err := explorer.Explore(ctx)
		if err != nil {
			log.Fatal(err)
		}

		best, _ := explorer.BestNode()
		fmt.Println(outcome.Reason, best.Score, best.Prompt)
	}

For request-driven hosts (HTTP, MCP), Runner creates one explorer per request.
*/
package arbor
