package arbor_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/evaluator/evaluatortest"
	"github.com/aretw0/arbor/pkg/evaluator/heuristic"
)

// ExampleNew shows one expansion with a scripted evaluator: P1 beats the
// root by more than the threshold and stays on the frontier, P2 does not.
func ExampleNew() {
	ev := evaluatortest.NewScripted(
		map[string]float64{"P": 5.0, "P1": 6.0, "P2": 5.1},
		map[string][]string{"P": {"P1", "P2"}},
	)

	cfg := domain.DefaultConfig()
	cfg.MinImprovementThreshold = 0.2
	cfg.MaxIterations = 1

	ctx := context.Background()
	explorer, err := arbor.New(ctx, "P", ev, arbor.WithConfig(cfg))
	if err != nil {
		log.Fatal(err)
	}

	outcome, err := explorer.Explore(ctx)
	if err != nil {
		log.Fatal(err)
	}

	best, _ := explorer.BestNode()
	fmt.Println(outcome.Reason)
	fmt.Println(len(explorer.Nodes()), "nodes")
	fmt.Printf("best %s %.1f\n", best.Prompt, best.Score)
	fmt.Println(len(explorer.Frontier()), "on the frontier")

	// Output:
	// iterations_exhausted
	// 3 nodes
	// best P1 6.0
	// 1 on the frontier
}

// ExampleNew_heuristic explores the image-rating prompt with the rule-based evaluator.
func ExampleNew_heuristic() {
	cfg := domain.DefaultConfig()
	cfg.MinImprovementThreshold = 0.2
	cfg.MaxIterations = 20

	ctx := context.Background()
	explorer, err := arbor.New(ctx,
		"Rate this image good if the product in the image is below 70% of the total image, rate it bad if it's more",
		heuristic.New(heuristic.WithSeed(1)),
		arbor.WithConfig(cfg),
	)
	if err != nil {
		log.Fatal(err)
	}

	if _, err := explorer.Explore(ctx); err != nil {
		log.Fatal(err)
	}

	best, _ := explorer.BestNode()
	fmt.Printf("%.1f\n", best.Score)

	// Output:
	// 8.0
}
