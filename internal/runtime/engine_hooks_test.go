package runtime_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/evaluator/evaluatortest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	ev := evaluatortest.NewScripted(
		map[string]float64{"P": 5.0, "P1": 6.0, "P2": 5.1},
		map[string][]string{"P": {"P1", "P2"}},
	)

	var created []domain.NodeEvent
	var expanded []domain.ExpandEvent
	var iterations []domain.IterationEvent
	var stops []domain.StopEvent

	hooks := domain.LifecycleHooks{
		OnNodeCreated: func(ctx context.Context, e *domain.NodeEvent) { created = append(created, *e) },
		OnExpand:      func(ctx context.Context, e *domain.ExpandEvent) { expanded = append(expanded, *e) },
		OnIteration:   func(ctx context.Context, e *domain.IterationEvent) { iterations = append(iterations, *e) },
		OnStop:        func(ctx context.Context, e *domain.StopEvent) { stops = append(stops, *e) },
	}

	engine, err := runtime.NewEngine(context.Background(), "P", ev, config(0.2, 1, 2),
		runtime.WithLifecycleHooks(hooks), runtime.WithRunID("hooked"))
	require.NoError(t, err)
	require.Len(t, created, 1, "root is announced at construction")
	assert.True(t, created[0].Queued)

	_, err = engine.Explore(context.Background())
	require.NoError(t, err)

	require.Len(t, created, 3)
	assert.Equal(t, "P1", created[1].Node.Prompt)
	assert.True(t, created[1].Queued)
	assert.InDelta(t, 1.0, created[1].Improvement, 1e-9)
	assert.Equal(t, "P2", created[2].Node.Prompt)
	assert.False(t, created[2].Queued, "improvement 0.1 does not exceed 0.2")

	require.Len(t, expanded, 1)
	assert.Equal(t, 1, expanded[0].Iteration)
	assert.Equal(t, 2, expanded[0].Requested)
	assert.Equal(t, 2, expanded[0].Proposed)

	require.Len(t, iterations, 1)
	assert.Equal(t, 1, iterations[0].FrontierSize)
	assert.Equal(t, 3, iterations[0].StoreSize)
	assert.Equal(t, 6.0, iterations[0].BestScore)

	require.Len(t, stops, 1)
	assert.Equal(t, domain.StopIterationsExhausted, stops[0].Outcome.Reason)
	assert.NoError(t, stops[0].Err)
	for _, e := range created {
		assert.Equal(t, "hooked", e.RunID)
	}
}

func TestEngine_PruningMatchesThreshold(t *testing.T) {
	ev := evaluatortest.NewRandom(7)
	cfg := config(0.5, 30, 3)

	parentScore := map[string]float64{}

	hooks := domain.LifecycleHooks{
		OnNodeCreated: func(ctx context.Context, e *domain.NodeEvent) {
			parentScore[e.Node.ID] = e.Node.Score
			if e.Node.IsRoot() {
				return
			}
			gain := e.Node.Score - parentScore[e.Node.ParentID]
			assert.Equal(t, gain > cfg.MinImprovementThreshold, e.Queued, "node %s gain %v", e.Node.ID, gain)
		},
	}

	engine, err := runtime.NewEngine(context.Background(), "seed", ev, cfg, runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)
	_, err = engine.Explore(context.Background())
	require.NoError(t, err)
}

func TestEngine_SelectionIsGlobalMax(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		ev := evaluatortest.NewRandom(seed)

		var engine *runtime.Engine
		var selections int
		hooks := domain.LifecycleHooks{
			OnExpand: func(ctx context.Context, e *domain.ExpandEvent) {
				selections++
				for _, rest := range engine.Frontier() {
					assert.GreaterOrEqual(t, e.Score, rest.Score, "seed %d iteration %d", seed, e.Iteration)
				}
			},
		}

		var err error
		engine, err = runtime.NewEngine(context.Background(), "seed", ev, config(0.0, 25, 3), runtime.WithLifecycleHooks(hooks))
		require.NoError(t, err)
		out, err := engine.Explore(context.Background())
		require.NoError(t, err)
		assert.Equal(t, out.Iterations, selections)
	}
}
