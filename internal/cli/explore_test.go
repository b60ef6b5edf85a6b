package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/evaluator/evaluatortest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func scenarioConfig(t *testing.T) config.File {
	t.Helper()
	cfg, err := LoadConfig("", Overrides{
		Prompt:        ptr("P"),
		Threshold:     ptr(1.0),
		MaxIterations: ptr(3),
		MaxChildren:   ptr(2),
		Archive:       ptr(config.ArchiveNone),
	})
	require.NoError(t, err)
	return cfg
}

func scenarioEvaluator() *evaluatortest.Scripted {
	return evaluatortest.NewScripted(
		map[string]float64{"P": 5, "P1": 7, "P2": 5.5},
		map[string][]string{"P": {"P1", "P2"}},
	)
}

func TestLoadConfig(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := LoadConfig("", Overrides{})
		require.NoError(t, err)
		assert.Equal(t, config.Default(), cfg)
	})

	t.Run("FlagsOverrideFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "arbor.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
initial_prompt: from file
explore:
  max_iterations: 7
  min_improvement_threshold: 0.5
`), 0644))

		cfg, err := LoadConfig(path, Overrides{MaxIterations: ptr(2), Seed: ptr(uint64(9))})
		require.NoError(t, err)
		assert.Equal(t, "from file", cfg.InitialPrompt)
		assert.Equal(t, 2, cfg.Explore.MaxIterations)
		assert.Equal(t, 0.5, cfg.Explore.MinImprovementThreshold)
		assert.Equal(t, uint64(9), cfg.Evaluator.Seed)
	})

	t.Run("InvalidOverride", func(t *testing.T) {
		_, err := LoadConfig("", Overrides{MaxChildren: ptr(0)})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)

		_, err = LoadConfig("", Overrides{Prompt: ptr("   ")})
		assert.ErrorIs(t, err, domain.ErrInvalidConfig)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), Overrides{})
		assert.Error(t, err)
	})
}

func TestRunExplore(t *testing.T) {
	archive := memory.NewStore()
	var out bytes.Buffer

	snap, err := RunExplore(context.Background(), ExploreOptions{
		Config:    scenarioConfig(t),
		RunID:     "cli-run",
		Histogram: true,
		Mermaid:   true,
		Out:       &out,
		Archive:   archive,
		Evaluator: scenarioEvaluator(),
	})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, domain.StopFrontierExhausted, snap.Outcome.Reason)
	assert.Equal(t, 7.0, snap.Outcome.BestScore)

	text := out.String()
	assert.Contains(t, text, "iteration 1/3")
	assert.Contains(t, text, "# Exploration report")
	assert.Contains(t, text, "> P1")
	assert.Contains(t, text, "graph TD")
	assert.Contains(t, text, "Run 'cli-run' archived.")
	assert.NotContains(t, text, "prompt tree explorer", "no banner outside a terminal")

	stored, err := archive.Load(context.Background(), "cli-run")
	require.NoError(t, err)
	assert.Len(t, stored.Nodes, 3)
}

func TestRunExplore_Quiet(t *testing.T) {
	var out bytes.Buffer

	_, err := RunExplore(context.Background(), ExploreOptions{
		Config:    scenarioConfig(t),
		Quiet:     true,
		Out:       &out,
		Evaluator: scenarioEvaluator(),
	})
	require.NoError(t, err)
	assert.NotContains(t, out.String(), "iteration 1/3")
	assert.Contains(t, out.String(), "# Exploration report")
}

func TestRunExplore_EvaluatorErrorPrintsPartialReport(t *testing.T) {
	var out bytes.Buffer
	ev := scenarioEvaluator()
	delete(ev.Scores, "P2")

	snap, err := RunExplore(context.Background(), ExploreOptions{
		Config:    scenarioConfig(t),
		Out:       &out,
		Evaluator: ev,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEvaluator)
	require.NotNil(t, snap)
	assert.Equal(t, domain.StopEvaluatorError, snap.Outcome.Reason)
	assert.Contains(t, out.String(), "evaluator_error")
}

func TestRunExplore_CanceledIsNotAnError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer

	snap, err := RunExplore(ctx, ExploreOptions{
		Config:    scenarioConfig(t),
		Out:       &out,
		Evaluator: scenarioEvaluator(),
	})
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, domain.StopCanceled, snap.Outcome.Reason)
	assert.Contains(t, out.String(), "Interrupted after 0 iterations.")
}

func TestRunExplore_InvalidEvaluator(t *testing.T) {
	cfg := scenarioConfig(t)
	cfg.Evaluator.Kind = "oracle"

	snap, err := RunExplore(context.Background(), ExploreOptions{Config: cfg, Out: &bytes.Buffer{}})
	assert.Nil(t, snap)
	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrEvaluator))
}
