package heuristic_test

import (
	"context"
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/evaluator/heuristic"
	"github.com/aretw0/arbor/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		prompt string
		want   float64
	}{
		{"bare", "describe", 5.0},
		{"rating word", "Rate this", 6.0},
		{"percentage", "under 70%", 6.0},
		{"conditional", "if small else large", 6.0},
		{"long", "one two three four five six seven eight nine ten", 6.0},
		{
			"everything",
			"Rate this image good if the product in the image is below 70% of the total image, else bad",
			9.0,
		},
		{"case insensitive vocabulary", "CLASSIFY it", 6.0},
	}

	e := heuristic.New(heuristic.WithSeed(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Evaluate(context.Background(), tt.prompt)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateImprovements(t *testing.T) {
	e := heuristic.New(heuristic.WithSeed(3))
	ctx := context.Background()

	got, err := e.GenerateImprovements(ctx, "Rate This Image", 6, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotEqual(t, got[0], got[1])
	for _, p := range got {
		assert.True(t, strings.HasSuffix(p, "rate this image"), p)
	}

	all, err := e.GenerateImprovements(ctx, "x", 5, 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"Please x",
		"Analyze the image and x",
		"Carefully examine the image to x",
		"Using precise measurements, x",
	}, all)

	none, err := e.GenerateImprovements(ctx, "x", 5, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGenerateImprovements_Seeded(t *testing.T) {
	a, _ := heuristic.New(heuristic.WithSeed(9)).GenerateImprovements(context.Background(), "p", 5, 2)
	b, _ := heuristic.New(heuristic.WithSeed(9)).GenerateImprovements(context.Background(), "p", 5, 2)
	assert.Equal(t, a, b)
}

func TestHeuristic_Contract(t *testing.T) {
	tests.EvaluatorContractTest(t, heuristic.New(heuristic.WithSeed(5)), []string{
		"",
		"rate it",
		config.DefaultPrompt,
		"if % else good bad rate classify one two three four five six seven",
	})
}
