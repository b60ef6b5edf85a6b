package domain_test

import (
	"testing"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() domain.Snapshot {
	return domain.Snapshot{
		RunID: "run-1",
		Nodes: []domain.Node{
			{ID: "r", Prompt: "P", Score: 5, ChildrenIDs: []string{"a", "b"}},
			{ID: "a", Prompt: "P1", Score: 6, ParentID: "r", ChildrenIDs: []string{"c"}},
			{ID: "b", Prompt: "P2", Score: 5.1, ParentID: "r"},
			{ID: "c", Prompt: "P3", Score: 7, ParentID: "a"},
		},
		Frontier: []domain.FrontierEntry{{ID: "c", Score: 7}},
		Outcome:  domain.Outcome{BestID: "c", BestScore: 7},
	}
}

func TestSnapshot_PathTo(t *testing.T) {
	snap := sampleSnapshot()

	path := snap.PathTo("c")
	require.Len(t, path, 3)
	assert.Equal(t, "r", path[0].ID)
	assert.Equal(t, "a", path[1].ID)
	assert.Equal(t, "c", path[2].ID)

	assert.Nil(t, snap.PathTo("missing"))
}

func TestSnapshot_Lookups(t *testing.T) {
	snap := sampleSnapshot()

	root, ok := snap.Root()
	require.True(t, ok)
	assert.Equal(t, "r", root.ID)

	best, ok := snap.Best()
	require.True(t, ok)
	assert.Equal(t, "P3", best.Prompt)

	assert.True(t, snap.InFrontier("c"))
	assert.False(t, snap.InFrontier("b"))
}
