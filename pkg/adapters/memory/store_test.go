package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunArchiveContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	snap := &domain.Snapshot{
		RunID: "iso",
		Nodes: []domain.Node{{ID: "root", Prompt: "P", ChildrenIDs: []string{"a"}}},
	}
	require.NoError(t, store.Save(ctx, snap))

	snap.Nodes[0].ChildrenIDs[0] = "mutated"
	loaded, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.Nodes[0].ChildrenIDs[0])

	loaded.Nodes[0].Prompt = "changed"
	again, err := store.Load(ctx, "iso")
	require.NoError(t, err)
	assert.Equal(t, "P", again.Nodes[0].Prompt)
}

func TestMemoryStore_ListOrder(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	for _, id := range []string{"b", "a", "c", "a"} {
		require.NoError(t, store.Save(ctx, &domain.Snapshot{RunID: id}))
	}
	require.NoError(t, store.Delete(ctx, "c"))

	runs, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, runs)
}
