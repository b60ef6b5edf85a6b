package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSnapshot(runID string) *domain.Snapshot {
	return &domain.Snapshot{
		RunID:     runID,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		Config:    domain.DefaultConfig(),
		Outcome: domain.Outcome{
			Reason:     domain.StopIterationsExhausted,
			Iterations: 1,
			StoreSize:  3,
			BestID:     "p1",
			BestScore:  6.0,
		},
		Nodes: []domain.Node{
			{ID: "root", Prompt: "P", Score: 5.0, ChildrenIDs: []string{"p1", "p2"}},
			{ID: "p1", Prompt: "P1", Score: 6.0, ParentID: "root", ChildrenIDs: []string{}},
			{ID: "p2", Prompt: "P2", Score: 5.1, ParentID: "root", ChildrenIDs: []string{}},
		},
		Frontier: []domain.FrontierEntry{{ID: "p1", Score: 6.0}},
	}
}

// RunArchiveContract runs a suite of tests to verify that an Archive implementation
// adheres to the defined interface contract.
func RunArchiveContract(t *testing.T, archive Archive) {
	ctx := context.Background()
	runID := "contract-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := contractSnapshot(runID)

		err := archive.Save(ctx, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := archive.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap.RunID, loaded.RunID)
		assert.Equal(t, snap.Outcome, loaded.Outcome)
		assert.Equal(t, snap.Config, loaded.Config)
		require.Len(t, loaded.Nodes, 3)
		assert.Equal(t, "root", loaded.Nodes[0].ID, "node order must be preserved")
		assert.Equal(t, []string{"p1", "p2"}, loaded.Nodes[0].ChildrenIDs)
		assert.Equal(t, "root", loaded.Nodes[1].ParentID)
		assert.Equal(t, snap.Frontier, loaded.Frontier)
		assert.True(t, snap.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Save overwrites", func(t *testing.T) {
		snap := contractSnapshot(runID)
		snap.Outcome.Iterations = 7
		require.NoError(t, archive.Save(ctx, snap))

		loaded, err := archive.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, 7, loaded.Outcome.Iterations)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := archive.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := archive.Save(ctx, contractSnapshot(runID))
		require.NoError(t, err)

		err = archive.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = archive.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")

		assert.NoError(t, archive.Delete(ctx, runID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		require.NoError(t, archive.Save(ctx, contractSnapshot(id1)))
		require.NoError(t, archive.Save(ctx, contractSnapshot(id2)))

		defer func() {
			_ = archive.Delete(ctx, id1)
			_ = archive.Delete(ctx, id2)
		}()

		runs, err := archive.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}
