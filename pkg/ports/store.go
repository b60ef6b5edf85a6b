package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// Archive defines the interface for persisting finished run snapshots.
// Archived runs are read-only records; an exploration is never resumed from one.
type Archive interface {
	// Save persists the snapshot under snap.RunID, replacing any previous value.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Load retrieves the snapshot of a run.
	// Returns domain.ErrRunNotFound if the run does not exist.
	Load(ctx context.Context, runID string) (*domain.Snapshot, error)

	// Delete removes a run. Deleting an unknown run is not an error.
	Delete(ctx context.Context, runID string) error

	// List returns the IDs of the archived runs.
	List(ctx context.Context) ([]string, error)
}
