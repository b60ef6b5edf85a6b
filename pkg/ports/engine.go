package ports

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// ExploreRequest describes one exploration run requested by a driver.
type ExploreRequest struct {
	InitialPrompt string `json:"initial_prompt" jsonschema_description:"The prompt to improve"`

	// Config overrides the driver's default exploration settings when set.
	Config *domain.Config `json:"config,omitempty"`

	// RunID labels the run. Drivers generate one when empty.
	RunID string `json:"run_id,omitempty"`
}

// Explorer runs a complete exploration, start to stop, and returns its snapshot.
// This is the interface used by request-driven adapters (e.g., HTTP, MCP), which
// create a fresh engine per request.
//
// When the engine was built but the run failed (evaluator error, cancellation),
// Run returns the partial snapshot together with the error.
type Explorer interface {
	Run(ctx context.Context, req ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error)
}

// ExplorerFunc adapts a function into an Explorer.
type ExplorerFunc func(ctx context.Context, req ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error)

// Run calls f.
func (f ExplorerFunc) Run(ctx context.Context, req ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error) {
	return f(ctx, req, hooks)
}
