package arbor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/arbor/internal/sanitize"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
)

// Runner executes whole explorations on behalf of request-driven hosts.
// It implements ports.Explorer and is safe for concurrent use as long as
// NewEvaluator returns an independent evaluator on every call.
type Runner struct {
	// NewEvaluator builds the evaluator of one run.
	NewEvaluator func() (ports.Evaluator, error)

	// Config is used for requests that carry none.
	Config domain.Config

	// Hooks receive the events of every run, before the per-call hooks.
	Hooks domain.LifecycleHooks

	// Archive, when set, receives the snapshot of every run that got past construction.
	Archive ports.Archive

	Logger *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

var _ ports.Explorer = (*Runner)(nil)

// NewRunner creates a Runner with the default configuration.
func NewRunner(newEvaluator func() (ports.Evaluator, error)) *Runner {
	return &Runner{
		NewEvaluator: newEvaluator,
		Config:       domain.DefaultConfig(),
	}
}

// Run explores req.InitialPrompt to completion.
func (r *Runner) Run(ctx context.Context, req ports.ExploreRequest, hooks domain.LifecycleHooks) (*domain.Snapshot, error) {
	if r.NewEvaluator == nil {
		return nil, errors.New("runner has no evaluator factory")
	}
	logger := r.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	prompt, err := sanitize.Prompt(req.InitialPrompt)
	if err != nil {
		return nil, fmt.Errorf("%w: initial prompt: %w", domain.ErrInvalidConfig, err)
	}

	cfg := r.Config
	if req.Config != nil {
		cfg = *req.Config
	}
	runID := req.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	if err := r.claim(runID); err != nil {
		return nil, err
	}
	defer r.release(runID)

	evaluator, err := r.NewEvaluator()
	if err != nil {
		return nil, fmt.Errorf("failed to create evaluator: %w", err)
	}

	explorer, err := New(ctx, prompt, evaluator,
		WithConfig(cfg),
		WithRunID(runID),
		WithLogger(logger),
		WithLifecycleHooks(observability.CombineHooks(r.Hooks, hooks)),
	)
	if err != nil {
		return nil, err
	}

	_, runErr := explorer.Explore(ctx)
	snap := explorer.Snapshot()

	if r.Archive != nil {
		// The request context may already be canceled; archiving must still happen.
		if err := r.Archive.Save(context.WithoutCancel(ctx), &snap); err != nil {
			logger.Error("failed to archive run", "run_id", runID, "err", err)
			if runErr == nil {
				return &snap, fmt.Errorf("failed to archive run: %w", err)
			}
		}
	}
	return &snap, runErr
}

// claim marks runID as exploring. Concurrent runs sharing an ID would
// overwrite each other's archive entry.
func (r *Runner) claim(runID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.active == nil {
		r.active = make(map[string]struct{})
	}
	if _, busy := r.active[runID]; busy {
		return fmt.Errorf("%w: %s", domain.ErrRunInProgress, runID)
	}
	r.active[runID] = struct{}{}
	return nil
}

func (r *Runner) release(runID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, runID)
}
