package observability

import (
	"context"

	"github.com/aretw0/arbor/pkg/domain"
)

// CombineHooks fans every event out to each hook set, in argument order.
func CombineHooks(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks

	var onNode []func(context.Context, *domain.NodeEvent)
	var onExpand []func(context.Context, *domain.ExpandEvent)
	var onIteration []func(context.Context, *domain.IterationEvent)
	var onStop []func(context.Context, *domain.StopEvent)
	for _, s := range sets {
		if s.OnNodeCreated != nil {
			onNode = append(onNode, s.OnNodeCreated)
		}
		if s.OnExpand != nil {
			onExpand = append(onExpand, s.OnExpand)
		}
		if s.OnIteration != nil {
			onIteration = append(onIteration, s.OnIteration)
		}
		if s.OnStop != nil {
			onStop = append(onStop, s.OnStop)
		}
	}

	if len(onNode) > 0 {
		combined.OnNodeCreated = func(ctx context.Context, e *domain.NodeEvent) {
			for _, fn := range onNode {
				fn(ctx, e)
			}
		}
	}
	if len(onExpand) > 0 {
		combined.OnExpand = func(ctx context.Context, e *domain.ExpandEvent) {
			for _, fn := range onExpand {
				fn(ctx, e)
			}
		}
	}
	if len(onIteration) > 0 {
		combined.OnIteration = func(ctx context.Context, e *domain.IterationEvent) {
			for _, fn := range onIteration {
				fn(ctx, e)
			}
		}
	}
	if len(onStop) > 0 {
		combined.OnStop = func(ctx context.Context, e *domain.StopEvent) {
			for _, fn := range onStop {
				fn(ctx, e)
			}
		}
	}
	return combined
}

// LoggingHooks logs node creation and iterations at debug level and the
// stop event at info (or error when the run failed).
func LoggingHooks(logger interface {
	DebugContext(ctx context.Context, msg string, args ...any)
	InfoContext(ctx context.Context, msg string, args ...any)
	ErrorContext(ctx context.Context, msg string, args ...any)
}) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeCreated: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_created",
				"run_id", e.RunID,
				"node_id", e.Node.ID,
				"parent_id", e.Node.ParentID,
				"score", e.Node.Score,
				"improvement", e.Improvement,
				"queued", e.Queued,
			)
		},
		OnIteration: func(ctx context.Context, e *domain.IterationEvent) {
			logger.DebugContext(ctx, "iteration",
				"run_id", e.RunID,
				"iteration", e.Iteration,
				"frontier", e.FrontierSize,
				"nodes", e.StoreSize,
				"best_score", e.BestScore,
			)
		},
		OnStop: func(ctx context.Context, e *domain.StopEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "run_stopped", "run_id", e.RunID, "reason", e.Outcome.Reason, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "run_stopped",
				"run_id", e.RunID,
				"reason", e.Outcome.Reason,
				"iterations", e.Outcome.Iterations,
				"nodes", e.Outcome.StoreSize,
				"best_score", e.Outcome.BestScore,
			)
		},
	}
}
