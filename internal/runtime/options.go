package runtime

import (
	"log/slog"

	"github.com/aretw0/arbor/internal/tree"
	"github.com/aretw0/arbor/pkg/domain"
	"go.opentelemetry.io/otel/trace"
)

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStore injects the node store. It must be empty.
func WithStore(store *tree.Store) EngineOption {
	return func(e *Engine) {
		e.store = store
	}
}

// WithTracer overrides the OpenTelemetry tracer (default: the global provider).
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		e.tracer = tracer
	}
}

// WithRunID labels events and snapshots with a run identifier.
func WithRunID(id string) EngineOption {
	return func(e *Engine) {
		e.runID = id
	}
}
