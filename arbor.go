package arbor

import (
	"context"
	"io"
	"log/slog"

	"github.com/aretw0/arbor/internal/runtime"
	"github.com/aretw0/arbor/internal/tree"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Explorer is the high-level entry point for the arbor library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Explorer struct {
	runtime     *runtime.Engine
	cfg         domain.Config
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runID       string
	newID       func() string
	runtimeOpts []runtime.EngineOption
}

// Option defines a functional option for configuring the Explorer.
type Option func(*Explorer)

// WithConfig sets the exploration policy (default: domain.DefaultConfig()).
func WithConfig(cfg domain.Config) Option {
	return func(e *Explorer) {
		e.cfg = cfg
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Explorer) {
		e.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the explorer.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Explorer) {
		e.logger = logger
	}
}

// WithRunID labels the run (default: a random UUID).
func WithRunID(id string) Option {
	return func(e *Explorer) {
		e.runID = id
	}
}

// WithIDGenerator sets how node identifiers are allocated (default: UUIDs).
func WithIDGenerator(gen func() string) Option {
	return func(e *Explorer) {
		e.newID = gen
	}
}

// WithTracer sets the OpenTelemetry tracer used for exploration spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(e *Explorer) {
		e.runtimeOpts = append(e.runtimeOpts, runtime.WithTracer(tracer))
	}
}

// New scores the initial prompt and returns an explorer ready to Explore.
func New(ctx context.Context, initialPrompt string, evaluator ports.Evaluator, opts ...Option) (*Explorer, error) {
	e := &Explorer{cfg: domain.DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}

	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	// Ensure logger is initialized (so we don't pass nil to runtime, which would overwrite its default)
	if e.logger == nil {
		e.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	e.logger = e.logger.With("run_id", e.runID)

	var storeOpts []tree.Option
	if e.newID != nil {
		storeOpts = append(storeOpts, tree.WithIDGenerator(e.newID))
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(e.hooks),
		runtime.WithLogger(e.logger),
		runtime.WithRunID(e.runID),
		runtime.WithStore(tree.New(storeOpts...)),
	}
	runtimeOpts = append(runtimeOpts, e.runtimeOpts...)

	eng, err := runtime.NewEngine(ctx, initialPrompt, evaluator, e.cfg, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	e.runtime = eng
	return e, nil
}

// Explore runs the search until one of the stop conditions holds.
// Calling it again continues where the previous call stopped.
func (e *Explorer) Explore(ctx context.Context) (domain.Outcome, error) {
	return e.runtime.Explore(ctx)
}

// BestNode returns the highest scoring node; ties go to the earliest created.
func (e *Explorer) BestNode() (domain.Node, error) {
	return e.runtime.BestNode()
}

// Node returns the node with the given ID.
func (e *Explorer) Node(id string) (domain.Node, error) {
	return e.runtime.Node(id)
}

// Nodes returns every node in creation order, root first.
func (e *Explorer) Nodes() []domain.Node {
	return e.runtime.Nodes()
}

// Frontier lists the nodes awaiting expansion, in selection order.
func (e *Explorer) Frontier() []domain.FrontierEntry {
	return e.runtime.Frontier()
}

// Iterations returns the number of expansions performed so far.
func (e *Explorer) Iterations() int {
	return e.runtime.Iterations()
}

// Snapshot captures the tree for rendering or archiving.
func (e *Explorer) Snapshot() domain.Snapshot {
	return e.runtime.Snapshot()
}

// RunID returns the run label.
func (e *Explorer) RunID() string {
	return e.runID
}

// Config returns the exploration policy in use.
func (e *Explorer) Config() domain.Config {
	return e.cfg
}
