// Package runtime implements the exploration engine: greedy best-first
// expansion of a prompt tree under an iteration budget and an
// improvement-threshold pruning rule.
package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/aretw0/arbor/internal/tree"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/arbor/internal/runtime"

// Engine drives one exploration run. It owns the node store and the frontier.
// It is single-threaded: do not call its methods concurrently.
type Engine struct {
	cfg       domain.Config
	evaluator ports.Evaluator
	store     *tree.Store
	frontier  frontier

	iterations int
	perfect    bool // some node in the store matched the perfect score
	halted     bool // a previous Explore stopped on a perfect score
	last       domain.Outcome

	runID     string
	createdAt time.Time
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	tracer    trace.Tracer
}

// NewEngine evaluates the initial prompt and creates the root node.
func NewEngine(ctx context.Context, initialPrompt string, evaluator ports.Evaluator, cfg domain.Config, opts ...EngineOption) (*Engine, error) {
	if strings.TrimSpace(initialPrompt) == "" {
		return nil, fmt.Errorf("%w: initial prompt is required", domain.ErrInvalidConfig)
	}
	if evaluator == nil {
		return nil, fmt.Errorf("%w: evaluator is required", domain.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:       cfg,
		evaluator: evaluator,
		createdAt: time.Now().UTC(),
		logger:    slog.New(slog.NewJSONHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.store == nil {
		e.store = tree.New()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(tracerName)
	}

	score, err := e.score(ctx, initialPrompt)
	if err != nil {
		return nil, err
	}
	root, err := e.store.Create(initialPrompt, score, "")
	if err != nil {
		return nil, fmt.Errorf("failed to create root: %w", err)
	}
	e.frontier.push(frontierItem{id: root.ID, score: root.Score, seq: sequenceOf(root)})
	e.perfect = cfg.IsPerfect(root.Score)

	e.logger.Debug("root created", "node_id", root.ID, "score", root.Score)
	e.emitNode(ctx, root, 0, true)
	return e, nil
}

// Explore runs the selection/expansion loop until the frontier is empty, the
// iteration budget is spent, or a perfect score appears in the store.
//
// The budget belongs to the engine: calling Explore again continues from the
// current frontier and counter. The partial tree is kept when an error is
// returned, and an expansion that failed midway still counts against the budget.
func (e *Engine) Explore(ctx context.Context) (domain.Outcome, error) {
	ctx, span := e.tracer.Start(ctx, "arbor.explore", trace.WithAttributes(
		attribute.String("arbor.run_id", e.runID),
		attribute.Int("arbor.max_iterations", e.cfg.MaxIterations),
		attribute.Int("arbor.max_children", e.cfg.MaxChildrenPerNode),
		attribute.Float64("arbor.min_improvement", e.cfg.MinImprovementThreshold),
	))
	defer span.End()

	startIterations := e.iterations
	created := 0

	var reason domain.StopReason
	var runErr error
	for {
		if e.halted {
			reason = domain.StopPerfectScore
			break
		}
		if len(e.frontier) == 0 {
			reason = domain.StopFrontierExhausted
			break
		}
		if e.iterations >= e.cfg.MaxIterations {
			reason = domain.StopIterationsExhausted
			break
		}
		if err := ctx.Err(); err != nil {
			reason, runErr = domain.StopCanceled, err
			break
		}

		n, err := e.expand(ctx)
		created += n
		if err != nil {
			reason, runErr = domain.StopInternalError, err
			if errors.Is(err, domain.ErrEvaluator) || errors.Is(err, domain.ErrScoreOutOfRange) {
				reason = domain.StopEvaluatorError
			}
			// A child scored before the failure may already be perfect.
			e.halted = e.perfect
			break
		}

		if e.perfect {
			e.halted = true
			reason = domain.StopPerfectScore
			break
		}
	}

	out := e.outcome(reason)
	out.Expanded = e.iterations - startIterations
	out.NodesCreated = created
	e.last = out

	span.SetAttributes(
		attribute.String("arbor.stop_reason", string(reason)),
		attribute.Int("arbor.iterations", out.Iterations),
		attribute.Int("arbor.nodes", out.StoreSize),
		attribute.Float64("arbor.best_score", out.BestScore),
	)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, runErr.Error())
		e.logger.Error("exploration failed", "reason", reason, "iterations", out.Iterations, "err", runErr)
	} else {
		e.logger.Info("exploration finished",
			"reason", reason,
			"iterations", out.Iterations,
			"nodes", out.StoreSize,
			"best_score", out.BestScore,
		)
	}

	if e.hooks.OnStop != nil {
		e.hooks.OnStop(ctx, &domain.StopEvent{EventBase: e.base(domain.EventStop), Outcome: out, Err: runErr})
	}
	return out, runErr
}

// expand pops the best frontier entry, generates and scores its successors,
// and queues the ones whose improvement exceeds the threshold.
// It returns the number of children added to the store.
func (e *Engine) expand(ctx context.Context) (int, error) {
	item := e.frontier.popMax()
	parent, err := e.store.Get(item.id)
	if err != nil {
		return 0, fmt.Errorf("frontier references unknown node: %w", err)
	}
	iteration := e.iterations + 1

	ctx, span := e.tracer.Start(ctx, "arbor.expand", trace.WithAttributes(
		attribute.String("arbor.node_id", parent.ID),
		attribute.Float64("arbor.node_score", parent.Score),
		attribute.Int("arbor.iteration", iteration),
	))
	defer span.End()

	e.logger.Debug("node selected", "node_id", parent.ID, "score", parent.Score, "iteration", iteration, "frontier", len(e.frontier))

	proposals, err := e.evaluator.GenerateImprovements(ctx, parent.Prompt, parent.Score, e.cfg.MaxChildrenPerNode)
	e.iterations = iteration
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("%w: generate improvements for %s: %w", domain.ErrEvaluator, parent.ID, err)
	}
	if len(proposals) > e.cfg.MaxChildrenPerNode {
		e.logger.Warn("evaluator proposed more candidates than requested",
			"node_id", parent.ID, "requested", e.cfg.MaxChildrenPerNode, "proposed", len(proposals))
	}
	if e.hooks.OnExpand != nil {
		e.hooks.OnExpand(ctx, &domain.ExpandEvent{
			EventBase: e.base(domain.EventExpand),
			NodeID:    parent.ID,
			Score:     parent.Score,
			Iteration: iteration,
			Requested: e.cfg.MaxChildrenPerNode,
			Proposed:  len(proposals),
		})
	}

	created := 0
	for _, prompt := range proposals {
		score, err := e.score(ctx, prompt)
		if err != nil {
			span.RecordError(err)
			return created, err
		}
		child, err := e.store.Create(prompt, score, parent.ID)
		if err != nil {
			return created, fmt.Errorf("failed to store child of %s: %w", parent.ID, err)
		}
		created++

		improvement := domain.CalculateImprovement(parent.Score, child.Score)
		queued := improvement > e.cfg.MinImprovementThreshold
		if queued {
			e.frontier.push(frontierItem{id: child.ID, score: child.Score, seq: sequenceOf(child)})
		}
		if e.cfg.IsPerfect(child.Score) {
			e.perfect = true
		}

		e.logger.Debug("child created",
			"node_id", child.ID, "parent_id", parent.ID, "score", child.Score,
			"improvement", improvement, "queued", queued)
		e.emitNode(ctx, child, improvement, queued)
	}

	span.SetAttributes(attribute.Int("arbor.children", created))

	if e.hooks.OnIteration != nil {
		best, _ := e.store.Best()
		e.hooks.OnIteration(ctx, &domain.IterationEvent{
			EventBase:     e.base(domain.EventIteration),
			Iteration:     iteration,
			MaxIterations: e.cfg.MaxIterations,
			FrontierSize:  len(e.frontier),
			StoreSize:     e.store.Len(),
			BestScore:     best.Score,
		})
	}
	return created, nil
}

// score calls the evaluator once and applies the configured ScorePolicy.
func (e *Engine) score(ctx context.Context, prompt string) (float64, error) {
	s, err := e.evaluator.Evaluate(ctx, prompt)
	if err != nil {
		return 0, fmt.Errorf("%w: evaluate: %w", domain.ErrEvaluator, err)
	}
	// No policy can order or clamp NaN and infinities.
	if math.IsNaN(s) || math.IsInf(s, 0) {
		return 0, fmt.Errorf("%w: non-finite score %v", domain.ErrScoreOutOfRange, s)
	}
	if e.cfg.InRange(s) {
		return s, nil
	}

	switch e.cfg.ScorePolicy {
	case domain.ScoreReject:
		return 0, fmt.Errorf("%w: %v not in [%v, %v]", domain.ErrScoreOutOfRange, s, domain.MinScore, e.cfg.PerfectScore)
	case domain.ScoreClamp:
		clamped := e.cfg.Clamp(s)
		e.logger.Warn("score clamped", "score", s, "clamped", clamped)
		return clamped, nil
	default:
		e.logger.Warn("score outside contract range", "score", s)
		return s, nil
	}
}

// BestNode returns the highest scoring node; ties go to the earliest created.
func (e *Engine) BestNode() (domain.Node, error) {
	return e.store.Best()
}

// Node returns the node with the given ID.
func (e *Engine) Node(id string) (domain.Node, error) {
	return e.store.Get(id)
}

// Nodes returns every node in creation order.
func (e *Engine) Nodes() []domain.Node {
	return e.store.Nodes()
}

// Frontier lists the nodes awaiting expansion, in selection order.
func (e *Engine) Frontier() []domain.FrontierEntry {
	return e.frontier.entries()
}

// Iterations returns the number of expansions performed so far.
func (e *Engine) Iterations() int {
	return e.iterations
}

// Config returns the engine configuration.
func (e *Engine) Config() domain.Config {
	return e.cfg
}

// RunID returns the run label given at construction, if any.
func (e *Engine) RunID() string {
	return e.runID
}

// Snapshot captures the current tree for read-only consumers.
func (e *Engine) Snapshot() domain.Snapshot {
	out := e.outcome(e.last.Reason)
	out.Expanded, out.NodesCreated = e.last.Expanded, e.last.NodesCreated
	return domain.Snapshot{
		RunID:     e.runID,
		CreatedAt: e.createdAt,
		Config:    e.cfg,
		Outcome:   out,
		Nodes:     e.store.Nodes(),
		Frontier:  e.frontier.entries(),
	}
}

func (e *Engine) outcome(reason domain.StopReason) domain.Outcome {
	out := domain.Outcome{
		Reason:       reason,
		Iterations:   e.iterations,
		StoreSize:    e.store.Len(),
		FrontierSize: len(e.frontier),
	}
	if best, err := e.store.Best(); err == nil {
		out.BestID, out.BestScore = best.ID, best.Score
	}
	return out
}

func (e *Engine) base(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: e.runID}
}

func (e *Engine) emitNode(ctx context.Context, n domain.Node, improvement float64, queued bool) {
	if e.hooks.OnNodeCreated == nil {
		return
	}
	e.hooks.OnNodeCreated(ctx, &domain.NodeEvent{
		EventBase:   e.base(domain.EventNodeCreated),
		Node:        n,
		Improvement: improvement,
		Queued:      queued,
	})
}

func sequenceOf(n domain.Node) int {
	seq, _ := n.Metadata[domain.MetaSequence].(int)
	return seq
}
