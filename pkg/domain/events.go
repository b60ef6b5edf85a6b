package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeCreated EventType = "node_created"
	EventExpand      EventType = "expand"
	EventIteration   EventType = "iteration"
	EventStop        EventType = "stop"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id,omitempty"`
}

// NodeEvent is emitted for every node added to the store, root included.
type NodeEvent struct {
	EventBase
	Node        Node    `json:"node"`
	Improvement float64 `json:"improvement"`
	Queued      bool    `json:"queued"` // true if the node joined the frontier
}

// ExpandEvent is emitted after the evaluator proposed successors for a node.
type ExpandEvent struct {
	EventBase
	NodeID    string  `json:"node_id"`
	Score     float64 `json:"score"`
	Iteration int     `json:"iteration"`
	Requested int     `json:"requested"`
	Proposed  int     `json:"proposed"`
}

// IterationEvent is the per-iteration progress signal.
type IterationEvent struct {
	EventBase
	Iteration     int     `json:"iteration"`
	MaxIterations int     `json:"max_iterations"`
	FrontierSize  int     `json:"frontier_size"`
	StoreSize     int     `json:"store_size"`
	BestScore     float64 `json:"best_score"`
}

// StopEvent is emitted once per Explore call when the loop exits.
type StopEvent struct {
	EventBase
	Outcome Outcome `json:"outcome"`
	Err     error   `json:"-"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks are side channels: they never influence the exploration.
type LifecycleHooks struct {
	OnNodeCreated func(context.Context, *NodeEvent)
	OnExpand      func(context.Context, *ExpandEvent)
	OnIteration   func(context.Context, *IterationEvent)
	OnStop        func(context.Context, *StopEvent)
}
