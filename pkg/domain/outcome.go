package domain

// StopReason names the terminal state of an exploration loop.
type StopReason string

const (
	StopFrontierExhausted   StopReason = "frontier_exhausted"
	StopIterationsExhausted StopReason = "iterations_exhausted"
	StopPerfectScore        StopReason = "perfect_score"
	StopCanceled            StopReason = "canceled"
	StopEvaluatorError      StopReason = "evaluator_error"
	StopInternalError       StopReason = "internal_error"
)

// Outcome summarizes one Explore call.
type Outcome struct {
	Reason       StopReason `json:"reason"`
	Iterations   int        `json:"iterations"` // total expansions performed by the engine so far
	Expanded     int        `json:"expanded"`   // expansions performed by this call
	NodesCreated int        `json:"nodes_created"`
	StoreSize    int        `json:"store_size"`
	FrontierSize int        `json:"frontier_size"`
	BestID       string     `json:"best_id"`
	BestScore    float64    `json:"best_score"`
}

// FrontierEntry is a node eligible for expansion.
type FrontierEntry struct {
	ID    string  `json:"id"`
	Score float64 `json:"score"`
}
