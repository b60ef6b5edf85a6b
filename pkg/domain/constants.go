package domain

// Score scale of the evaluator contract.
const (
	MinScore            = 1.0
	DefaultPerfectScore = 10.0
)

// Config defaults, matching the reference explorer.
const (
	DefaultMinImprovementThreshold = 0.1
	DefaultMaxIterations           = 100
	DefaultMaxChildrenPerNode      = 2
)

// PerfectScoreMatch selects how the early-termination check compares scores
// against the perfect score.
type PerfectScoreMatch string

const (
	// MatchExact stops only when a score equals the perfect score exactly.
	// A score above the ceiling never triggers it.
	MatchExact PerfectScoreMatch = "exact"
	// MatchAtLeast stops when a score reaches or exceeds the perfect score.
	MatchAtLeast PerfectScoreMatch = "at_least"
)

// ScorePolicy selects what the engine does with scores outside the contract range.
type ScorePolicy string

const (
	// ScorePassThrough accepts any score as-is.
	ScorePassThrough ScorePolicy = "pass_through"
	// ScoreClamp clamps scores into [MinScore, PerfectScore].
	ScoreClamp ScorePolicy = "clamp"
	// ScoreReject aborts the run with ErrScoreOutOfRange.
	ScoreReject ScorePolicy = "reject"
)
