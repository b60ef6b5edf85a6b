package domain

import "errors"

// ErrNodeNotFound is returned when a node ID cannot be found in the store.
// Inside the engine it always signals a consistency bug.
var ErrNodeNotFound = errors.New("node not found")

// ErrRootExists is returned when a second parentless node is created.
var ErrRootExists = errors.New("root node already exists")

// ErrDuplicateID is returned when the ID generator yields an ID already in the store.
var ErrDuplicateID = errors.New("duplicate node id")

// ErrEmptyStore is returned by queries on a store without nodes.
var ErrEmptyStore = errors.New("store is empty")

// ErrScoreOutOfRange is returned under ScorePolicyReject when the evaluator
// produces a score outside [MinScore, PerfectScore].
var ErrScoreOutOfRange = errors.New("score out of range")

// ErrInvalidConfig is returned when a Config fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// ErrEvaluator wraps failures reported by the evaluator capability.
var ErrEvaluator = errors.New("evaluator failed")

// ErrRunNotFound is returned when a run ID cannot be found in an archive.
var ErrRunNotFound = errors.New("run not found")

// ErrRunInProgress is returned when a run ID is reused while that run is still exploring.
var ErrRunInProgress = errors.New("run already in progress")
