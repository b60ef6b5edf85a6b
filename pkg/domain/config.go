package domain

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Config holds the pruning and termination policy of a single run.
type Config struct {
	// MinImprovementThreshold is the strict lower bound a child's score gain
	// over its parent must exceed for the child to join the frontier.
	MinImprovementThreshold float64 `json:"min_improvement_threshold" yaml:"min_improvement_threshold" mapstructure:"min_improvement_threshold"`

	// MaxIterations caps the number of expansions.
	MaxIterations int `json:"max_iterations" yaml:"max_iterations" mapstructure:"max_iterations" validate:"gte=0"`

	// MaxChildrenPerNode is the count requested from the evaluator per expansion.
	MaxChildrenPerNode int `json:"max_children_per_node" yaml:"max_children_per_node" mapstructure:"max_children_per_node" validate:"gte=1"`

	PerfectScore      float64           `json:"perfect_score" yaml:"perfect_score" mapstructure:"perfect_score" validate:"gt=0"`
	PerfectScoreMatch PerfectScoreMatch `json:"perfect_score_match" yaml:"perfect_score_match" mapstructure:"perfect_score_match" validate:"oneof=exact at_least"`
	ScorePolicy       ScorePolicy       `json:"score_policy" yaml:"score_policy" mapstructure:"score_policy" validate:"oneof=pass_through clamp reject"`
}

// DefaultConfig returns the reference configuration.
func DefaultConfig() Config {
	return Config{
		MinImprovementThreshold: DefaultMinImprovementThreshold,
		MaxIterations:           DefaultMaxIterations,
		MaxChildrenPerNode:      DefaultMaxChildrenPerNode,
		PerfectScore:            DefaultPerfectScore,
		PerfectScoreMatch:       MatchExact,
		ScorePolicy:             ScorePassThrough,
	}
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Validate checks the configuration. Failures wrap ErrInvalidConfig.
func (c Config) Validate() error {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// IsPerfect reports whether score triggers early termination under this config.
func (c Config) IsPerfect(score float64) bool {
	if c.PerfectScoreMatch == MatchAtLeast {
		return score >= c.PerfectScore
	}
	return score == c.PerfectScore
}

// InRange reports whether score lies inside [MinScore, PerfectScore].
func (c Config) InRange(score float64) bool {
	return score >= MinScore && score <= c.PerfectScore
}

// Clamp bounds score into [MinScore, PerfectScore].
func (c Config) Clamp(score float64) float64 {
	return min(max(score, MinScore), c.PerfectScore)
}
