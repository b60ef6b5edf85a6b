package observability

import (
	"context"
	"strconv"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors of the explorer.
type Metrics struct {
	Iterations   prometheus.Counter
	NodesCreated *prometheus.CounterVec
	NodeScore    prometheus.Histogram
	Runs         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "arbor_iterations_total",
			Help: "Total number of node expansions",
		}),
		NodesCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_nodes_created_total",
				Help: "Total number of nodes added to exploration trees",
			},
			[]string{"pruned"},
		),
		NodeScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "arbor_node_score",
			Help:    "Evaluator scores of created nodes",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		}),
		Runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_runs_total",
				Help: "Total number of finished Explore calls by stop reason",
			},
			[]string{"reason"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Iterations, m.NodesCreated, m.NodeScore, m.Runs)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeCreated: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodesCreated.WithLabelValues(strconv.FormatBool(!e.Queued)).Inc()
			m.NodeScore.Observe(e.Node.Score)
		},
		OnIteration: func(ctx context.Context, e *domain.IterationEvent) {
			m.Iterations.Inc()
		},
		OnStop: func(ctx context.Context, e *domain.StopEvent) {
			m.Runs.WithLabelValues(string(e.Outcome.Reason)).Inc()
		},
	}
}
