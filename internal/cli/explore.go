package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/internal/presentation/tui"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
)

// Overrides carries the flags given on the command line. Nil fields keep
// the value from the configuration file.
type Overrides struct {
	Prompt        *string
	Threshold     *float64
	MaxIterations *int
	MaxChildren   *int
	Seed          *uint64
	Evaluator     *string
	Archive       *string
	LogLevel      *string
}

// LoadConfig reads path (or the defaults when path is empty), applies the
// overrides and validates the result.
func LoadConfig(path string, ov Overrides) (config.File, error) {
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return config.File{}, err
		}
	}

	if ov.Prompt != nil {
		cfg.InitialPrompt = *ov.Prompt
	}
	if ov.Threshold != nil {
		cfg.Explore.MinImprovementThreshold = *ov.Threshold
	}
	if ov.MaxIterations != nil {
		cfg.Explore.MaxIterations = *ov.MaxIterations
	}
	if ov.MaxChildren != nil {
		cfg.Explore.MaxChildrenPerNode = *ov.MaxChildren
	}
	if ov.Seed != nil {
		cfg.Evaluator.Seed = *ov.Seed
	}
	if ov.Evaluator != nil {
		cfg.Evaluator.Kind = *ov.Evaluator
	}
	if ov.Archive != nil {
		cfg.Archive.Kind = *ov.Archive
	}
	if ov.LogLevel != nil {
		cfg.LogLevel = *ov.LogLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.File{}, err
	}
	return cfg, nil
}

// NewRunner wires the evaluator, archive and logging hooks selected by cfg
// into an arbor.Runner. Extra hooks run after the logging ones.
func NewRunner(cfg config.File, archive ports.Archive, logger *slog.Logger, hooks ...domain.LifecycleHooks) *arbor.Runner {
	runner := arbor.NewRunner(func() (ports.Evaluator, error) {
		return NewEvaluator(cfg.Evaluator, logger)
	})
	runner.Config = cfg.Explore
	runner.Archive = archive
	runner.Logger = logger
	runner.Hooks = observability.CombineHooks(append([]domain.LifecycleHooks{observability.LoggingHooks(logger)}, hooks...)...)
	return runner
}

// ExploreOptions contains all the configuration for the explore command.
type ExploreOptions struct {
	Config    config.File
	RunID     string
	Quiet     bool
	Mermaid   bool
	Histogram bool

	// Out receives the banner, progress and report. Defaults to os.Stdout.
	Out    io.Writer
	Logger *slog.Logger

	// Archive overrides the archive built from Config, mostly for tests.
	Archive ports.Archive

	// Evaluator overrides the evaluator built from Config, mostly for tests.
	Evaluator ports.Evaluator
}

// RunExplore runs one exploration and prints its report. A run that ended
// early still prints its partial report before the error is returned.
func RunExplore(ctx context.Context, opts ExploreOptions) (*domain.Snapshot, error) {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	interactive := isTerminal(out)

	archive := opts.Archive
	if archive == nil {
		var closeArchive func() error
		var err error
		archive, closeArchive, err = OpenArchive(opts.Config.Archive, logger)
		if err != nil {
			return nil, err
		}
		defer func() {
			if err := closeArchive(); err != nil {
				logger.Warn("failed to close archive", "err", err)
			}
		}()
	}

	runner := NewRunner(opts.Config, archive, logger)
	if opts.Evaluator != nil {
		runner.NewEvaluator = func() (ports.Evaluator, error) { return opts.Evaluator, nil }
	}

	var progress domain.LifecycleHooks
	if !opts.Quiet {
		if interactive {
			tui.PrintBanner(out, strings.TrimSpace(arbor.Version))
		}
		progress.OnIteration = func(_ context.Context, e *domain.IterationEvent) {
			fmt.Fprintln(out, tui.FormatProgress(e))
		}
	}

	snap, runErr := runner.Run(ctx, ports.ExploreRequest{
		InitialPrompt: opts.Config.InitialPrompt,
		RunID:         opts.RunID,
	}, progress)
	if snap == nil {
		return nil, runErr
	}

	printReport(out, *snap, interactive, logger)
	if opts.Histogram {
		fmt.Fprintln(out)
		fmt.Fprint(out, graph.ScoreHistogram(snap.Nodes, graph.DefaultBins))
	}
	if opts.Mermaid {
		fmt.Fprintln(out)
		fmt.Fprint(out, graph.GenerateMermaid(*snap, graph.OverlayFor(*snap)))
	}

	if archive != nil && !opts.Quiet {
		printSystemMessage(out, "Run '%s' archived.", snap.RunID)
	}
	if errors.Is(runErr, context.Canceled) {
		if !opts.Quiet {
			printSystemMessage(out, "Interrupted after %d iterations.", snap.Outcome.Iterations)
		}
		return snap, nil
	}
	return snap, runErr
}

func printReport(out io.Writer, snap domain.Snapshot, interactive bool, logger *slog.Logger) {
	report := tui.BuildReport(snap)
	if interactive {
		rendered, err := tui.NewRenderer(tui.DefaultReportWidth)(report)
		if err != nil {
			logger.Warn("failed to render report", "err", err)
		}
		report = rendered
	}
	fmt.Fprint(out, report)
}
