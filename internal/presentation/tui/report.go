package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/muesli/termenv"
)

// BuildReport renders a finished run as markdown.
func BuildReport(snap domain.Snapshot) string {
	var sb strings.Builder
	out := snap.Outcome

	sb.WriteString("# Exploration report\n\n")
	if snap.RunID != "" {
		sb.WriteString(fmt.Sprintf("Run `%s`\n\n", snap.RunID))
	}

	sb.WriteString("| | |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| Stop reason | %s |\n", out.Reason))
	sb.WriteString(fmt.Sprintf("| Iterations | %d / %d |\n", out.Iterations, snap.Config.MaxIterations))
	sb.WriteString(fmt.Sprintf("| Nodes | %d |\n", len(snap.Nodes)))
	sb.WriteString(fmt.Sprintf("| Frontier | %d |\n", len(snap.Frontier)))
	sb.WriteString(fmt.Sprintf("| Best score | %.2f |\n\n", out.BestScore))

	best, ok := snap.Best()
	if !ok {
		return sb.String()
	}

	sb.WriteString("## Best prompt\n\n")
	sb.WriteString(quote(best.Prompt))
	sb.WriteString("\n\n")

	if path := snap.PathTo(best.ID); len(path) > 1 {
		sb.WriteString("## Path from the initial prompt\n\n")
		for i, n := range path {
			sb.WriteString(fmt.Sprintf("%d. **%.1f** %s\n", i+1, n.Score, oneLine(n.Prompt)))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Score distribution\n\n```\n")
	sb.WriteString(graph.ScoreHistogram(snap.Nodes, graph.DefaultBins))
	sb.WriteString("```\n")
	return sb.String()
}

// FormatProgress renders one iteration as a single colored line.
func FormatProgress(e *domain.IterationEvent) string {
	p := termenv.EnvColorProfile()
	best := termenv.String(fmt.Sprintf("%.1f", e.BestScore)).Foreground(p.Color(scoreColor(e.BestScore))).Bold()
	return fmt.Sprintf("iteration %d/%d  nodes %d  frontier %d  best %s",
		e.Iteration, e.MaxIterations, e.StoreSize, e.FrontierSize, best)
}

func scoreColor(score float64) string {
	switch {
	case score < 4:
		return "#f87171"
	case score < 7:
		return "#facc15"
	default:
		return "#4ade80"
	}
}

func quote(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	for i, l := range lines {
		lines[i] = "> " + l
	}
	return strings.Join(lines, "\n")
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
