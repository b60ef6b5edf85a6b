package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/arbor/pkg/domain"
)

// maxLabelRunes bounds the prompt excerpt shown inside a node.
const maxLabelRunes = 40

// GraphOverlay contains run state to highlight on the graph.
type GraphOverlay struct {
	BestPath []string // root → best node
	Frontier []string // nodes still awaiting expansion
	Best     string
}

// OverlayFor builds the default overlay of a snapshot: the lineage of the
// best node and the remaining frontier.
func OverlayFor(snap domain.Snapshot) *GraphOverlay {
	o := &GraphOverlay{Best: snap.Outcome.BestID}
	for _, n := range snap.PathTo(snap.Outcome.BestID) {
		o.BestPath = append(o.BestPath, n.ID)
	}
	for _, e := range snap.Frontier {
		o.Frontier = append(o.Frontier, e.ID)
	}
	return o
}

// GenerateMermaid produces a Mermaid flowchart of the exploration tree.
// It applies semantic styling:
// - Root: ((Circle))
// - Perfect score: {{Hexagon}}
// - Default: [Rectangle]
// Edges carry the score delta; children that were pruned are drawn dotted.
// Nodes are colored by score band, then overlay styles (path/frontier/best) are applied.
func GenerateMermaid(snap domain.Snapshot, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	scores := make(map[string]float64, len(snap.Nodes))
	for _, node := range snap.Nodes {
		scores[node.ID] = node.Score
	}

	bands := map[string][]string{}
	for _, node := range snap.Nodes {
		safeID := sanitizeMermaidID(node.ID)

		opener, closer := "[", "]"
		switch {
		case node.IsRoot():
			opener, closer = "((", "))"
		case snap.Config.IsPerfect(node.Score):
			opener, closer = "{{", "}}"
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%.1f<br/>%s\"%s\n", safeID, opener, node.Score, excerpt(node.Prompt), closer))

		if !node.IsRoot() {
			delta := domain.CalculateImprovement(scores[node.ParentID], node.Score)
			arrow := fmt.Sprintf("-- \"%+.1f\" -->", delta)
			if delta <= snap.Config.MinImprovementThreshold {
				arrow = fmt.Sprintf("-. \"%+.1f\" .->", delta)
			}
			sb.WriteString(fmt.Sprintf("    %s %s %s\n", sanitizeMermaidID(node.ParentID), arrow, safeID))
		}

		band := scoreBand(node.Score)
		bands[band] = append(bands[band], safeID)
	}

	sb.WriteString("\n    %% Score Bands\n")
	sb.WriteString("    classDef low fill:#ffebee,stroke:#c62828,color:#000;\n")
	sb.WriteString("    classDef mid fill:#fff8e1,stroke:#f9a825,color:#000;\n")
	sb.WriteString("    classDef high fill:#e8f5e9,stroke:#2e7d32,color:#000;\n")
	for _, band := range []string{"low", "mid", "high"} {
		if ids := bands[band]; len(ids) > 0 {
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", strings.Join(ids, ","), band))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef path stroke:#01579b,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef frontier stroke-dasharray:4 2,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef best fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		writeClass(&sb, "path", overlay.BestPath)
		writeClass(&sb, "frontier", overlay.Frontier)
		if overlay.Best != "" {
			sb.WriteString(fmt.Sprintf("    class %s best;\n", sanitizeMermaidID(overlay.Best)))
		}
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, class string, ids []string) {
	seen := make(map[string]bool)
	for _, id := range ids {
		safeID := sanitizeMermaidID(id)
		if safeID != "" && !seen[safeID] {
			seen[safeID] = true
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", safeID, class))
		}
	}
}

func scoreBand(score float64) string {
	switch {
	case score < 4:
		return "low"
	case score < 7:
		return "mid"
	default:
		return "high"
	}
}

// excerpt shortens a prompt for a node label and neutralizes Mermaid syntax.
func excerpt(prompt string) string {
	s := strings.Join(strings.Fields(prompt), " ")
	if utf8.RuneCountInString(s) > maxLabelRunes {
		r := []rune(s)
		s = string(r[:maxLabelRunes-1]) + "…"
	}
	return strings.NewReplacer(`"`, "'", "<", "‹", ">", "›").Replace(s)
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "n" + s
	}
	return s
}
