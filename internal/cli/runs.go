package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aretw0/arbor/internal/presentation/graph"
	"github.com/aretw0/arbor/pkg/ports"
)

// ListRuns prints one line per archived run.
func ListRuns(ctx context.Context, archive ports.Archive, out io.Writer) error {
	ids, err := archive.List(ctx)
	if err != nil {
		return fmt.Errorf("error listing runs: %w", err)
	}
	if len(ids) == 0 {
		printSystemMessage(out, "No archived runs.")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tCREATED\tREASON\tNODES\tBEST")
	for _, id := range ids {
		snap, err := archive.Load(ctx, id)
		if err != nil {
			// Expired between List and Load.
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.2f\n",
			snap.RunID,
			snap.CreatedAt.Format("2006-01-02 15:04:05"),
			snap.Outcome.Reason,
			len(snap.Nodes),
			snap.Outcome.BestScore,
		)
	}
	return tw.Flush()
}

// PrintGraph prints the Mermaid graph of an archived run.
func PrintGraph(ctx context.Context, archive ports.Archive, runID string, overlay bool, out io.Writer) error {
	snap, err := archive.Load(ctx, runID)
	if err != nil {
		return fmt.Errorf("error loading run %s: %w", runID, err)
	}
	var ov *graph.GraphOverlay
	if overlay {
		ov = graph.OverlayFor(*snap)
	}
	_, err = io.WriteString(out, graph.GenerateMermaid(*snap, ov))
	return err
}
