package main

import (
	"context"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

// exploreCmd represents the explore command
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Explore rewrites of a prompt",
	Long: `Runs a greedy best-first exploration starting from the configured prompt,
prints progress and a final report, and archives the resulting tree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var ov cli.Overrides
		flags := cmd.Flags()
		if flags.Changed("prompt") {
			v, _ := flags.GetString("prompt")
			ov.Prompt = &v
		}
		if flags.Changed("threshold") {
			v, _ := flags.GetFloat64("threshold")
			ov.Threshold = &v
		}
		if flags.Changed("iterations") {
			v, _ := flags.GetInt("iterations")
			ov.MaxIterations = &v
		}
		if flags.Changed("children") {
			v, _ := flags.GetInt("children")
			ov.MaxChildren = &v
		}
		if flags.Changed("seed") {
			v, _ := flags.GetUint64("seed")
			ov.Seed = &v
		}
		if flags.Changed("evaluator") {
			v, _ := flags.GetString("evaluator")
			ov.Evaluator = &v
		}

		cfg, logger, err := loadConfig(cmd, ov)
		if err != nil {
			return err
		}

		runID, _ := flags.GetString("run-id")
		quiet, _ := flags.GetBool("quiet")
		mermaid, _ := flags.GetBool("mermaid")
		histogram, _ := flags.GetBool("histogram")

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		_, err = cli.RunExplore(ctx, cli.ExploreOptions{
			Config:    cfg,
			RunID:     runID,
			Quiet:     quiet,
			Mermaid:   mermaid,
			Histogram: histogram,
			Out:       cmd.OutOrStdout(),
			Logger:    logger,
		})
		return err
	},
}

func init() {
	rootCmd.AddCommand(exploreCmd)

	exploreCmd.Flags().StringP("prompt", "p", "", "Initial prompt (overrides the file)")
	exploreCmd.Flags().Float64P("threshold", "t", 0, "Minimum improvement for a rewrite to join the frontier")
	exploreCmd.Flags().IntP("iterations", "n", 0, "Maximum number of expansions")
	exploreCmd.Flags().IntP("children", "k", 0, "Rewrites requested per expansion")
	exploreCmd.Flags().Uint64("seed", 0, "Seed for the heuristic evaluator")
	exploreCmd.Flags().String("evaluator", "", "Evaluator kind: heuristic or openai")
	exploreCmd.Flags().String("run-id", "", "ID to archive the run under (default: random)")
	exploreCmd.Flags().BoolP("quiet", "q", false, "Print only the final report")
	exploreCmd.Flags().Bool("mermaid", false, "Print the tree as a Mermaid graph")
	exploreCmd.Flags().Bool("histogram", false, "Print the score histogram")

	// Exploring is the default action.
	rootCmd.RunE = exploreCmd.RunE
	rootCmd.Flags().AddFlagSet(exploreCmd.Flags())
}
