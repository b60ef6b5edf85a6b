package main

import (
	"github.com/aretw0/arbor/internal/cli"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <run-id>",
	Short: "Export the tree of an archived run",
	Long:  `Loads an archived run and outputs a Mermaid diagram (graph TD) of its tree, highlighting the best path and the frontier.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, closeArchive, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer closeArchive()

		plain, _ := cmd.Flags().GetBool("plain")
		return cli.PrintGraph(cmd.Context(), archive, args[0], !plain, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("plain", false, "Do not highlight the best path and frontier")
}
