package main

import (
	"errors"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/spf13/cobra"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List archived runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		archive, closeArchive, err := openArchive(cmd)
		if err != nil {
			return err
		}
		defer closeArchive()

		return cli.ListRuns(cmd.Context(), archive, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
}

// openArchive opens the configured archive for read-only commands.
func openArchive(cmd *cobra.Command) (ports.Archive, func() error, error) {
	cfg, logger, err := loadConfig(cmd, cli.Overrides{})
	if err != nil {
		return nil, nil, err
	}
	archive, closeArchive, err := cli.OpenArchive(cfg.Archive, logger)
	if err != nil {
		return nil, nil, err
	}
	if archive == nil {
		return nil, nil, errors.New("no archive configured (archive.kind is none)")
	}
	return archive, closeArchive, nil
}
