package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/arbor/internal/cli"
	"github.com/aretw0/arbor/internal/config"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "arbor",
	Short: "Arbor searches for better prompts by growing a tree of rewrites",
	Long: `Arbor scores a prompt, asks for rewrites, and keeps expanding the most
promising candidate until the iteration budget runs out, the frontier
empties, or a perfect score is reached.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "", "Run configuration file (.yaml or .json)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (overrides the file)")
	rootCmd.PersistentFlags().String("archive", "", "Archive kind: none, memory, file, redis or badger (overrides the file)")
}

// loadConfig reads --config and applies the persistent overrides plus extra.
func loadConfig(cmd *cobra.Command, extra cli.Overrides) (config.File, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	if cmd.Flags().Changed("log-level") {
		v, _ := cmd.Flags().GetString("log-level")
		extra.LogLevel = &v
	}
	if cmd.Flags().Changed("archive") {
		v, _ := cmd.Flags().GetString("archive")
		extra.Archive = &v
	}

	cfg, err := cli.LoadConfig(path, extra)
	if err != nil {
		return config.File{}, nil, err
	}
	logger, err := cli.NewLogger(cfg.LogLevel)
	if err != nil {
		return config.File{}, nil, err
	}
	return cfg, logger, nil
}
