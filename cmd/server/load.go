package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/staffing-engine/factory"
	"github.com/warp/staffing-engine/internal/config"
)

func loadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "load <seed.yaml>",
		Short: "Apply a seed document to the configured database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return loadRun(cmd.Context(), mustConfig(cmd), args[0])
		},
	}
}

func loadRun(ctx context.Context, cfg *config.Config, path string) error {
	logger := newLogger(cfg)

	seed, err := factory.LoadFile(path)
	if err != nil {
		return err
	}

	store, engine, err := openEngine(cfg, logger, nil)
	if err != nil {
		return err
	}
	defer store.Close()
	defer engine.Stop()

	summary, err := seed.Apply(ctx, engine)
	if err != nil {
		logger.Error("seed failed", "component", programName, "path", path, "error", err)
		return err
	}
	logger.Info("seed applied", "component", programName, "path", path, "database", cfg.DatabasePath)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}
