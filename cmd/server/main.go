/*
main.go - Application entry point

PURPOSE:
  Command line for the staffing engine: the HTTP server, a seed loader and
  the version banner. Configuration is read once by the root command and
  handed to subcommands through the context.

COMMANDS:
  serve              Run the HTTP API (default when no command is given)
  load <seed.yaml>   Apply a seed document to the configured database
  version            Print the build version

GLOBAL FLAGS:
  --config   YAML config file (see internal/config)
  --debug    Debug logging with source locations

ENVIRONMENT:
  STAFFING_* variables override the config file, e.g.
  STAFFING_PORT=3000 STAFFING_DATABASE_PATH=:memory: ./server

SEE ALSO:
  - serve.go: HTTP server and graceful shutdown
  - internal/config/config.go: Settings and defaults
*/
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/warp/staffing-engine/internal/config"
)

const programName = "staffing-engine"

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func newLogger(cfg *config.Config) *slog.Logger {
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			AddSource: globalFlags.debug,
			Level:     cfg.SlogLevel(globalFlags.debug),
		}),
	)
	slog.SetDefault(logger)
	return logger
}

func mustConfig(cmd *cobra.Command) *config.Config {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		slog.Error("no config found in context")
		os.Exit(1)
	}
	return cfg
}

func main() {
	rootCmd := &cobra.Command{
		Use:          programName,
		Short:        "Staffing allocation engine",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), mustConfig(cmd))
		},
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(serveCommand())
	rootCmd.AddCommand(loadCommand())
	rootCmd.AddCommand(versionCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// Skip config loading
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("%s %s\n", programName, version)
		},
	}
}
