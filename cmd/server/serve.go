package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"github.com/warp/staffing-engine/api"
	"github.com/warp/staffing-engine/internal/config"
	"github.com/warp/staffing-engine/staffing"
	"github.com/warp/staffing-engine/store/sqlite"
)

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serveRun(cmd.Context(), mustConfig(cmd))
		},
	}
}

// openEngine opens the database and builds an engine on it. The caller
// closes the store and stops the engine.
func openEngine(cfg *config.Config, logger *slog.Logger, reg prometheus.Registerer) (*sqlite.Store, *staffing.Engine, error) {
	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	engine, err := staffing.New(store, cfg.Engine(logger, reg))
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return store, engine, nil
}

func serveRun(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg)
	logger.Info("version: "+version, "component", programName)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	store, engine, err := openEngine(cfg, logger, reg)
	if err != nil {
		return err
	}
	defer store.Close()
	engine.Start()
	defer engine.Stop()

	handler := api.NewHandler(engine, store, logger)
	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins: cfg.CORSOrigins,
		Gatherer:    reg,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "component", programName, "port", cfg.Port, "database", cfg.DatabasePath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server", "component", programName)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	logger.Info("server stopped", "component", programName)
	return nil
}
