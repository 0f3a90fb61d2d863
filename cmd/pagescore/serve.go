package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/nao1215/pagescore/internal/config"
	"github.com/nao1215/pagescore/internal/metrics"
	"github.com/nao1215/pagescore/internal/server"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <pages-file>",
		Short: "Serve the quality report over HTTP",
		Long: `Serve compiles a report at startup and serves it to dashboards.

Reads never trigger analysis; POST /api/rescan compiles a fresh report
from the pages file and swaps it in when it succeeds.

Endpoints:
  GET  /healthz          liveness and whether a report is loaded
  GET  /api/report       full report (?filter=critical|needs-work|optimized)
  GET  /api/pages/:id    one page entry
  GET  /api/stats        fleet statistics
  POST /api/rescan       recompile the report
  GET  /metrics          Prometheus metrics

Examples:
  # Serve on the default loopback address
  pagescore serve pages.yaml

  # Listen on all interfaces
  pagescore serve --listen :8080 pages.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: runServeCmd,
	}

	addAnalysisFlags(cmd)
	cmd.Flags().StringP("listen", "l", config.DefaultListenAddr,
		"Address the HTTP API listens on")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildAnalysisConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if cfg.ListenAddr, err = cmd.Flags().GetString("listen"); err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runServe(ctx, cfg, logger, nil)
}

// runServe compiles the first report and serves it until ctx is cancelled.
// ready, when non-nil, receives the server once the first report exists.
func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger, ready chan<- *server.Server) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	e, err := newEngine(ctx, cfg, logger, m)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logger.Error("failed to close engine", "error", err)
		}
	}()

	initial, err := e.run(ctx)
	if err != nil {
		return fmt.Errorf("initial scan failed: %w", err)
	}
	logger.Info("initial report compiled", "run_id", initial.RunID, "pages", initial.Stats.TotalPages)

	srv := server.New(initial,
		server.WithRescanner(e.run),
		server.WithLogger(logger),
		server.WithMetrics(m, registry),
	)
	if ready != nil {
		ready <- srv
	}

	return srv.Run(ctx, cfg.ListenAddr)
}
