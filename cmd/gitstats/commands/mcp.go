package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/gitstats/pkg/config"
	"github.com/Sumatoshi-tech/gitstats/pkg/mcp"
	"github.com/Sumatoshi-tech/gitstats/pkg/observability"
	"github.com/Sumatoshi-tech/gitstats/pkg/runner"
)

const (
	metricsPath              = "/metrics"
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// newMCPCommand creates the MCP server command.
func newMCPCommand(opts *options) *cobra.Command {
	var (
		debug       bool
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for AI agent integration",
		Long: `Start a Model Context Protocol (MCP) server on stdio transport.

The server exposes one tool:
  - gitstats_report: commit totals per author, month, weekday and hour, plus
    the weekday x hour heat map, for a local repository

With --metrics-addr the Prometheus scrape endpoint is served on /metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cobraCmd *cobra.Command, _ []string) error {
			cfg, err := opts.loadConfig(cobraCmd)
			if err != nil {
				return err
			}

			if cobraCmd.Flags().Changed("metrics-addr") {
				cfg.Telemetry.MetricsAddr = metricsAddr
			}

			obsCfg := opts.observabilityConfig(cobraCmd, cfg, observability.ModeMCP)
			obsCfg.LogJSON = true
			obsCfg.Prometheus = cfg.Telemetry.MetricsAddr != ""

			if debug {
				obsCfg.LogLevel = slog.LevelDebug
				obsCfg.DebugTrace = true
			}

			providers, err := observability.Init(obsCfg)
			if err != nil {
				return fmt.Errorf("init observability: %w", err)
			}
			defer shutdown(providers)

			return serveMCP(cobraCmd.Context(), cfg, providers)
		},
	}

	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging to stderr")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. ':9464')")

	return cmd
}

func serveMCP(ctx context.Context, cfg *config.Config, providers observability.Providers) error {
	red, err := observability.NewREDMetrics(providers.Meter)
	if err != nil {
		return err
	}

	collectMetrics, err := observability.NewCollectMetrics(providers.Meter)
	if err != nil {
		return err
	}

	if cfg.Telemetry.MetricsAddr != "" && providers.MetricsHandler != nil {
		_, stop, serveErr := serveMetrics(cfg.Telemetry.MetricsAddr, providers, red)
		if serveErr != nil {
			return serveErr
		}
		defer stop()
	}

	srv := mcp.NewServer(mcp.ServerDeps{
		Logger:  providers.Logger,
		Metrics: red,
		Tracer:  providers.Tracer,
		Runner: &runner.Runner{
			Logger:    providers.Logger,
			Tracer:    providers.Tracer,
			Metrics:   collectMetrics,
			GitBinary: cfg.Collect.GitBinary,
			Cache:     runner.NewDetailCache(cfg.Collect.CacheEntries),
		},
		Workers: cfg.Collect.Workers,
	})

	return srv.Run(ctx)
}

// serveMetrics starts the scrape endpoint in the background. It returns the
// bound address and a function that stops the server.
func serveMetrics(
	addr string,
	providers observability.Providers,
	red *observability.REDMetrics,
) (string, func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("listen on metrics address: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle(metricsPath, observability.HTTPMiddleware(providers.Tracer, red, providers.MetricsHandler))

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsReadHeaderTimeout,
	}

	go func() {
		serveErr := server.Serve(ln)
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			providers.Logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	bound := ln.Addr().String()
	providers.Logger.Info("serving metrics", "addr", bound, "path", metricsPath)

	return bound, func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		_ = server.Shutdown(ctx)
	}, nil
}
