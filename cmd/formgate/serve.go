package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"mercator-hq/formgate/pkg/cli"
	"mercator-hq/formgate/pkg/config"
	"mercator-hq/formgate/pkg/diagnostics/recorder"
	"mercator-hq/formgate/pkg/diagnostics/retention"
	"mercator-hq/formgate/pkg/logic/engine"
	"mercator-hq/formgate/pkg/logic/manager"
	"mercator-hq/formgate/pkg/server"
	"mercator-hq/formgate/pkg/telemetry/health"
	"mercator-hq/formgate/pkg/telemetry/metrics"
	"mercator-hq/formgate/pkg/telemetry/tracing"
)

const tracerShutdownTimeout = 5 * time.Second

var serveFlags struct {
	listenAddress string
	formsPath     string
	watch         bool
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the formgate HTTP API",
	Long: `Start the HTTP API serving form validation.

The server loads every form under forms.path, optionally reloading them when
files change, and records engine diagnostics to the configured store.

Examples:
  # Start with default config
  formgate serve

  # Start with custom config
  formgate serve --config /etc/formgate/config.yaml

  # Override listen address and watch forms for changes
  formgate serve --listen 0.0.0.0:8080 --watch

  # Load forms and config without starting the server
  formgate serve --dry-run`,
	RunE: serve,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.formsPath, "forms", "", "override forms path")
	serveCmd.Flags().BoolVar(&serveFlags.watch, "watch", false, "reload forms when files change")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config and forms without starting the server")
}

func serve(cmd *cobra.Command, args []string) error {
	cfg := currentConfig()
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.formsPath != "" {
		cfg.Forms.Path = serveFlags.formsPath
	}
	if serveFlags.watch {
		cfg.Forms.Watch = true
	}
	logger := slog.Default()

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)

	tracer, err := tracing.New(ctx, &cfg.Telemetry.Tracing, Version)
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to initialize tracing: %w", err))
	}
	defer shutdownTracer(tracer, logger)

	checker := health.New(cfg.Telemetry.Health.CheckTimeout)

	var reporter engine.Reporter
	if cfg.Diagnostics.Enabled {
		store, err := openStorage(cfg.Diagnostics, cfg.Diagnostics.Backend)
		if err != nil {
			return cli.NewCommandError("serve", err)
		}
		defer store.Close()
		checker.RegisterCheck("diagnostics", store.Ping)

		rec := recorder.NewRecorder(store, &recorder.Config{
			Enabled:      true,
			BufferSize:   cfg.Diagnostics.BufferSize,
			WriteTimeout: cfg.Diagnostics.WriteTimeout,
		})
		defer rec.Close()
		reporter = rec

		if cfg.Diagnostics.Retention.Schedule != "" && !serveFlags.dryRun {
			pruner := retention.NewPruner(store, retentionConfig(cfg.Diagnostics.Retention))
			if err := pruner.Start(ctx); err != nil {
				logger.Warn("failed to start diagnostics retention", "error", err)
			} else {
				defer pruner.Stop()
				if next := pruner.NextPruning(); next != nil {
					logger.Debug("diagnostics retention scheduled", "next_pruning", next)
				}
			}
		}
	}

	forms, err := manager.NewManager(cfg, reporter, logger,
		manager.WithMetrics(collector),
		manager.WithTracer(tracer),
	)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer forms.Close()

	if err := forms.Load(); err != nil {
		return cli.NewCommandError("serve", err)
	}
	checker.RegisterCheck("forms", forms.Ready)

	stats := forms.Stats()
	printf(cmd, "Formgate v%s\n", Version)
	printf(cmd, "✓ Forms loaded (%d forms, %d fields, version %s)\n", stats.FormCount, stats.FieldCount, stats.Version)
	if cfg.Diagnostics.Enabled {
		printf(cmd, "✓ Diagnostics store initialized (%s)\n", cfg.Diagnostics.Backend)
	}

	if serveFlags.dryRun {
		printf(cmd, "✓ Configuration valid\n")
		return nil
	}

	srv := server.NewServer(cfg, server.Options{
		Forms:   forms,
		Health:  checker,
		Metrics: collector,
		Tracer:  tracer,
		Version: versionInfo(),
		Logger:  logger,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Start(gctx)
	})
	if cfg.Forms.Watch {
		g.Go(func() error {
			err := forms.Watch(gctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("form watcher: %w", err)
			}
			return nil
		})
	}

	printf(cmd, "✓ Server listening on %s\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Health.Enabled {
		printf(cmd, "✓ Health endpoints: %s, %s\n", cfg.Telemetry.Health.LivenessPath, cfg.Telemetry.Health.ReadinessPath)
	}
	if collector.Enabled() {
		printf(cmd, "✓ Metrics endpoint: %s\n", cfg.Telemetry.Metrics.Path)
	}
	printf(cmd, "\nPress Ctrl+C to stop\n")

	if err := g.Wait(); err != nil {
		return cli.NewCommandError("serve", err)
	}

	printf(cmd, "✓ Server stopped\n")
	return nil
}

func retentionConfig(cfg config.RetentionConfig) *retention.Config {
	return &retention.Config{
		RetentionDays: cfg.Days,
		MaxRecords:    cfg.MaxRecords,
		PruneSchedule: cfg.Schedule,
		ArchivePath:   cfg.ArchivePath,
	}
}

func shutdownTracer(tracer *tracing.Tracer, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
	defer cancel()
	if err := tracer.Shutdown(ctx); err != nil {
		logger.Warn("failed to shut down tracer", "error", err)
	}
}
