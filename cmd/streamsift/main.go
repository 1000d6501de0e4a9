// Package main implements the entry point for the streamsift daemon.
// Streamsift consumes raw JSON events from NATS, evaluates them against
// compiled directive condition chains, and republishes survivors.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sort"
	"syscall"
	"time"

	"github.com/c360/streamsift/component"
	"github.com/c360/streamsift/config"
	"github.com/c360/streamsift/health"
	"github.com/c360/streamsift/metric"
	"github.com/c360/streamsift/natsclient"
	"github.com/c360/streamsift/pkg/retry"
	"github.com/c360/streamsift/processor/filter"
)

// Build information constants
const (
	Version = "0.1.0"
	appName = "streamsift"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := setupLogger(resolveLogging(cliCfg, cfg))
	slog.SetDefault(logger)

	slog.Info("Starting streamsift",
		"version", Version,
		"config_path", cliCfg.ConfigPath,
		"pipelines", len(cfg.Pipelines))

	if cliCfg.Validate {
		slog.Info("Configuration is valid")
		return nil
	}

	signalCtx, signalCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	componentRegistry := component.NewRegistry()

	metricsRegistry := metric.NewRegistry()
	metricsServer := startMetricsServer(cfg, metricsRegistry, componentRegistry)

	natsClient, err := connectNATS(signalCtx, cfg, metricsRegistry, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), cfg.NATS.DrainTimeout.Duration())
		defer cancel()
		if cerr := natsClient.Close(closeCtx); cerr != nil {
			slog.Error("NATS close failed", "error", cerr)
		}
	}()

	if err := filter.Register(componentRegistry); err != nil {
		return fmt.Errorf("register filter factory: %w", err)
	}

	deps := component.Dependencies{
		NATSClient:      natsClient,
		MetricsRegistry: metricsRegistry,
		Logger:          logger,
	}

	processors, err := startPipelines(signalCtx, cfg, componentRegistry, deps)
	if err != nil {
		stopPipelines(processors, cliCfg.ShutdownTimeout)
		return err
	}

	slog.Info("Streamsift started", "pipelines", len(processors))

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	stopPipelines(processors, cliCfg.ShutdownTimeout)

	if metricsServer != nil {
		if err := metricsServer.Stop(); err != nil {
			slog.Error("Metrics server stop failed", "error", err)
		}
	}

	slog.Info("Streamsift shutdown complete")
	return nil
}

// resolveLogging lets CLI flags override the config file's logging section.
func resolveLogging(cliCfg *CLIConfig, cfg *config.Config) (level, format string) {
	level, format = cfg.Logging.Level, cfg.Logging.Format
	if cliCfg.LogLevel != "" {
		level = cliCfg.LogLevel
	}
	if cliCfg.LogFormat != "" {
		format = cliCfg.LogFormat
	}
	return level, format
}

// startMetricsServer launches the Prometheus endpoint when enabled. The
// server failing to bind is logged but does not abort the daemon.
func startMetricsServer(
	cfg *config.Config,
	registry *metric.Registry,
	components *component.Registry,
) *metric.Server {
	if !cfg.Metrics.Enabled {
		return nil
	}

	server := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, registry)
	server.SetHealthHandler(health.NewMonitor(appName, components))
	go func() {
		slog.Info("Metrics server listening", "address", server.Address(), "path", cfg.Metrics.Path)
		if err := server.Start(); err != nil {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	return server
}

// connectNATS builds the client from config and connects with persistent
// retry, so the daemon survives a broker that comes up after it.
func connectNATS(
	ctx context.Context,
	cfg *config.Config,
	registry *metric.Registry,
	logger *slog.Logger,
) (*natsclient.Client, error) {
	opts := []natsclient.Option{
		natsclient.WithName(cfg.NATS.Name),
		natsclient.WithMaxReconnects(cfg.NATS.MaxReconnects),
		natsclient.WithLogger(logger.With("component", "natsclient")),
		natsclient.WithMetrics(registry.Core),
	}
	if d := cfg.NATS.ReconnectWait.Duration(); d > 0 {
		opts = append(opts, natsclient.WithReconnectWait(d))
	}
	if d := cfg.NATS.Timeout.Duration(); d > 0 {
		opts = append(opts, natsclient.WithTimeout(d))
	}
	if d := cfg.NATS.DrainTimeout.Duration(); d > 0 {
		opts = append(opts, natsclient.WithDrainTimeout(d))
	}
	if cfg.NATS.Username != "" {
		opts = append(opts, natsclient.WithCredentials(cfg.NATS.Username, cfg.NATS.Password))
	}
	if cfg.NATS.Token != "" {
		opts = append(opts, natsclient.WithToken(cfg.NATS.Token))
	}
	if cfg.NATS.TLSCertFile != "" || cfg.NATS.TLSCAFile != "" {
		opts = append(opts, natsclient.WithTLS(cfg.NATS.TLSCertFile, cfg.NATS.TLSKeyFile, cfg.NATS.TLSCAFile))
	}

	client, err := natsclient.NewClient(cfg.NATS.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("create NATS client: %w", err)
	}

	slog.Info("Connecting to NATS", "url", cfg.NATS.URL)
	if err := retry.Do(ctx, retry.Startup(), func() error {
		return client.Connect(ctx)
	}); err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return client, nil
}

// startPipelines creates and starts one filter processor per configured
// pipeline, in name order so startup logs are deterministic.
func startPipelines(
	ctx context.Context,
	cfg *config.Config,
	registry *component.Registry,
	deps component.Dependencies,
) ([]component.LifecycleComponent, error) {
	names := make([]string, 0, len(cfg.Pipelines))
	for name := range cfg.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)

	started := make([]component.LifecycleComponent, 0, len(names))
	for _, name := range names {
		p := cfg.Pipelines[name]

		rawConfig, err := json.Marshal(filter.Config{
			Pipeline:       name,
			InputSubject:   p.InputSubject,
			OutputSubjects: p.OutputSubjects,
			Conditions:     p.Conditions,
			BufferSize:     p.BufferSize,
			Overflow:       p.Overflow,
			TraceEnabled:   p.TraceEnabled,
		})
		if err != nil {
			return started, fmt.Errorf("marshal pipeline %s config: %w", name, err)
		}

		comp, err := registry.CreateComponent(name, "filter", rawConfig, deps)
		if err != nil {
			return started, fmt.Errorf("create pipeline %s: %w", name, err)
		}

		lc, ok := component.AsLifecycleComponent(comp)
		if !ok {
			return started, fmt.Errorf("pipeline %s: component is not lifecycle-managed", name)
		}

		if err := lc.Initialize(); err != nil {
			return started, fmt.Errorf("initialize pipeline %s: %w", name, err)
		}
		if err := lc.Start(ctx); err != nil {
			return started, fmt.Errorf("start pipeline %s: %w", name, err)
		}

		slog.Info("Pipeline started",
			"pipeline", name,
			"input", p.InputSubject,
			"outputs", p.OutputSubjects)
		started = append(started, lc)
	}

	return started, nil
}

// stopPipelines stops processors in reverse start order.
func stopPipelines(processors []component.LifecycleComponent, timeout time.Duration) {
	for i := len(processors) - 1; i >= 0; i-- {
		if err := processors[i].Stop(timeout); err != nil {
			slog.Error("Pipeline stop failed", "error", err)
		}
	}
}
