package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	apphttp "github.com/spounge-ai/postgresql-connector/internal/app/http"
	app_errors "github.com/spounge-ai/postgresql-connector/internal/errors"
	infra_config "github.com/spounge-ai/postgresql-connector/internal/infra/config"
	"github.com/spounge-ai/postgresql-connector/internal/infra/observability"
	"github.com/spounge-ai/postgresql-connector/internal/wiring"
	"github.com/spounge-ai/postgresql-connector/pkg/patterns/lifecycle"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	cfg, err := infra_config.Load(os.Getenv("CONNECTOR_CONFIG_PATH"))
	if err != nil {
		bootLogger.Error("failed to load config", "error", err)
		return 1
	}

	obs, err := observability.New(cfg.Logging, cfg.Service, os.Stderr)
	if err != nil {
		bootLogger.Error("failed to set up observability", "error", err)
		return 1
	}
	logger := obs.Logger
	defer func() {
		flushCtx, flushCancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer flushCancel()
		if err := obs.Shutdown(flushCtx); err != nil {
			logger.Error("failed to flush traces", "error", err)
		}
	}()

	tlsConfig, err := wiring.ConfigureTLS(cfg.Server.TLS)
	if err != nil {
		logger.Error("failed to configure TLS", "error", err)
		return 1
	}

	container := wiring.NewContainer(cfg, logger, wiring.WithTracer(obs.Tracer("connector")))
	defer func() {
		if err := container.Close(); err != nil {
			logger.Error("failed to close container", "error", err)
		}
	}()

	deps, err := container.GetDependencies(ctx)
	if err != nil {
		logger.Error("failed to get dependencies", "error", err)
		return 1
	}

	handler := apphttp.NewHandler(apphttp.HandlerDeps{
		Version:         cfg.Service.Version,
		Verifier:        deps.Verifier,
		Invoker:         deps.Invoker,
		ErrorClassifier: app_errors.NewErrorClassifier(logger),
		Limiter:         deps.Limiter,
		Logger:          logger,
	})
	router := apphttp.NewRouter(handler, apphttp.Tracing{
		TracerProvider: obs.TracerProvider,
		Propagator:     obs.Propagator,
	})

	srv, port, err := apphttp.New(cfg.Server, router, tlsConfig, logger)
	if err != nil {
		logger.Error("failed to create server", "error", err)
		return 1
	}
	logger.Info("connector service created", "version", cfg.Service.Version, "port", port)

	resources := append([]lifecycle.ManagedResource{}, deps.Resources...)
	resources = append(resources, srv)

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signalChan)

	return serveUntilStopped(ctx, logger, signalChan, srv.Errors(), resources, cfg.Server.ShutdownTimeout)
}
