package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spounge-ai/postgresql-connector/pkg/patterns/lifecycle"
)

const defaultShutdownTimeout = 10 * time.Second

// serveUntilStopped starts resources in order and blocks until a signal
// arrives on stop, the server reports a failure or a resource fails to
// start. Every resource is then stopped in reverse order within timeout.
// It returns the process exit code.
func serveUntilStopped(
	ctx context.Context,
	logger *slog.Logger,
	stop <-chan os.Signal,
	serverErrs <-chan error,
	resources []lifecycle.ManagedResource,
	timeout time.Duration,
) int {
	exitCode := 0
	startFailed := false
	for _, r := range resources {
		if err := r.Start(ctx); err != nil {
			logger.Error("error starting resource", "error", err)
			startFailed = true
			exitCode = 1
			break
		}
	}

	if !startFailed {
		select {
		case s := <-stop:
			logger.Debug("received shutdown signal", "signal", s.String())
		case err, ok := <-serverErrs:
			if ok && err != nil {
				logger.Error("server failed", "error", err)
				exitCode = 1
			}
		case <-ctx.Done():
			exitCode = 1
		}
	}

	logger.Info("stopping connector service")

	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for i := len(resources) - 1; i >= 0; i-- {
		if err := resources[i].Stop(shutdownCtx); err != nil {
			logger.Error("error stopping resource", "error", err)
		}
	}
	return exitCode
}
