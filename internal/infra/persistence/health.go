package persistence

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spounge-ai/postgresql-connector/pkg/patterns/lifecycle"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// ConnectionMonitor pings the audit database on an interval and logs when
// it becomes unhealthy or recovers.
type ConnectionMonitor struct {
	pool     pinger
	logger   *slog.Logger
	interval time.Duration

	mu        sync.RWMutex
	isHealthy bool
	lastErr   error

	cancel context.CancelFunc
	done   chan struct{}
}

var _ lifecycle.ManagedResource = (*ConnectionMonitor)(nil)

func NewConnectionMonitor(pool pinger, logger *slog.Logger, interval time.Duration) *ConnectionMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &ConnectionMonitor{
		pool:      pool,
		logger:    logger,
		interval:  interval,
		isHealthy: true,
	}
}

func (cm *ConnectionMonitor) Start(ctx context.Context) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	cm.cancel = cancel
	cm.done = make(chan struct{})
	go cm.run(runCtx, cm.done)
	return nil
}

func (cm *ConnectionMonitor) Stop(ctx context.Context) error {
	cm.mu.Lock()
	cancel, done := cm.cancel, cm.done
	cm.cancel, cm.done = nil, nil
	cm.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (cm *ConnectionMonitor) Health(_ context.Context) lifecycle.HealthStatus {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	if cm.isHealthy {
		return lifecycle.HealthStatus{Ready: true}
	}
	status := lifecycle.HealthStatus{Ready: false, Message: "audit database unreachable"}
	if cm.lastErr != nil {
		status.Message += ": " + cm.lastErr.Error()
	}
	return status
}

func (cm *ConnectionMonitor) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cm.performHealthCheck(ctx)
		}
	}
}

func (cm *ConnectionMonitor) performHealthCheck(ctx context.Context) {
	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err := cm.pool.Ping(checkCtx)

	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.lastErr = err
	if err != nil {
		if cm.isHealthy {
			cm.isHealthy = false
			cm.logger.ErrorContext(ctx, "audit database connection unhealthy", "error", err)
		}
		return
	}
	if !cm.isHealthy {
		cm.isHealthy = true
		cm.logger.InfoContext(ctx, "audit database connection recovered")
	}
}
