package wiring

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
	"github.com/spounge-ai/postgresql-connector/internal/infra/audit"
	"github.com/spounge-ai/postgresql-connector/internal/infra/auth"
	"github.com/spounge-ai/postgresql-connector/internal/infra/config"
	"github.com/spounge-ai/postgresql-connector/internal/infra/jobrunner"
	"github.com/spounge-ai/postgresql-connector/internal/infra/persistence"
	"github.com/spounge-ai/postgresql-connector/internal/infra/ratelimit"
	"github.com/spounge-ai/postgresql-connector/internal/infra/secrets"
	"github.com/spounge-ai/postgresql-connector/internal/service"
	"github.com/spounge-ai/postgresql-connector/pkg/patterns/lifecycle"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

const auditHealthInterval = 30 * time.Second

// Dependencies are the wired components the HTTP layer is built from.
type Dependencies struct {
	Verifier domain.TokenVerifier
	Invoker  service.SyncInvoker
	Recorder domain.SyncRecorder
	// AuditRepo is nil when no audit database is configured.
	AuditRepo domain.SyncAuditRepository
	// Limiter is nil when /sync is not rate limited.
	Limiter ratelimit.Limiter
	// Resources must be started before serving and stopped on shutdown.
	Resources []lifecycle.ManagedResource
}

type Option func(*Container)

// WithTracer sets the tracer used for sync spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Container) { c.tracer = tracer }
}

// WithJobRunner replaces the connector CLI runner.
func WithJobRunner(runner domain.JobRunner) Option {
	return func(c *Container) { c.runner = runner }
}

// WithSecretProvider replaces the SSM parameter store used to fetch the
// public key.
func WithSecretProvider(provider secrets.SecretProvider) Option {
	return func(c *Container) { c.secrets = provider }
}

// Container builds dependencies once and owns the ones that need closing.
type Container struct {
	cfg     *config.Config
	logger  *slog.Logger
	tracer  trace.Tracer
	runner  domain.JobRunner
	secrets secrets.SecretProvider

	once sync.Once
	deps *Dependencies
	err  error
	pool *pgxpool.Pool
}

func NewContainer(cfg *config.Config, logger *slog.Logger, opts ...Option) *Container {
	c := &Container{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetDependencies wires every component on first call. A bad public key
// or an unreachable audit database is an error.
func (c *Container) GetDependencies(ctx context.Context) (*Dependencies, error) {
	c.once.Do(func() {
		c.deps, c.err = c.build(ctx)
	})
	return c.deps, c.err
}

func (c *Container) build(ctx context.Context) (*Dependencies, error) {
	verifier, err := c.provideVerifier(ctx)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{Verifier: verifier}

	if c.cfg.Audit.DatabaseURL != "" {
		if err := c.provideAudit(ctx, deps); err != nil {
			return nil, err
		}
	}
	deps.Recorder = audit.NewSyncAuditLogger(c.logger.With("module", "audit"), deps.AuditRepo)

	runner := c.runner
	if runner == nil {
		runner = jobrunner.NewCLIRunner(c.cfg.Sync.ConnectorBinary, c.cfg.Sync.MaxOutputBytes, c.logger.With("module", "jobrunner"))
	}

	deps.Invoker = service.NewSyncInvoker(
		c.cfg.ConnectionParams(),
		runner,
		deps.Recorder,
		c.tracer,
		c.logger.With("module", "sync"),
		service.WithTimeout(c.cfg.Sync.Timeout),
		service.WithMaxConcurrent(c.cfg.Sync.MaxConcurrent),
	)

	if c.cfg.Sync.RateLimit > 0 {
		deps.Limiter = ratelimit.NewInMemoryRateLimiter(rate.Limit(c.cfg.Sync.RateLimit), c.cfg.Sync.RateBurst)
	}

	return deps, nil
}

func (c *Container) provideVerifier(ctx context.Context) (*auth.Verifier, error) {
	store := c.secrets
	if store == nil && c.cfg.Auth.PublicKeySSMParameter != "" {
		ps, err := secrets.NewParameterStoreFromEnv(ctx, c.cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		store = ps
	}

	pem, err := secrets.LoadPublicKey(ctx, c.cfg.Auth, store)
	if err != nil {
		return nil, err
	}

	verifier, err := auth.NewVerifier(pem)
	if err != nil {
		return nil, fmt.Errorf("failed to create token verifier: %w", err)
	}
	return verifier, nil
}

func (c *Container) provideAudit(ctx context.Context, deps *Dependencies) error {
	if c.cfg.Audit.Migrate {
		if err := persistence.Migrate(c.cfg.Audit.DatabaseURL); err != nil {
			return err
		}
	}

	pool, err := persistence.NewPool(ctx, c.cfg.Audit.DatabaseURL, c.cfg.Audit.Connection)
	if err != nil {
		return err
	}
	c.pool = pool

	logger := c.logger.With("module", "persistence")
	deps.AuditRepo = persistence.NewBreakerSyncAuditRepository(persistence.NewSyncAuditRepository(pool), logger)
	deps.Resources = append(deps.Resources, persistence.NewConnectionMonitor(pool, logger, auditHealthInterval))
	return nil
}

// Close releases the audit pool, if one was opened.
func (c *Container) Close() error {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
	return nil
}
