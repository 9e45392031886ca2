package persistence

import (
	"context"
	"log/slog"
	"time"

	"github.com/spounge-ai/postgresql-connector/internal/domain"
	"github.com/spounge-ai/postgresql-connector/pkg/patterns/circuitbreaker"
)

const (
	breakerMaxFailures  = 5
	breakerResetTimeout = 30 * time.Second
)

// BreakerSyncAuditRepository stops calling an audit database that keeps
// failing, so sync requests are not slowed down by it.
type BreakerSyncAuditRepository struct {
	next   domain.SyncAuditRepository
	writes *circuitbreaker.Breaker[struct{}]
}

func NewBreakerSyncAuditRepository(next domain.SyncAuditRepository, logger *slog.Logger, opts ...circuitbreaker.Option) *BreakerSyncAuditRepository {
	opts = append(append([]circuitbreaker.Option{}, opts...), circuitbreaker.WithStateChange(func(from, to circuitbreaker.State) {
		logger.Warn("audit circuit breaker state changed",
			"from", from.String(),
			"to", to.String(),
		)
	}))
	return &BreakerSyncAuditRepository{
		next:   next,
		writes: circuitbreaker.New[struct{}](breakerMaxFailures, breakerResetTimeout, opts...),
	}
}

var _ domain.SyncAuditRepository = (*BreakerSyncAuditRepository)(nil)

func (r *BreakerSyncAuditRepository) CreateSyncRecord(ctx context.Context, record *domain.SyncRecord) error {
	_, err := r.writes.Execute(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, r.next.CreateSyncRecord(ctx, record)
	})
	return err
}
