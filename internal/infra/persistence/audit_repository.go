package persistence

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
)

// execer is the subset of pgxpool.Pool the repository uses.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// AuditRepository stores sync records in the sync_invocations table.
type AuditRepository struct {
	db execer
}

func NewSyncAuditRepository(db execer) *AuditRepository {
	return &AuditRepository{db: db}
}

var _ domain.SyncAuditRepository = (*AuditRepository)(nil)

func (r *AuditRepository) CreateSyncRecord(ctx context.Context, record *domain.SyncRecord) error {
	query := `INSERT INTO sync_invocations (id, subject, request_id, outcome, detail, started_at, duration_ms) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(ctx, query,
		record.ID,
		record.Subject,
		record.RequestID,
		record.Outcome.String(),
		record.Detail,
		record.StartedAt,
		record.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync record %s: %w", record.ID, err)
	}
	return nil
}
