package audit

import (
	"context"
	"log/slog"

	"github.com/spounge-ai/postgresql-connector/internal/domain"
)

// Logger implements domain.SyncRecorder. Every record goes to the
// structured log; records are also persisted when a repository is set.
type Logger struct {
	logger    *slog.Logger
	auditRepo domain.SyncAuditRepository
}

// NewSyncAuditLogger creates a recorder. auditRepo may be nil.
func NewSyncAuditLogger(logger *slog.Logger, auditRepo domain.SyncAuditRepository) domain.SyncRecorder {
	return &Logger{
		logger:    logger,
		auditRepo: auditRepo,
	}
}

func (l *Logger) RecordSync(ctx context.Context, record *domain.SyncRecord) {
	logAttrs := []slog.Attr{
		slog.String("audit_id", record.ID),
		slog.String("subject", record.Subject),
		slog.String("request_id", record.RequestID),
		slog.String("outcome", record.Outcome.String()),
		slog.Time("started_at", record.StartedAt),
		slog.Duration("duration", record.Duration),
	}
	if record.Detail != "" {
		logAttrs = append(logAttrs, slog.String("detail", record.Detail))
	}

	l.logger.LogAttrs(ctx, slog.LevelInfo, "audit_event", logAttrs...)

	if l.auditRepo == nil {
		return
	}
	if err := l.auditRepo.CreateSyncRecord(ctx, record); err != nil {
		l.logger.ErrorContext(ctx, "failed to store audit event",
			slog.String("audit_id", record.ID),
			slog.String("error", err.Error()))
	}
}
