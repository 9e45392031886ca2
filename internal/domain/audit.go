package domain

import (
	"context"
	"time"
)

// SyncRecorder records finished sync invocations.
type SyncRecorder interface {
	RecordSync(ctx context.Context, record *SyncRecord)
}

// SyncRecord is the audit trail entry for one sync invocation. It never
// carries connection secrets.
type SyncRecord struct {
	ID        string
	Subject   string
	RequestID string
	Outcome   SyncOutcome
	Detail    string
	StartedAt time.Time
	Duration  time.Duration
}

// SyncAuditRepository persists sync records.
type SyncAuditRepository interface {
	CreateSyncRecord(ctx context.Context, record *SyncRecord) error
}
