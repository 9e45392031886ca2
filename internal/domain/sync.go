package domain

import (
	"context"
	"fmt"
)

// ConnectionParams are the named values handed to the external connector.
// They are passed through as-is; empty values are not rejected here.
type ConnectionParams struct {
	ProjectID  string
	LocationID string
	Host       string
	User       string
	Password   string
	Database   string
}

// Args returns the connector argument list in its fixed order.
func (p ConnectionParams) Args() []string {
	return []string{
		"--datacatalog-project-id", p.ProjectID,
		"--datacatalog-location-id", p.LocationID,
		"--postgresql-host", p.Host,
		"--postgresql-user", p.User,
		"--postgresql-pass", p.Password,
		"--postgresql-database", p.Database,
	}
}

// JobRunner runs the external sync job to completion. A nil error means the
// job succeeded, a *WarningError means it rejected its input, and any other
// error is an unexpected failure.
type JobRunner interface {
	Run(ctx context.Context, args []string) error
}

// WarningError is an expected, user-correctable failure reported by the job.
// Its message is safe to return to the caller.
type WarningError struct {
	Message string
}

func (e *WarningError) Error() string {
	return fmt.Sprintf("sync warning: %s", e.Message)
}

// SyncOutcome classifies a finished sync invocation.
type SyncOutcome int

const (
	SyncSucceeded SyncOutcome = iota
	SyncWarning
	SyncFailed
)

func (o SyncOutcome) String() string {
	switch o {
	case SyncSucceeded:
		return "success"
	case SyncWarning:
		return "warning"
	case SyncFailed:
		return "failure"
	default:
		return "unknown"
	}
}

// SyncResult is the outcome of one external invocation.
type SyncResult struct {
	InvocationID string
	Outcome      SyncOutcome
	// Message is the warning text for SyncWarning and the internal failure
	// detail for SyncFailed.
	Message string
	Err     error
}
