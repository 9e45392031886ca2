package lifecycle

import "context"

// HealthStatus reports whether a component can do its work.
type HealthStatus struct {
	Ready   bool   `json:"ready"`
	Message string `json:"message,omitempty"`
}

// ManagedResource is a component started before serving and stopped on
// shutdown, in reverse order. Start and Stop must tolerate repeated calls,
// and Stop must tolerate a resource that was never started.
type ManagedResource interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) HealthStatus
}
