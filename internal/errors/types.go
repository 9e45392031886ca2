package errors

import "errors"

var (
	ErrAuthentication = errors.New("authentication failed")
	ErrSyncFailed     = errors.New("sync failed")
	ErrRateLimit      = errors.New("rate limit exceeded")
)

// Client-facing bodies. These are part of the HTTP contract.
const (
	MessageAuthenticationDenied = "authentication denied"
	MessageSyncFailed           = "failed to sync"
	MessageRateLimited          = "too many requests"
)
