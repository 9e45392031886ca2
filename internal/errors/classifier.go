package errors

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/spounge-ai/postgresql-connector/internal/domain"
)

type ErrorClass int

const (
	ClassInternal ErrorClass = iota
	ClassValidation
	ClassAuthentication
	ClassRateLimit
)

func (c ErrorClass) String() string {
	switch c {
	case ClassValidation:
		return "validation"
	case ClassAuthentication:
		return "authentication"
	case ClassRateLimit:
		return "rate_limit"
	default:
		return "internal"
	}
}

type ClassifiedError struct {
	Class         ErrorClass
	InternalError error
	ClientMessage string
	OperationName string
}

// StatusCode maps the error class onto the HTTP status returned to clients.
func (ce ClassifiedError) StatusCode() int {
	switch ce.Class {
	case ClassValidation:
		return http.StatusBadRequest
	case ClassAuthentication:
		return http.StatusUnauthorized
	case ClassRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

type ErrorClassifier struct {
	logger *slog.Logger
}

func NewErrorClassifier(logger *slog.Logger) *ErrorClassifier {
	return &ErrorClassifier{logger: logger}
}

func (ec *ErrorClassifier) Classify(err error, operation string) ClassifiedError {
	classified := ClassifiedError{
		InternalError: err,
		OperationName: operation,
	}

	var warning *domain.WarningError
	switch {
	case errors.As(err, &warning):
		classified.Class = ClassValidation
		classified.ClientMessage = warning.Message
	case errors.Is(err, ErrAuthentication):
		classified.Class = ClassAuthentication
		classified.ClientMessage = MessageAuthenticationDenied
	case errors.Is(err, ErrRateLimit):
		classified.Class = ClassRateLimit
		classified.ClientMessage = MessageRateLimited
	default:
		classified.Class = ClassInternal
		classified.ClientMessage = MessageSyncFailed
	}

	return classified
}

// LogAndSanitize logs the internal error and returns the status code and
// body that may be sent to the client.
func (ec *ErrorClassifier) LogAndSanitize(ctx context.Context, classified ClassifiedError) (int, string) {
	status := classified.StatusCode()

	internal := "<nil>"
	if classified.InternalError != nil {
		internal = classified.InternalError.Error()
	}

	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	ec.logger.Log(ctx, level, "operation failed",
		"operation", classified.OperationName,
		"error_class", classified.Class.String(),
		"status_code", status,
		"internal_error", internal,
		"request_id", domain.RequestIDFromContext(ctx),
	)

	return status, classified.ClientMessage
}
