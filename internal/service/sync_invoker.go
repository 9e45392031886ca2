package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
	"github.com/spounge-ai/postgresql-connector/pkg/execution"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/semaphore"
)

// SyncInvoker runs one sync job per call, to completion, and classifies
// the result.
type SyncInvoker interface {
	Invoke(ctx context.Context, claims domain.Claims) domain.SyncResult
}

type Option func(*syncInvoker)

// WithTimeout bounds each invocation. Zero leaves it unbounded.
func WithTimeout(d time.Duration) Option {
	return func(s *syncInvoker) { s.timeout = d }
}

// WithMaxConcurrent caps the number of jobs running at once. Callers over
// the cap wait for a slot. Zero leaves it unbounded.
func WithMaxConcurrent(n int64) Option {
	return func(s *syncInvoker) {
		if n > 0 {
			s.sem = semaphore.NewWeighted(n)
		}
	}
}

type syncInvoker struct {
	params   domain.ConnectionParams
	runner   domain.JobRunner
	recorder domain.SyncRecorder
	tracer   trace.Tracer
	logger   *slog.Logger
	timeout  time.Duration
	sem      *semaphore.Weighted
	now      func() time.Time
}

// NewSyncInvoker builds an invoker over a fixed set of connection params.
// recorder and tracer may be nil.
func NewSyncInvoker(params domain.ConnectionParams, runner domain.JobRunner, recorder domain.SyncRecorder, tracer trace.Tracer, logger *slog.Logger, opts ...Option) SyncInvoker {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}
	s := &syncInvoker{
		params:   params,
		runner:   runner,
		recorder: recorder,
		tracer:   tracer,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *syncInvoker) Invoke(ctx context.Context, claims domain.Claims) domain.SyncResult {
	result := domain.SyncResult{InvocationID: uuid.NewString()}
	startedAt := s.now()

	ctx, span := s.tracer.Start(ctx, "connector.sync", trace.WithAttributes(
		attribute.String("sync.invocation_id", result.InvocationID),
	))
	defer span.End()

	logger := s.logger.With(
		"invocation_id", result.InvocationID,
		"request_id", domain.RequestIDFromContext(ctx),
	)

	if s.sem != nil {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			s.finish(ctx, span, logger, &result, fmt.Errorf("waiting for a sync slot: %w", err))
			s.record(ctx, claims, startedAt, result)
			return result
		}
		defer s.sem.Release(1)
	}

	logger.InfoContext(ctx, "starting sync", "host", s.params.Host, "database", s.params.Database)

	// The job runs to completion even if the caller goes away.
	jobCtx := context.WithoutCancel(ctx)
	_, err := execution.WithTimeout(jobCtx, s.timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.run(ctx)
	})

	s.finish(ctx, span, logger, &result, err)
	s.record(ctx, claims, startedAt, result)
	return result
}

func (s *syncInvoker) run(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("connector panicked: %v", r)
		}
	}()
	return s.runner.Run(ctx, s.params.Args())
}

func (s *syncInvoker) finish(ctx context.Context, span trace.Span, logger *slog.Logger, result *domain.SyncResult, err error) {
	var warning *domain.WarningError
	switch {
	case err == nil:
		result.Outcome = domain.SyncSucceeded
		logger.InfoContext(ctx, "sync finished")
	case errors.As(err, &warning):
		result.Outcome = domain.SyncWarning
		result.Message = warning.Message
		result.Err = err
		logger.WarnContext(ctx, "sync rejected its input", "warning", warning.Message)
	default:
		result.Outcome = domain.SyncFailed
		result.Message = err.Error()
		result.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "sync failed")
		logger.ErrorContext(ctx, "sync failed", "error", err)
	}
	span.SetAttributes(attribute.String("sync.outcome", result.Outcome.String()))
}

func (s *syncInvoker) record(ctx context.Context, claims domain.Claims, startedAt time.Time, result domain.SyncResult) {
	if s.recorder == nil {
		return
	}
	s.recorder.RecordSync(context.WithoutCancel(ctx), &domain.SyncRecord{
		ID:        result.InvocationID,
		Subject:   claims.Subject(),
		RequestID: domain.RequestIDFromContext(ctx),
		Outcome:   result.Outcome,
		Detail:    result.Message,
		StartedAt: startedAt.UTC(),
		Duration:  s.now().Sub(startedAt),
	})
}
