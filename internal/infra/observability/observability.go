package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spounge-ai/postgresql-connector/internal/infra/config"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Observability is the process-wide logging and tracing context. It is built
// once in main and handed to the components that need it; nothing here
// touches the slog or otel globals.
type Observability struct {
	Logger         *slog.Logger
	TracerProvider *sdktrace.TracerProvider
	Propagator     propagation.TextMapPropagator
}

// New builds the logger and tracer provider. Spans are recorded so their
// IDs reach the logs; exporting them is left to the deployment.
func New(logging config.LoggingConfig, service config.ServiceConfig, w io.Writer) (*Observability, error) {
	logger, err := NewLogger(logging, w)
	if err != nil {
		return nil, err
	}

	res := resource.NewSchemaless(
		attribute.String("service.name", service.Name),
		attribute.String("service.version", service.Version),
	)
	tp := sdktrace.NewTracerProvider(sdktrace.WithResource(res))

	return &Observability{
		Logger:         logger.With("service", service.Name),
		TracerProvider: tp,
		Propagator:     propagation.TraceContext{},
	}, nil
}

func (o *Observability) Tracer(name string) trace.Tracer {
	return o.TracerProvider.Tracer(name)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	return o.TracerProvider.Shutdown(ctx)
}

// NewLogger returns a slog logger writing to w in the configured format.
func NewLogger(cfg config.LoggingConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	case "json", "":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unsupported log format: %s", cfg.Format)
	}

	return slog.New(&traceHandler{Handler: handler}), nil
}

func parseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if raw == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return 0, fmt.Errorf("unsupported log level %q: %w", raw, err)
	}
	return level, nil
}

// traceHandler adds trace_id and span_id to records logged with a context
// that carries a valid span.
type traceHandler struct {
	slog.Handler
}

func (h *traceHandler) Handle(ctx context.Context, record slog.Record) error {
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		record.AddAttrs(
			slog.String("trace_id", sc.TraceID().String()),
			slog.String("span_id", sc.SpanID().String()),
		)
	}
	return h.Handler.Handle(ctx, record)
}

func (h *traceHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *traceHandler) WithGroup(name string) slog.Handler {
	return &traceHandler{Handler: h.Handler.WithGroup(name)}
}
