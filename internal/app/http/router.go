package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/spounge-ai/postgresql-connector/internal/domain"
	app_errors "github.com/spounge-ai/postgresql-connector/internal/errors"
	"github.com/spounge-ai/postgresql-connector/internal/infra/ratelimit"
	"github.com/spounge-ai/postgresql-connector/internal/service"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HandlerDeps are the collaborators of the HTTP adapter.
type HandlerDeps struct {
	Version         string
	Verifier        domain.TokenVerifier
	Invoker         service.SyncInvoker
	ErrorClassifier *app_errors.ErrorClassifier
	// Limiter throttles /sync per client host. Nil disables throttling.
	Limiter ratelimit.Limiter
	Logger  *slog.Logger
}

// Handler is the HTTP adapter over token verification and sync invocation.
type Handler struct {
	version    string
	verifier   domain.TokenVerifier
	invoker    service.SyncInvoker
	classifier *app_errors.ErrorClassifier
	limiter    ratelimit.Limiter
	logger     *slog.Logger
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		version:    deps.Version,
		verifier:   deps.Verifier,
		invoker:    deps.Invoker,
		classifier: deps.ErrorClassifier,
		limiter:    deps.Limiter,
		logger:     deps.Logger.With("module", "http"),
	}
}

// Tracing configures the otelhttp wrapper. A nil TracerProvider leaves
// the router uninstrumented.
type Tracing struct {
	TracerProvider trace.TracerProvider
	Propagator     propagation.TextMapPropagator
}

// NewRouter registers the connector routes and middleware stack.
func NewRouter(handler *Handler, tracing Tracing) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(handler.loggingMiddleware)
	r.Use(handler.recoverMiddleware)

	r.Get("/version", handler.versionHandler)
	r.Get("/ready", handler.readyHandler)

	r.Group(func(r chi.Router) {
		if handler.limiter != nil {
			r.Use(handler.rateLimitMiddleware)
		}
		r.Post("/sync", handler.syncHandler)
	})

	if tracing.TracerProvider == nil {
		return r
	}

	opts := []otelhttp.Option{
		otelhttp.WithTracerProvider(tracing.TracerProvider),
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}
	if tracing.Propagator != nil {
		opts = append(opts, otelhttp.WithPropagators(tracing.Propagator))
	}
	return otelhttp.NewHandler(r, "connector.http", opts...)
}
