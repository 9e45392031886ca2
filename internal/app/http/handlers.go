package http

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spounge-ai/postgresql-connector/internal/domain"
	app_errors "github.com/spounge-ai/postgresql-connector/internal/errors"
)

func (h *Handler) versionHandler(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, h.version)
}

func (h *Handler) readyHandler(w http.ResponseWriter, _ *http.Request) {
	writeText(w, http.StatusOK, "ok")
}

func (h *Handler) syncHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	verdict := h.verifier.Verify(tokenFromHeader(r.Header.Get("Authorization")))
	if !verdict.IsValid() {
		h.fail(w, r, verdict.Reason(), "sync.authenticate")
		return
	}

	result := h.invoker.Invoke(ctx, verdict.Claims())
	switch result.Outcome {
	case domain.SyncSucceeded:
		writeJSON(w, http.StatusOK, emptyObject)
	case domain.SyncWarning:
		h.fail(w, r, result.Err, "sync.invoke")
	default:
		h.fail(w, r, fmt.Errorf("%w: invocation %s: %w", app_errors.ErrSyncFailed, result.InvocationID, result.Err), "sync.invoke")
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, operation string) {
	classified := h.classifier.Classify(err, operation)
	status, message := h.classifier.LogAndSanitize(r.Context(), classified)
	writeText(w, status, message)
}

// tokenFromHeader returns the text after the last space of an
// Authorization header, which covers both "Bearer <token>" and a bare
// token. A missing header yields an empty token.
func tokenFromHeader(header string) string {
	if i := strings.LastIndex(header, " "); i >= 0 {
		return header[i+1:]
	}
	return header
}
