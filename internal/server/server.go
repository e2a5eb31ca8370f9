// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes evaluation views over HTTP for dashboards that
// cannot run the CLI.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/pdiddy/sgce-audit/internal/archive"
	"github.com/pdiddy/sgce-audit/internal/audit"
	"github.com/pdiddy/sgce-audit/internal/feed"
	"github.com/pdiddy/sgce-audit/internal/report"
	"github.com/pdiddy/sgce-audit/internal/rubric"
)

const shutdownTimeout = 10 * time.Second

// Handler ties HTTP routes to an Auditor.
type Handler struct {
	auditor *audit.Auditor
}

// NewHandler creates a Handler serving views assembled by a.
func NewHandler(a *audit.Auditor) *Handler {
	return &Handler{auditor: a}
}

// Router returns the route table.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", h.Health)
	r.Get("/rubric", h.GetRubric)
	r.Get("/sessions/{sessionID}/evaluation", h.GetEvaluation)
	return r
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// GetRubric returns the current criteria catalog.
func (h *Handler) GetRubric(w http.ResponseWriter, r *http.Request) {
	f, err := formatParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	cat, err := rubric.Load(r.Context(), h.auditor.Rubric)
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	if err := report.Rubric(&buf, cat.Criteria(), f, report.Options{}); err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	h.respond(w, f, buf.Bytes())
}

// GetEvaluation returns the merged evaluation view of one session.
func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	f, err := formatParam(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return
	}

	id := chi.URLParam(r, "sessionID")
	ev, err := h.auditor.Evaluate(r.Context(), id)
	if err != nil {
		h.respondError(w, statusFor(err), err)
		return
	}

	var buf bytes.Buffer
	opts := report.Options{Full: r.URL.Query().Get("full") == "true"}
	if err := report.Evaluation(&buf, ev, f, opts); err != nil {
		h.respondError(w, http.StatusInternalServerError, err)
		return
	}
	h.respond(w, f, buf.Bytes())
}

// formatParam reads ?format=, defaulting to JSON.
func formatParam(r *http.Request) (report.Format, error) {
	v := r.URL.Query().Get("format")
	if v == "" {
		return report.FormatJSON, nil
	}
	return report.ParseFormat(v)
}

// statusFor maps a fetch error to the response status. An unavailable
// catalog is 503; a session the upstream does not know is 404; any other
// upstream failure is 502.
func statusFor(err error) int {
	var se *feed.StatusError
	switch {
	case errors.Is(err, rubric.ErrCatalogUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, archive.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &se) && se.StatusCode == http.StatusNotFound:
		return http.StatusNotFound
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (h *Handler) respond(w http.ResponseWriter, f report.Format, body []byte) {
	switch f {
	case report.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	case report.FormatYAML:
		w.Header().Set("Content-Type", "application/yaml")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.Write(body)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		slog.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serving on %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
