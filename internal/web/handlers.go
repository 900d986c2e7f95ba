package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/datadash/internal/core"
	"github.com/JonMunkholm/datadash/internal/logging"
	"github.com/JonMunkholm/datadash/internal/plot"
	"github.com/JonMunkholm/datadash/internal/web/templates"
)

// multipartOverhead is allowed on top of the file size for form framing.
const multipartOverhead = 1 << 20

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temporary file.
const multipartMemory = 32 << 20

// handleIndex renders the landing page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Index().Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render index", "error", err)
	}
}

// handleHealth reports liveness with a few load figures.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.service.Limiter().Status()
	render.JSON(w, r, map[string]any{
		"status":          "ok",
		"sessions":        s.service.SessionCount(),
		"analyses_active": status.Active,
		"analyses_max":    status.MaxConcurrent,
	})
}

// handleUpload stores an uploaded file in a new session and redirects to it.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, core.ErrFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, core.ErrNoFile, http.StatusBadRequest)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	sess, err := s.service.CreateSession(ctx, header.Filename, file)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	http.Redirect(w, r, sessionPath(sess.ID), http.StatusSeeOther)
}

// handleSession renders the analysis page for a session.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ctx := logging.ContextWithSessionID(r.Context(), id)

	req, bindErr := bindChartRequest(r)
	if bindErr != nil {
		req = core.ChartRequest{Kind: core.ChartBar}
	}

	analysis, err := s.service.Analyze(ctx, id, req)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	if analysis.ChartErr != nil {
		logging.FromContext(ctx).Info("chart unavailable", "kind", req.Kind, "reason", analysis.ChartErr)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := buildSessionPage(analysis, bindErr)
	if err := templates.Session(page).Render(ctx, w); err != nil {
		logging.FromContext(ctx).Error("render session page", "error", err)
	}
}

// handleSetTypes stores the column type directives and redirects back.
func (s *Server) handleSetTypes(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ctx := logging.ContextWithSessionID(r.Context(), id)

	if err := r.ParseForm(); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	directives, err := bindDirectives(r.PostForm)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.service.SetDirectives(ctx, id, directives); err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	http.Redirect(w, r, sessionPath(id), http.StatusSeeOther)
}

// handleChart renders the selected chart as SVG. Conditions that prevent
// the chart are answered with 422 and the message as plain text.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ctx := logging.ContextWithSessionID(r.Context(), id)
	start := time.Now()

	req, err := bindChartRequest(r)
	var svg bytes.Buffer
	if err == nil {
		err = s.renderChart(ctx, &svg, id, req)
	}

	switch info, isInfo := core.AsInfo(err); {
	case err == nil:
		s.metrics.Chart(string(req.Kind), "ok", time.Since(start))
		w.Header().Set("Content-Type", plot.ContentType)
		w.Header().Set("Cache-Control", "no-store")
		_, _ = svg.WriteTo(w)
	case isInfo:
		s.metrics.Chart(string(req.Kind), "info", time.Since(start))
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, info.Message)
	default:
		s.metrics.Chart(string(req.Kind), "error", time.Since(start))
		respondError(w, r, err, statusFor(err))
	}
}

func (s *Server) renderChart(ctx context.Context, w io.Writer, id string, req core.ChartRequest) error {
	data, err := s.service.Chart(ctx, id, req)
	if err != nil {
		return err
	}
	if err := plot.Render(w, data); err != nil {
		return fmt.Errorf("render %s chart: %w", data.Kind, err)
	}
	return nil
}

// handleDescribe returns the descriptive statistics as JSON.
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	ctx := logging.ContextWithSessionID(r.Context(), id)

	desc, err := s.service.Describe(ctx, id)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}
	render.JSON(w, r, desc)
}
